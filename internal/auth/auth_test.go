package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-trust-service/internal/model"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	parser := NewParser("test-secret")

	principal := model.Principal{
		UserID:     uuid.New(),
		Role:       model.UserRoleWorker,
		RoleSource: model.RoleSourceIssued,
		Name:       "Kumar",
		Ward:       "Ward 7",
		DeviceID:   "device-42",
	}

	token, expiresAt, err := issuer.Issue(principal)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := parser.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, principal, claims.Principal())
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewIssuer("secret-a", time.Hour)
	parser := NewParser("secret-b")

	token, _, err := issuer.Issue(model.Principal{UserID: uuid.New(), Role: model.UserRoleCitizen})
	require.NoError(t, err)

	_, err = parser.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	parser := NewParser("test-secret")

	token, _, err := issuer.Issue(model.Principal{UserID: uuid.New(), Role: model.UserRoleCitizen})
	require.NoError(t, err)

	_, err = parser.Parse(token)
	assert.Error(t, err)
}

type stubIdentity struct {
	profile *Profile
	err     error
	calls   int
}

func (s *stubIdentity) Authenticate(_ context.Context, _, _ string) (*Profile, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func TestLoginDemoAccountSkipsIdentityProvider(t *testing.T) {
	identity := &stubIdentity{err: errors.New("should not be called")}
	authenticator := NewAuthenticator(identity)

	principal, err := authenticator.Login(context.Background(), "Worker@demo.mmc.in", "worker123", "device-1")
	require.NoError(t, err)

	assert.Equal(t, model.UserRoleWorker, principal.Role)
	assert.Equal(t, model.RoleSourceDemo, principal.RoleSource)
	assert.Equal(t, "device-1", principal.DeviceID)
	assert.Zero(t, identity.calls)
}

func TestLoginDemoAccountWrongPassword(t *testing.T) {
	authenticator := NewAuthenticator(nil)

	_, err := authenticator.Login(context.Background(), "citizen@demo.mmc.in", "wrong", "")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLoginIssuedRole(t *testing.T) {
	identity := &stubIdentity{profile: &Profile{
		UserID: uuid.New(),
		Role:   model.UserRoleCitizen,
		Name:   "Meena",
		Ward:   "Ward 3",
	}}
	authenticator := NewAuthenticator(identity)

	principal, err := authenticator.Login(context.Background(), "meena@example.in", "pw", "device-9")
	require.NoError(t, err)

	assert.Equal(t, model.RoleSourceIssued, principal.RoleSource)
	assert.Equal(t, model.UserRoleCitizen, principal.Role)
	assert.Equal(t, 1, identity.calls)
}
