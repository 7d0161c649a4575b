package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"civic-trust-service/internal/model"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Profile is what the identity provider knows about a user.
type Profile struct {
	UserID   uuid.UUID      `json:"user_id"`
	Role     model.UserRole `json:"role"`
	Name     string         `json:"name"`
	Ward     string         `json:"ward"`
	DeviceID string         `json:"device_id"`
}

// IdentityClient resolves credentials against the municipal identity
// provider. Implementations return ErrInvalidCredentials on a bad pair.
type IdentityClient interface {
	Authenticate(ctx context.Context, email, password string) (*Profile, error)
}

type HTTPIdentityClient struct {
	url    string
	client *http.Client
}

func NewHTTPIdentityClient(url string, timeout time.Duration) *HTTPIdentityClient {
	return &HTTPIdentityClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPIdentityClient) Authenticate(ctx context.Context, email, password string) (*Profile, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrInvalidCredentials
	default:
		return nil, fmt.Errorf("identity provider returned %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// demoAccount is one seeded demonstration login. The role is assigned here,
// once, and carried in the token afterwards.
type demoAccount struct {
	password string
	userID   uuid.UUID
	role     model.UserRole
	name     string
	ward     string
}

var demoAccounts = map[string]demoAccount{
	"citizen@demo.mmc.in": {
		password: "citizen123",
		userID:   uuid.MustParse("0a6f1c8e-9d3b-4f2a-8c51-1b2e3d4f5a60"),
		role:     model.UserRoleCitizen,
		name:     "Demo Citizen",
		ward:     "Ward 12",
	},
	"worker@demo.mmc.in": {
		password: "worker123",
		userID:   uuid.MustParse("1b7e2d9f-0e4c-4a3b-9d62-2c3f4e5a6b71"),
		role:     model.UserRoleWorker,
		name:     "Demo Worker",
		ward:     "Ward 12",
	},
	"admin@demo.mmc.in": {
		password: "admin123",
		userID:   uuid.MustParse("2c8f3e0a-1f5d-4b4c-ae73-3d4a5f6b7c82"),
		role:     model.UserRoleAdmin,
		name:     "Demo Admin",
		ward:     "HQ",
	},
}

// Authenticator resolves a login to a principal: seeded demo accounts first,
// the identity provider for everything else.
type Authenticator struct {
	identity IdentityClient
}

func NewAuthenticator(identity IdentityClient) *Authenticator {
	return &Authenticator{identity: identity}
}

func (a *Authenticator) Login(ctx context.Context, email, password, deviceID string) (*model.Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if account, ok := demoAccounts[email]; ok {
		if account.password != password {
			return nil, ErrInvalidCredentials
		}
		return &model.Principal{
			UserID:     account.userID,
			Role:       account.role,
			RoleSource: model.RoleSourceDemo,
			Name:       account.name,
			Ward:       account.ward,
			DeviceID:   deviceID,
		}, nil
	}

	if a.identity == nil {
		return nil, ErrInvalidCredentials
	}
	profile, err := a.identity.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &model.Principal{
		UserID:     profile.UserID,
		Role:       profile.Role,
		RoleSource: model.RoleSourceIssued,
		Name:       profile.Name,
		Ward:       profile.Ward,
		DeviceID:   deviceID,
	}, nil
}
