package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-trust-service/internal/model"
)

func TestAlertReviewTransitions(t *testing.T) {
	alerts := &memAlerts{alerts: []model.FraudAlert{
		{ID: uuid.New(), Type: model.FlagQRMismatch, Status: model.AlertStatusOpen},
		{ID: uuid.New(), Type: model.FlagMockLocation, Status: model.AlertStatusBlocked},
	}}
	svc := NewAlertService(alerts, zerolog.Nop())
	admin := model.Principal{UserID: uuid.New(), Role: model.UserRoleAdmin}
	citizen := model.Principal{UserID: uuid.New(), Role: model.UserRoleCitizen}

	_, err := svc.Review(context.Background(), citizen, alerts.alerts[0].ID)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	reviewed, err := svc.Review(context.Background(), admin, alerts.alerts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusReviewed, reviewed.Status)
	assert.Equal(t, model.AlertStatusReviewed, alerts.alerts[0].Status)

	// Blocked alerts are not silently downgraded.
	_, err = svc.Review(context.Background(), admin, alerts.alerts[1].ID)
	assert.True(t, errors.Is(err, ErrInvalidStatus))

	_, err = svc.Review(context.Background(), admin, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAlertListAdminOnly(t *testing.T) {
	alerts := &memAlerts{alerts: []model.FraudAlert{
		{ID: uuid.New(), Type: model.FlagQRMismatch, Status: model.AlertStatusOpen},
	}}
	svc := NewAlertService(alerts, zerolog.Nop())

	_, err := svc.List(context.Background(), model.Principal{Role: model.UserRoleWorker}, nil, 0)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	got, err := svc.List(context.Background(), model.Principal{Role: model.UserRoleAdmin}, []model.AlertStatus{model.AlertStatusOpen}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
