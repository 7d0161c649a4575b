package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"civic-trust-service/internal/model"
)

type AlertService struct {
	alerts AlertStore
	log    zerolog.Logger
}

func NewAlertService(alerts AlertStore, log zerolog.Logger) *AlertService {
	return &AlertService{alerts: alerts, log: log}
}

func (s *AlertService) List(ctx context.Context, principal model.Principal, statuses []model.AlertStatus, limit int) ([]model.FraudAlert, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.alerts.List(ctx, statuses, limit)
}

// Review marks an open alert as reviewed. Already-reviewed and blocked
// alerts stay as they are.
func (s *AlertService) Review(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.FraudAlert, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if alert.Status != model.AlertStatusOpen {
		return nil, ErrInvalidStatus
	}
	if err := s.alerts.UpdateStatus(ctx, id, model.AlertStatusReviewed); err != nil {
		return nil, err
	}
	alert.Status = model.AlertStatusReviewed
	s.log.Info().Str("alert_id", id.String()).Msg("fraud alert reviewed")
	return alert, nil
}
