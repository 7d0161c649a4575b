package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"civic-trust-service/internal/model"
)

// Store interfaces mirror the persistence operations the services need; the
// gorm repositories in internal/repository satisfy them.

type BinStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Bin, error)
	List(ctx context.Context) ([]model.Bin, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.BinStatus) error
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

type DisposalStore interface {
	Create(ctx context.Context, record *model.DisposalRecord) error
	List(ctx context.Context) ([]model.DisposalRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.DisposalRecord, error)
	CountPriorAtBin(ctx context.Context, userID, binID uuid.UUID, since time.Time) (int64, error)
	HasVerifiedByUser(ctx context.Context, userID uuid.UUID) (bool, error)
}

type ComplaintStore interface {
	Create(ctx context.Context, complaint *model.Complaint) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Complaint, error)
	List(ctx context.Context, statuses []model.ComplaintStatus, limit int) ([]model.Complaint, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ComplaintStatus, note *string, resolvedAt *time.Time) error
	ReplaceProof(ctx context.Context, proof *model.CleanupProof) error
	LogStatusChange(ctx context.Context, logEntry *model.ComplaintStatusLog) error
}

type WalletStore interface {
	Append(ctx context.Context, entry *model.WalletEntry) error
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.WalletEntry, error)
	ListAll(ctx context.Context) ([]model.WalletEntry, error)
}

type RewardStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Reward, error)
	ListActive(ctx context.Context) ([]model.Reward, error)
	CreateRedemption(ctx context.Context, redemption *model.RedemptionRecord) error
	ListRedemptions(ctx context.Context, userID uuid.UUID) ([]model.RedemptionRecord, error)
	CountRedemptions(ctx context.Context) (int64, error)
}

type AlertStore interface {
	CreateBatch(ctx context.Context, alerts []model.FraudAlert) error
	List(ctx context.Context, statuses []model.AlertStatus, limit int) ([]model.FraudAlert, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.FraudAlert, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AlertStatus) error
}

type LocationStore interface {
	Last(ctx context.Context, userID uuid.UUID) (*model.UserLocation, error)
	Upsert(ctx context.Context, loc *model.UserLocation) error
}

type HashStore interface {
	Exists(ctx context.Context, hash string) (bool, error)
	Add(ctx context.Context, hash string, actionID uuid.UUID) error
}

// Publisher hands committed records to the best-effort sync layer.
// *outbox.Replicator satisfies it.
type Publisher interface {
	Publish(ctx context.Context, entity, id string, record interface{})
}

// publish enqueues a committed record for remote sync, tolerating a nil
// publisher in offline deployments.
func publish(ctx context.Context, p Publisher, entity, id string, record interface{}) {
	if p != nil {
		p.Publish(ctx, entity, id, record)
	}
}
