package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"civic-trust-service/internal/model"
	"civic-trust-service/internal/outbox"
)

// In-memory store fakes. They keep the same not-found semantics as the gorm
// repositories so the services' errors.Is checks hold.

type memBins struct {
	bins map[uuid.UUID]*model.Bin
}

func newMemBins(bins ...*model.Bin) *memBins {
	m := &memBins{bins: make(map[uuid.UUID]*model.Bin)}
	for _, b := range bins {
		m.bins[b.ID] = b
	}
	return m
}

func (m *memBins) GetByID(_ context.Context, id uuid.UUID) (*model.Bin, error) {
	b, ok := m.bins[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *memBins) List(_ context.Context) ([]model.Bin, error) {
	out := make([]model.Bin, 0, len(m.bins))
	for _, b := range m.bins {
		out = append(out, *b)
	}
	return out, nil
}

func (m *memBins) UpdateStatus(_ context.Context, id uuid.UUID, status model.BinStatus) error {
	b, ok := m.bins[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.Status = status
	return nil
}

func (m *memBins) TouchLastUsed(_ context.Context, id uuid.UUID, at time.Time) error {
	b, ok := m.bins[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.LastUsedAt = &at
	return nil
}

type memDisposals struct {
	records []model.DisposalRecord
}

func (m *memDisposals) Create(_ context.Context, record *model.DisposalRecord) error {
	m.records = append(m.records, *record)
	return nil
}

func (m *memDisposals) List(_ context.Context) ([]model.DisposalRecord, error) {
	return append([]model.DisposalRecord(nil), m.records...), nil
}

func (m *memDisposals) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]model.DisposalRecord, error) {
	var out []model.DisposalRecord
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memDisposals) CountPriorAtBin(_ context.Context, userID, binID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	for _, r := range m.records {
		if r.UserID == userID && r.BinID == binID && r.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (m *memDisposals) HasVerifiedByUser(_ context.Context, userID uuid.UUID) (bool, error) {
	for _, r := range m.records {
		if r.UserID == userID && r.Verified {
			return true, nil
		}
	}
	return false, nil
}

type memComplaints struct {
	complaints map[uuid.UUID]*model.Complaint
	logs       []model.ComplaintStatusLog
}

func newMemComplaints() *memComplaints {
	return &memComplaints{complaints: make(map[uuid.UUID]*model.Complaint)}
}

func (m *memComplaints) Create(_ context.Context, complaint *model.Complaint) error {
	copied := *complaint
	m.complaints[complaint.ID] = &copied
	return nil
}

func (m *memComplaints) GetByID(_ context.Context, id uuid.UUID) (*model.Complaint, error) {
	c, ok := m.complaints[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *memComplaints) List(_ context.Context, statuses []model.ComplaintStatus, limit int) ([]model.Complaint, error) {
	var out []model.Complaint
	for _, c := range m.complaints {
		if len(statuses) > 0 {
			matched := false
			for _, s := range statuses {
				if c.Status == s {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, *c)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memComplaints) UpdateStatus(_ context.Context, id uuid.UUID, status model.ComplaintStatus, note *string, resolvedAt *time.Time) error {
	c, ok := m.complaints[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Status = status
	c.VerificationNote = note
	c.ResolvedAt = resolvedAt
	return nil
}

func (m *memComplaints) ReplaceProof(_ context.Context, proof *model.CleanupProof) error {
	c, ok := m.complaints[proof.ComplaintID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *proof
	c.CleanupProof = &copied
	return nil
}

func (m *memComplaints) LogStatusChange(_ context.Context, logEntry *model.ComplaintStatusLog) error {
	m.logs = append(m.logs, *logEntry)
	return nil
}

type memWallet struct {
	entries []model.WalletEntry
}

func (m *memWallet) Append(_ context.Context, entry *model.WalletEntry) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memWallet) Balance(_ context.Context, userID uuid.UUID) (int, error) {
	total := 0
	for _, e := range m.entries {
		if e.UserID == userID {
			total += e.Signed()
		}
	}
	return total, nil
}

func (m *memWallet) ListByUser(_ context.Context, userID uuid.UUID) ([]model.WalletEntry, error) {
	var out []model.WalletEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memWallet) ListAll(_ context.Context) ([]model.WalletEntry, error) {
	return append([]model.WalletEntry(nil), m.entries...), nil
}

type memRewards struct {
	rewards     map[uuid.UUID]*model.Reward
	redemptions []model.RedemptionRecord
}

func newMemRewards(rewards ...*model.Reward) *memRewards {
	m := &memRewards{rewards: make(map[uuid.UUID]*model.Reward)}
	for _, r := range rewards {
		m.rewards[r.ID] = r
	}
	return m
}

func (m *memRewards) GetByID(_ context.Context, id uuid.UUID) (*model.Reward, error) {
	r, ok := m.rewards[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *memRewards) ListActive(_ context.Context) ([]model.Reward, error) {
	var out []model.Reward
	for _, r := range m.rewards {
		if r.Active {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRewards) CreateRedemption(_ context.Context, redemption *model.RedemptionRecord) error {
	m.redemptions = append(m.redemptions, *redemption)
	return nil
}

func (m *memRewards) ListRedemptions(_ context.Context, userID uuid.UUID) ([]model.RedemptionRecord, error) {
	var out []model.RedemptionRecord
	for _, r := range m.redemptions {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRewards) CountRedemptions(_ context.Context) (int64, error) {
	return int64(len(m.redemptions)), nil
}

type memAlerts struct {
	alerts []model.FraudAlert
}

func (m *memAlerts) CreateBatch(_ context.Context, alerts []model.FraudAlert) error {
	m.alerts = append(m.alerts, alerts...)
	return nil
}

func (m *memAlerts) List(_ context.Context, statuses []model.AlertStatus, limit int) ([]model.FraudAlert, error) {
	var out []model.FraudAlert
	for _, a := range m.alerts {
		if len(statuses) > 0 {
			matched := false
			for _, s := range statuses {
				if a.Status == s {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, a)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memAlerts) GetByID(_ context.Context, id uuid.UUID) (*model.FraudAlert, error) {
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			copied := m.alerts[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memAlerts) UpdateStatus(_ context.Context, id uuid.UUID, status model.AlertStatus) error {
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts[i].Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memAlerts) byKind(kind model.FlagKind) []model.FraudAlert {
	var out []model.FraudAlert
	for _, a := range m.alerts {
		if a.Type == kind {
			out = append(out, a)
		}
	}
	return out
}

type memLocations struct {
	last map[uuid.UUID]*model.UserLocation
}

func newMemLocations() *memLocations {
	return &memLocations{last: make(map[uuid.UUID]*model.UserLocation)}
}

func (m *memLocations) Last(_ context.Context, userID uuid.UUID) (*model.UserLocation, error) {
	loc, ok := m.last[userID]
	if !ok {
		return nil, nil
	}
	copied := *loc
	return &copied, nil
}

func (m *memLocations) Upsert(_ context.Context, loc *model.UserLocation) error {
	copied := *loc
	m.last[loc.UserID] = &copied
	return nil
}

type memHashes struct {
	hashes map[string]uuid.UUID
}

func newMemHashes() *memHashes {
	return &memHashes{hashes: make(map[string]uuid.UUID)}
}

func (m *memHashes) Exists(_ context.Context, hash string) (bool, error) {
	_, ok := m.hashes[hash]
	return ok, nil
}

func (m *memHashes) Add(_ context.Context, hash string, actionID uuid.UUID) error {
	m.hashes[hash] = actionID
	return nil
}

type published struct {
	entity string
	id     string
}

type capturePublisher struct {
	events []published
}

func (p *capturePublisher) Publish(_ context.Context, entity, id string, _ interface{}) {
	p.events = append(p.events, published{entity: entity, id: id})
}

type stubRevalidator struct {
	result outbox.RevalidationResult
	err    error
	calls  int
}

func (s *stubRevalidator) Revalidate(_ context.Context, _ outbox.RevalidationRequest) (*outbox.RevalidationResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	result := s.result
	return &result, nil
}
