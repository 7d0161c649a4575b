package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"civic-trust-service/internal/fraud"
	"civic-trust-service/internal/geo"
	"civic-trust-service/internal/imagery"
	"civic-trust-service/internal/location"
	"civic-trust-service/internal/model"
	"civic-trust-service/internal/outbox"
)

type DisposalService struct {
	policy      Policy
	bins        BinStore
	disposals   DisposalStore
	wallet      WalletStore
	alerts      AlertStore
	locations   LocationStore
	hashes      HashStore
	validator   imagery.ContentValidator
	revalidator outbox.GeoRevalidator
	publisher   Publisher
	log         zerolog.Logger
	now         func() time.Time
}

func NewDisposalService(
	policy Policy,
	bins BinStore,
	disposals DisposalStore,
	wallet WalletStore,
	alerts AlertStore,
	locations LocationStore,
	hashes HashStore,
	validator imagery.ContentValidator,
	revalidator outbox.GeoRevalidator,
	publisher Publisher,
	log zerolog.Logger,
) *DisposalService {
	return &DisposalService{
		policy:      policy,
		bins:        bins,
		disposals:   disposals,
		wallet:      wallet,
		alerts:      alerts,
		locations:   locations,
		hashes:      hashes,
		validator:   validator,
		revalidator: revalidator,
		publisher:   publisher,
		log:         log,
		now:         time.Now,
	}
}

type DisposeInput struct {
	BinID     uuid.UUID
	QRCodeID  string
	PhotoRef  string
	WasteSize model.WasteSize
	Fix       location.Fix
}

// disposalFacts are the resolved inputs of the pure disposal decision.
type disposalFacts struct {
	Bin              model.Bin
	QRCodeID         string
	WasteSize        model.WasteSize
	Snapshot         location.Snapshot
	Content          imagery.ContentReport
	Distance         float64
	DuplicateImage   bool
	LocationAnomaly  bool
	CooldownHit      bool
	FirstVerifiedYet bool
}

// disposalVerdict is the pure decision outcome, free of I/O.
type disposalVerdict struct {
	QRVerified      bool
	GeoVerified     bool
	AIVerified      bool
	Flags           []model.FlagKind
	Verified        bool
	BasePoints      int
	BonusPoints     int
	RejectionReason *string
}

// decideDisposal is the pure transition: facts in, verdict out. All the
// effects happen around it.
func (s *DisposalService) decideDisposal(f disposalFacts) disposalVerdict {
	v := disposalVerdict{}

	v.QRVerified = strings.TrimSpace(f.QRCodeID) == f.Bin.QRCodeID
	v.GeoVerified = f.Distance <= s.policy.BinGeoFenceMeters &&
		f.Snapshot.AgeSeconds <= s.policy.MaxFixAge.Seconds() &&
		f.Snapshot.AccuracyMeters <= s.policy.MaxAccuracyMeters &&
		!f.Snapshot.Mocked
	v.AIVerified = f.Content.QualityPassed && f.Content.BinDetected && f.Content.WasteDetected

	v.Flags = fraud.Evaluate(fraud.Facts{
		DuplicateImage:    f.DuplicateImage,
		LocationAnomaly:   f.LocationAnomaly,
		QRMismatch:        !v.QRVerified,
		GeoFenceFailure:   f.Distance > s.policy.BinGeoFenceMeters,
		MockLocation:      f.Snapshot.Mocked,
		CooldownViolation: f.CooldownHit,
		AccuracyFailure:   f.Snapshot.AccuracyMeters > s.policy.MaxAccuracyMeters,
		TimestampInvalid:  f.Snapshot.AgeSeconds > s.policy.MaxFixAge.Seconds(),
	})

	v.Verified = f.Bin.Status == model.BinStatusAvailable &&
		v.QRVerified && v.GeoVerified && v.AIVerified && len(v.Flags) == 0

	if v.Verified {
		v.BasePoints = rewardPoints[f.WasteSize]
		if !f.FirstVerifiedYet {
			v.BonusPoints = s.policy.FirstDisposalBonus
		}
	} else {
		reason := rejectionReason(f, v)
		v.RejectionReason = &reason
	}

	return v
}

func rejectionReason(f disposalFacts, v disposalVerdict) string {
	switch {
	case f.Bin.Status != model.BinStatusAvailable:
		return fmt.Sprintf("bin is %s", strings.ToLower(string(f.Bin.Status)))
	case !v.QRVerified:
		return "scanned QR code does not match the bin"
	case !v.GeoVerified:
		return "location could not be verified at the bin"
	case !v.AIVerified:
		if f.Content.FailureReason != "" {
			return f.Content.FailureReason
		}
		return "photo content could not be verified"
	default:
		parts := make([]string, 0, len(v.Flags))
		for _, flag := range v.Flags {
			parts = append(parts, strings.ToLower(string(flag)))
		}
		return "fraud checks failed: " + strings.Join(parts, ", ")
	}
}

// Dispose runs the full verification pipeline for one disposal submission.
// Rejections are recorded, not dropped: the caller always gets a
// DisposalRecord unless the bin lookup or input validation fails.
func (s *DisposalService) Dispose(ctx context.Context, principal model.Principal, input DisposeInput) (*model.DisposalResult, error) {
	if strings.TrimSpace(input.PhotoRef) == "" {
		return nil, ErrInvalidInput
	}
	// The reward table doubles as the enum check: a size outside it would
	// otherwise verify with zero base points.
	if _, ok := rewardPoints[input.WasteSize]; !ok {
		return nil, ErrInvalidInput
	}

	bin, err := s.bins.GetByID(ctx, input.BinID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn().Str("bin_id", input.BinID.String()).Msg("disposal against unknown bin")
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := s.now()
	snapshot := location.Grade(input.Fix, now)
	distance := geo.Distance(snapshot.Coordinates, bin.Coordinates())

	content := s.validator.ValidateContent(input.PhotoRef, bin.QRCodeID)
	imageHash := imagery.ContentHash(input.PhotoRef)

	duplicate, err := s.hashes.Exists(ctx, imageHash)
	if err != nil {
		return nil, err
	}

	previous, err := s.locations.Last(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	cooldownCount, err := s.disposals.CountPriorAtBin(ctx, principal.UserID, bin.ID, now.Add(-s.policy.CooldownWindow))
	if err != nil {
		return nil, err
	}

	hasVerified, err := s.disposals.HasVerifiedByUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	facts := disposalFacts{
		Bin:              *bin,
		QRCodeID:         input.QRCodeID,
		WasteSize:        input.WasteSize,
		Snapshot:         snapshot,
		Content:          content,
		Distance:         distance,
		DuplicateImage:   duplicate,
		LocationAnomaly:  fraud.LocationAnomaly(previous, snapshot.Coordinates, now),
		CooldownHit:      cooldownCount > 0,
		FirstVerifiedYet: hasVerified,
	}
	verdict := s.decideDisposal(facts)

	record := &model.DisposalRecord{
		ID:              uuid.New(),
		UserID:          principal.UserID,
		BinID:           bin.ID,
		QRCodeID:        strings.TrimSpace(input.QRCodeID),
		PhotoRef:        input.PhotoRef,
		ImageHash:       imageHash,
		Latitude:        snapshot.Coordinates.Latitude,
		Longitude:       snapshot.Coordinates.Longitude,
		AccuracyMeters:  snapshot.AccuracyMeters,
		DistanceMeters:  distance,
		GeoVerified:     verdict.GeoVerified,
		QRVerified:      verdict.QRVerified,
		AIVerified:      verdict.AIVerified,
		WasteSize:       input.WasteSize,
		FraudFlags:      verdict.Flags,
		Verified:        verdict.Verified,
		PointsAwarded:   verdict.BasePoints + verdict.BonusPoints,
		RejectionReason: verdict.RejectionReason,
		CreatedAt:       now,
	}

	if err := s.disposals.Create(ctx, record); err != nil {
		return nil, err
	}

	if err := s.applyDisposalEffects(ctx, principal, bin, record, verdict, snapshot, now); err != nil {
		return nil, err
	}

	s.postCommit(ctx, bin, record, snapshot)

	return &model.DisposalResult{
		Record:     *record,
		RiskScore:  fraud.RiskScore(verdict.Flags),
		Advisories: advisoryMessages(snapshot, s.policy),
	}, nil
}

func (s *DisposalService) applyDisposalEffects(
	ctx context.Context,
	principal model.Principal,
	bin *model.Bin,
	record *model.DisposalRecord,
	verdict disposalVerdict,
	snapshot location.Snapshot,
	now time.Time,
) error {
	// The last-location map updates regardless of the outcome: the next
	// anomaly check needs the truth, not the verdict.
	loc := &model.UserLocation{
		UserID:         principal.UserID,
		Latitude:       snapshot.Coordinates.Latitude,
		Longitude:      snapshot.Coordinates.Longitude,
		AccuracyMeters: snapshot.AccuracyMeters,
		RecordedAt:     now,
	}
	if err := s.locations.Upsert(ctx, loc); err != nil {
		return err
	}
	publish(ctx, s.publisher, "user_location", loc.UserID.String(), loc)

	// The used-hash set grows on every non-duplicate hash, verified or not.
	if !containsFlag(verdict.Flags, model.FlagDuplicateImage) {
		if err := s.hashes.Add(ctx, record.ImageHash, record.ID); err != nil {
			return err
		}
	}

	if alerts := fraud.BuildAlerts(record.ID, verdict.Flags); len(alerts) > 0 {
		if err := s.alerts.CreateBatch(ctx, alerts); err != nil {
			return err
		}
		for i := range alerts {
			publish(ctx, s.publisher, "fraud_alert", alerts[i].ID.String(), &alerts[i])
		}
	}

	if !verdict.Verified {
		return nil
	}

	if err := s.bins.TouchLastUsed(ctx, bin.ID, now); err != nil {
		return err
	}

	if verdict.BasePoints > 0 {
		entry := &model.WalletEntry{
			ID:          uuid.New(),
			UserID:      principal.UserID,
			Type:        model.WalletEntryEarn,
			Points:      verdict.BasePoints,
			Reason:      fmt.Sprintf("verified %s disposal", strings.ToLower(string(record.WasteSize))),
			Source:      "disposal",
			ReferenceID: &record.ID,
		}
		if err := s.wallet.Append(ctx, entry); err != nil {
			return err
		}
		publish(ctx, s.publisher, "wallet_entry", entry.ID.String(), entry)
	}
	if verdict.BonusPoints > 0 {
		entry := &model.WalletEntry{
			ID:          uuid.New(),
			UserID:      principal.UserID,
			Type:        model.WalletEntryEarn,
			Points:      verdict.BonusPoints,
			Reason:      "first verified disposal bonus",
			Source:      "disposal_bonus",
			ReferenceID: &record.ID,
		}
		if err := s.wallet.Append(ctx, entry); err != nil {
			return err
		}
		publish(ctx, s.publisher, "wallet_entry", entry.ID.String(), entry)
	}
	return nil
}

// postCommit runs the best-effort collaborators after the local verdict is
// durable. Failures here are logged and swallowed.
func (s *DisposalService) postCommit(ctx context.Context, bin *model.Bin, record *model.DisposalRecord, snapshot location.Snapshot) {
	if s.revalidator != nil && record.GeoVerified {
		result, err := s.revalidator.Revalidate(ctx, outbox.RevalidationRequest{
			BinLatitude:         bin.Latitude,
			BinLongitude:        bin.Longitude,
			UserLatitude:        snapshot.Coordinates.Latitude,
			UserLongitude:       snapshot.Coordinates.Longitude,
			AccuracyMeters:      snapshot.AccuracyMeters,
			AgeSeconds:          snapshot.AgeSeconds,
			AllowedRadiusMeters: s.policy.BinGeoFenceMeters,
		})
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("geo revalidation unavailable, keeping local verdict")
		case !result.Valid:
			// Disagreement is advisory: one extra alert, never an unverify.
			alert := model.FraudAlert{
				ID:        uuid.New(),
				Type:      model.FlagGeoFenceFailure,
				Severity:  fraud.Severity(model.FlagGeoFenceFailure),
				Message:   fmt.Sprintf("server revalidation disagreed: %.1fm from bin", result.DistanceMeters),
				ActionID:  record.ID,
				RiskScore: fraud.Weight(model.FlagGeoFenceFailure),
				Status:    model.AlertStatusOpen,
			}
			if err := s.alerts.CreateBatch(ctx, []model.FraudAlert{alert}); err != nil {
				s.log.Error().Err(err).Msg("revalidation alert write failed")
			} else {
				publish(ctx, s.publisher, "fraud_alert", alert.ID.String(), &alert)
			}
		}
	}

	publish(ctx, s.publisher, "disposal", record.ID.String(), record)
}

func advisoryMessages(snapshot location.Snapshot, policy Policy) []string {
	var advisories []string
	if snapshot.AccuracyMeters > policy.MaxAccuracyMeters {
		advisories = append(advisories, location.ErrLowAccuracy.Error())
	}
	if snapshot.AgeSeconds > policy.MaxFixAge.Seconds() {
		advisories = append(advisories, location.ErrStaleFix.Error())
	}
	return advisories
}

func containsFlag(flags []model.FlagKind, kind model.FlagKind) bool {
	for _, f := range flags {
		if f == kind {
			return true
		}
	}
	return false
}

func (s *DisposalService) ListBins(ctx context.Context) ([]model.Bin, error) {
	return s.bins.List(ctx)
}

func (s *DisposalService) ListByUser(ctx context.Context, principal model.Principal, limit int) ([]model.DisposalRecord, error) {
	return s.disposals.ListByUser(ctx, principal.UserID, limit)
}

// ReportBinFull marks a bin full; the next collector pass resets it.
func (s *DisposalService) ReportBinFull(ctx context.Context, principal model.Principal, binID uuid.UUID) (*model.Bin, error) {
	bin, err := s.bins.GetByID(ctx, binID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.bins.UpdateStatus(ctx, bin.ID, model.BinStatusReportedFull); err != nil {
		return nil, err
	}
	bin.Status = model.BinStatusReportedFull

	publish(ctx, s.publisher, "bin", bin.ID.String(), bin)
	return bin, nil
}

// SuggestNextAvailableBin returns the nearest available bin other than the
// excluded one, or an arbitrary available bin when no origin is given. Nil
// when none exist.
func (s *DisposalService) SuggestNextAvailableBin(ctx context.Context, excludeID uuid.UUID, origin *geo.Coordinates) (*model.Bin, error) {
	bins, err := s.bins.List(ctx)
	if err != nil {
		return nil, err
	}

	var best *model.Bin
	bestDistance := 0.0
	for i := range bins {
		bin := &bins[i]
		if bin.Status != model.BinStatusAvailable || bin.ID == excludeID {
			continue
		}
		if origin == nil {
			return bin, nil
		}
		d := geo.Distance(*origin, bin.Coordinates())
		if best == nil || d < bestDistance {
			best = bin
			bestDistance = d
		}
	}
	return best, nil
}
