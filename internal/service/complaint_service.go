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
)

type ComplaintService struct {
	policy     Policy
	complaints ComplaintStore
	alerts     AlertStore
	locations  LocationStore
	hashes     HashStore
	publisher  Publisher
	log        zerolog.Logger
	now        func() time.Time
}

func NewComplaintService(
	policy Policy,
	complaints ComplaintStore,
	alerts AlertStore,
	locations LocationStore,
	hashes HashStore,
	publisher Publisher,
	log zerolog.Logger,
) *ComplaintService {
	return &ComplaintService{
		policy:     policy,
		complaints: complaints,
		alerts:     alerts,
		locations:  locations,
		hashes:     hashes,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

type ReportIssueInput struct {
	Category    model.ComplaintCategory
	Description string
	PhotoRef    string
	Fix         location.Fix
}

// ReportIssue always creates the complaint: report-flow fraud flags are
// recorded for review, never blocking. No bin or QR checks apply here.
func (s *ComplaintService) ReportIssue(ctx context.Context, principal model.Principal, input ReportIssueInput) (*model.Complaint, error) {
	if strings.TrimSpace(input.PhotoRef) == "" || input.Category == "" {
		return nil, ErrInvalidInput
	}

	now := s.now()
	snapshot := location.Grade(input.Fix, now)
	imageHash := imagery.ContentHash(input.PhotoRef)

	duplicate, err := s.hashes.Exists(ctx, imageHash)
	if err != nil {
		return nil, err
	}
	previous, err := s.locations.Last(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	flags := fraud.Evaluate(fraud.Facts{
		DuplicateImage:   duplicate,
		LocationAnomaly:  fraud.LocationAnomaly(previous, snapshot.Coordinates, now),
		MockLocation:     snapshot.Mocked,
		AccuracyFailure:  snapshot.AccuracyMeters > s.policy.MaxAccuracyMeters,
		TimestampInvalid: snapshot.AgeSeconds > s.policy.MaxFixAge.Seconds(),
	})

	complaint := &model.Complaint{
		ID:               uuid.New(),
		UserID:           principal.UserID,
		Category:         input.Category,
		Description:      input.Description,
		PhotoRef:         input.PhotoRef,
		ImageHash:        imageHash,
		Latitude:         snapshot.Coordinates.Latitude,
		Longitude:        snapshot.Coordinates.Longitude,
		Status:           model.ComplaintStatusOpen,
		ReportFraudFlags: flags,
		CreatedAt:        now,
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, err
	}

	loc := &model.UserLocation{
		UserID:         principal.UserID,
		Latitude:       snapshot.Coordinates.Latitude,
		Longitude:      snapshot.Coordinates.Longitude,
		AccuracyMeters: snapshot.AccuracyMeters,
		RecordedAt:     now,
	}
	if err := s.locations.Upsert(ctx, loc); err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, "user_location", loc.UserID.String(), loc)
	if !containsFlag(flags, model.FlagDuplicateImage) {
		if err := s.hashes.Add(ctx, imageHash, complaint.ID); err != nil {
			return nil, err
		}
	}
	if alerts := fraud.BuildAlerts(complaint.ID, flags); len(alerts) > 0 {
		if err := s.alerts.CreateBatch(ctx, alerts); err != nil {
			return nil, err
		}
		for i := range alerts {
			publish(ctx, s.publisher, "fraud_alert", alerts[i].ID.String(), &alerts[i])
		}
	}

	publish(ctx, s.publisher, "complaint", complaint.ID.String(), complaint)
	return complaint, nil
}

type SubmitCleanupInput struct {
	PhotoRef string
	Fix      location.Fix
}

// SubmitCleanup attaches worker evidence to a complaint. The complaint moves
// to IN_PROGRESS only when the geo checks pass; the proof is persisted for
// audit either way.
func (s *ComplaintService) SubmitCleanup(ctx context.Context, principal model.Principal, complaintID uuid.UUID, input SubmitCleanupInput) (*model.CleanupResult, error) {
	if !(principal.IsWorker() || principal.IsAdmin()) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.PhotoRef) == "" {
		return nil, ErrInvalidInput
	}

	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if complaint.Status == model.ComplaintStatusResolved {
		return nil, ErrInvalidStatus
	}

	now := s.now()
	snapshot := location.Grade(input.Fix, now)
	distance := geo.Distance(snapshot.Coordinates, complaint.Coordinates())
	proofHash := imagery.ContentHash(input.PhotoRef)

	// A reused "after" photo hashes identically to the complaint's "before".
	mismatch := proofHash == complaint.ImageHash

	geoOK := distance <= s.policy.CleanupRadiusMeters &&
		snapshot.AccuracyMeters <= s.policy.MaxAccuracyMeters &&
		snapshot.AgeSeconds <= s.policy.MaxFixAge.Seconds() &&
		!snapshot.Mocked

	flags := fraud.Evaluate(fraud.Facts{
		BeforeAfterMismatch: mismatch,
		GeoFenceFailure:     distance > s.policy.CleanupRadiusMeters,
		MockLocation:        snapshot.Mocked,
		AccuracyFailure:     snapshot.AccuracyMeters > s.policy.MaxAccuracyMeters,
		TimestampInvalid:    snapshot.AgeSeconds > s.policy.MaxFixAge.Seconds(),
	})

	aiCleanVerified := !mismatch && imagery.ValidateCaptureQuality(input.PhotoRef) == nil

	proof := &model.CleanupProof{
		ID:                          uuid.New(),
		ComplaintID:                 complaint.ID,
		SubmittedBy:                 principal.UserID,
		PhotoRef:                    input.PhotoRef,
		ImageHash:                   proofHash,
		Latitude:                    snapshot.Coordinates.Latitude,
		Longitude:                   snapshot.Coordinates.Longitude,
		AccuracyMeters:              snapshot.AccuracyMeters,
		Watermark:                   fmt.Sprintf("%s/%s", principal.Ward, now.Format(time.RFC3339)),
		DistanceFromComplaintMeters: distance,
		AICleanVerified:             aiCleanVerified,
		FraudFlags:                  flags,
		CreatedAt:                   now,
	}

	if err := s.complaints.ReplaceProof(ctx, proof); err != nil {
		return nil, err
	}

	status := complaint.Status
	if geoOK && complaint.Status != model.ComplaintStatusInProgress {
		if err := s.complaints.UpdateStatus(ctx, complaint.ID, model.ComplaintStatusInProgress, complaint.VerificationNote, nil); err != nil {
			return nil, err
		}
		old := complaint.Status
		if err := s.complaints.LogStatusChange(ctx, &model.ComplaintStatusLog{
			ComplaintID: complaint.ID,
			OldStatus:   &old,
			NewStatus:   model.ComplaintStatusInProgress,
			Note:        "cleanup proof submitted",
			ChangedBy:   &principal.UserID,
		}); err != nil {
			return nil, err
		}
		status = model.ComplaintStatusInProgress
	}

	if alerts := fraud.BuildAlerts(proof.ID, flags); len(alerts) > 0 {
		if err := s.alerts.CreateBatch(ctx, alerts); err != nil {
			return nil, err
		}
		for i := range alerts {
			publish(ctx, s.publisher, "fraud_alert", alerts[i].ID.String(), &alerts[i])
		}
	}
	loc := &model.UserLocation{
		UserID:         principal.UserID,
		Latitude:       snapshot.Coordinates.Latitude,
		Longitude:      snapshot.Coordinates.Longitude,
		AccuracyMeters: snapshot.AccuracyMeters,
		RecordedAt:     now,
	}
	if err := s.locations.Upsert(ctx, loc); err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, "user_location", loc.UserID.String(), loc)

	publish(ctx, s.publisher, "cleanup_proof", proof.ID.String(), proof)
	if status != complaint.Status {
		complaint.Status = status
		publish(ctx, s.publisher, "complaint", complaint.ID.String(), complaint)
	}

	return &model.CleanupResult{
		Proof:           *proof,
		ComplaintStatus: status,
		GeoOK:           geoOK,
	}, nil
}

// VerifyCleanup is the admin decision on submitted proof. Accept resolves
// the complaint; reject reopens it and clears the resolution timestamp.
func (s *ComplaintService) VerifyCleanup(ctx context.Context, principal model.Principal, complaintID uuid.UUID, approve bool, note string) (*model.Complaint, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if complaint.Status != model.ComplaintStatusInProgress {
		return nil, ErrInvalidStatus
	}

	now := s.now()
	old := complaint.Status
	var notePtr *string
	if strings.TrimSpace(note) != "" {
		notePtr = &note
	}

	target := model.ComplaintStatusResolved
	var resolvedAt *time.Time
	if approve {
		resolvedAt = &now
	} else {
		target = model.ComplaintStatusOpen
	}

	if err := s.complaints.UpdateStatus(ctx, complaint.ID, target, notePtr, resolvedAt); err != nil {
		return nil, err
	}
	if err := s.complaints.LogStatusChange(ctx, &model.ComplaintStatusLog{
		ComplaintID: complaint.ID,
		OldStatus:   &old,
		NewStatus:   target,
		Note:        note,
		ChangedBy:   &principal.UserID,
	}); err != nil {
		return nil, err
	}

	complaint.Status = target
	complaint.VerificationNote = notePtr
	complaint.ResolvedAt = resolvedAt

	publish(ctx, s.publisher, "complaint", complaint.ID.String(), complaint)
	return complaint, nil
}

func (s *ComplaintService) List(ctx context.Context, statuses []model.ComplaintStatus, limit int) ([]model.Complaint, error) {
	return s.complaints.List(ctx, statuses, limit)
}

func (s *ComplaintService) Get(ctx context.Context, id uuid.UUID) (*model.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return complaint, nil
}
