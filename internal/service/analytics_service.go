package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"civic-trust-service/internal/geo"
	"civic-trust-service/internal/model"
)

type AnalyticsService struct {
	policy     Policy
	bins       BinStore
	disposals  DisposalStore
	complaints ComplaintStore
	wallet     WalletStore
	rewards    RewardStore
	log        zerolog.Logger
	now        func() time.Time
}

func NewAnalyticsService(
	policy Policy,
	bins BinStore,
	disposals DisposalStore,
	complaints ComplaintStore,
	wallet WalletStore,
	rewards RewardStore,
	log zerolog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		policy:     policy,
		bins:       bins,
		disposals:  disposals,
		complaints: complaints,
		wallet:     wallet,
		rewards:    rewards,
		log:        log,
		now:        time.Now,
	}
}

// Summary fetches the raw slices and folds them through summarize. Admin
// only: the aggregate exposes per-bin and per-user behavior.
func (s *AnalyticsService) Summary(ctx context.Context, principal model.Principal) (*model.AnalyticsSummary, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	bins, err := s.bins.List(ctx)
	if err != nil {
		return nil, err
	}
	disposals, err := s.disposals.List(ctx)
	if err != nil {
		return nil, err
	}
	complaints, err := s.complaints.List(ctx, nil, 0)
	if err != nil {
		return nil, err
	}
	entries, err := s.wallet.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	redemptions, err := s.rewards.CountRedemptions(ctx)
	if err != nil {
		return nil, err
	}

	summary := summarize(bins, disposals, complaints, entries, s.policy.HotspotTopN)
	summary.TotalRedemptions = int(redemptions)
	summary.GeneratedAt = s.now()
	return summary, nil
}

// summarize is the pure aggregation core. Rates over empty inputs are 0,
// never NaN.
func summarize(bins []model.Bin, disposals []model.DisposalRecord, complaints []model.Complaint, entries []model.WalletEntry, topN int) *model.AnalyticsSummary {
	binNames := make(map[uuid.UUID]string, len(bins))
	for _, b := range bins {
		binNames[b.ID] = b.Name
	}

	usage := make(map[uuid.UUID]*model.BinUsage)
	active := make(map[uuid.UUID]struct{})
	verified := 0
	hotspots := make(map[string]int)

	for _, d := range disposals {
		u, ok := usage[d.BinID]
		if !ok {
			u = &model.BinUsage{BinID: d.BinID, Name: binNames[d.BinID]}
			usage[d.BinID] = u
		}
		u.TotalActions++
		if d.Verified {
			u.VerifiedCount++
			verified++
		} else {
			hotspots[geo.HotspotKey(d.Coordinates())]++
		}
		active[d.UserID] = struct{}{}
	}

	resolved := 0
	var resolutionHours float64
	for _, c := range complaints {
		active[c.UserID] = struct{}{}
		if c.Status == model.ComplaintStatusResolved && c.ResolvedAt != nil {
			resolved++
			resolutionHours += c.ResolvedAt.Sub(c.CreatedAt).Hours()
		} else {
			hotspots[geo.HotspotKey(c.Coordinates())]++
		}
	}

	earned := 0
	for _, e := range entries {
		if e.Type == model.WalletEntryEarn {
			earned += e.Points
		}
	}

	binUsage := make([]model.BinUsage, 0, len(usage))
	for _, u := range usage {
		binUsage = append(binUsage, *u)
	}
	sort.Slice(binUsage, func(i, j int) bool {
		if binUsage[i].TotalActions != binUsage[j].TotalActions {
			return binUsage[i].TotalActions > binUsage[j].TotalActions
		}
		return binUsage[i].BinID.String() < binUsage[j].BinID.String()
	})

	summary := &model.AnalyticsSummary{
		BinUsage:               binUsage,
		ActiveUsers:            len(active),
		TotalPointsDistributed: earned,
		Hotspots:               topHotspots(hotspots, topN),
	}
	if len(complaints) > 0 {
		summary.ComplaintResolutionRate = float64(resolved) / float64(len(complaints))
	}
	if resolved > 0 {
		summary.AvgResolutionHours = resolutionHours / float64(resolved)
	}
	if len(disposals) > 0 {
		summary.VerificationRate = float64(verified) / float64(len(disposals))
	}
	return summary
}

func topHotspots(cells map[string]int, topN int) []model.Hotspot {
	out := make([]model.Hotspot, 0, len(cells))
	for key, count := range cells {
		out = append(out, model.Hotspot{CellKey: key, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CellKey < out[j].CellKey
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
