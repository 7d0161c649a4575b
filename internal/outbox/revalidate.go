package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type RevalidationRequest struct {
	BinLatitude         float64 `json:"bin_latitude"`
	BinLongitude        float64 `json:"bin_longitude"`
	UserLatitude        float64 `json:"user_latitude"`
	UserLongitude       float64 `json:"user_longitude"`
	AccuracyMeters      float64 `json:"accuracy_meters"`
	AgeSeconds          float64 `json:"age_seconds"`
	AllowedRadiusMeters float64 `json:"allowed_radius_meters"`
}

type RevalidationResult struct {
	Valid          bool    `json:"valid"`
	DistanceMeters float64 `json:"distance_meters"`
}

// GeoRevalidator is the server-side secondary confirmation of a local
// geo-verification. Disagreement raises an additional fraud alert; it never
// retroactively unverifies the record. Timeouts fall back to the local
// verdict.
type GeoRevalidator interface {
	Revalidate(ctx context.Context, req RevalidationRequest) (*RevalidationResult, error)
}

type HTTPRevalidator struct {
	url    string
	client *http.Client
}

func NewHTTPRevalidator(url string, timeout time.Duration) *HTTPRevalidator {
	return &HTTPRevalidator{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (r *HTTPRevalidator) Revalidate(ctx context.Context, req RevalidationRequest) (*RevalidationResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("revalidation returned %d", resp.StatusCode)
	}

	var result RevalidationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
