package imagery

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// ContentHash returns a deterministic, order-sensitive token for an image
// reference. Identical input always yields identical output; cryptographic
// strength is not required, only collision scarcity.
func ContentHash(reference string) string {
	h := fnv.New64a()
	h.Write([]byte(reference))
	return fmt.Sprintf("%016x", h.Sum64())
}

// IsDuplicate reports whether the hash was already used by an accepted
// submission.
func IsDuplicate(used map[string]bool, hash string) bool {
	return used[hash]
}

// ConsistencyCheck reports whether two references hold genuinely different
// content, i.e. form a real before/after pair. False means the "after" image
// is a reuse of the "before" one.
func ConsistencyCheck(beforeRef, afterRef string) bool {
	return ContentHash(beforeRef) != ContentHash(afterRef)
}

var screenCaptureMarkers = []string{
	"screenshot",
	"screen_shot",
	"screen-capture",
	"screencapture",
	"screen_recording",
	"screenrecord",
}

// ValidateCaptureQuality rejects references that cannot be live camera
// captures: empty or too-short references, anything matching a screenshot or
// screen-recording naming pattern, and a deterministic pseudo-blur heuristic
// standing in for a real sharpness check.
func ValidateCaptureQuality(reference string) error {
	ref := strings.TrimSpace(reference)
	if len(ref) < 8 {
		return fmt.Errorf("photo reference missing or too short")
	}
	lower := strings.ToLower(ref)
	for _, marker := range screenCaptureMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("screen capture detected, live photo required")
		}
	}
	if pseudoBlurry(ref) {
		return fmt.Errorf("image too blurry")
	}
	return nil
}

// pseudoBlurry is the MVP stand-in for a sharpness detector.
func pseudoBlurry(reference string) bool {
	h := fnv.New64a()
	h.Write([]byte(reference))
	return h.Sum64()%29 == 0
}

// ContentReport is the outcome of content validation for one image.
type ContentReport struct {
	QualityPassed bool    `json:"quality_passed"`
	BinDetected   bool    `json:"bin_detected"`
	WasteDetected bool    `json:"waste_detected"`
	Confidence    float64 `json:"confidence"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

// ContentValidator checks that an image shows the required object classes.
// The contract: deterministic given identical inputs, a confidence score,
// independent presence booleans per class, and a human-readable failure
// reason when a check fails. StubValidator satisfies it with a hash-derived
// pseudo-confidence until a real vision model is plugged in.
type ContentValidator interface {
	ValidateContent(reference, contextID string) ContentReport
}

type StubValidator struct{}

func (StubValidator) ValidateContent(reference, contextID string) ContentReport {
	report := ContentReport{QualityPassed: true}
	if err := ValidateCaptureQuality(reference); err != nil {
		report.QualityPassed = false
		report.FailureReason = err.Error()
		return report
	}

	h := fnv.New64a()
	h.Write([]byte(reference + "|" + contextID))
	report.Confidence = 0.60 + float64(h.Sum64()%1000)/1000.0*0.38
	report.BinDetected = report.Confidence > 0.62
	report.WasteDetected = report.Confidence > 0.68

	if !report.BinDetected {
		report.FailureReason = "no bin detected in frame"
	} else if !report.WasteDetected {
		report.FailureReason = "no waste detected in frame"
	}
	return report
}
