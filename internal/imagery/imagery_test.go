package imagery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHashDeterministic(t *testing.T) {
	a := ContentHash("file:///captures/photo-0003.jpg")
	b := ContentHash("file:///captures/photo-0003.jpg")
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestContentHashDistinguishesInputs(t *testing.T) {
	assert.NotEqual(t,
		ContentHash("file:///captures/photo-0003.jpg"),
		ContentHash("file:///captures/photo-0004.jpg"))
	// Order-sensitive.
	assert.NotEqual(t, ContentHash("ab"), ContentHash("ba"))
}

func TestIsDuplicate(t *testing.T) {
	used := map[string]bool{"deadbeef": true}
	assert.True(t, IsDuplicate(used, "deadbeef"))
	assert.False(t, IsDuplicate(used, "cafebabe"))
}

func TestConsistencyCheck(t *testing.T) {
	assert.True(t, ConsistencyCheck("before.jpg", "after.jpg"))
	assert.False(t, ConsistencyCheck("same.jpg", "same.jpg"))
}

func TestValidateCaptureQuality(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{"valid capture", "file:///captures/photo-0003.jpg", false},
		{"empty", "", true},
		{"too short", "a.jpg", true},
		{"screenshot name", "file:///captures/Screenshot_2025-11-02.png", true},
		{"screen recording name", "file:///captures/screen_recording_01.mp4", true},
		{"pseudo blur", "file:///captures/photo-0034.jpg", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCaptureQuality(tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStubValidatorIsDeterministic(t *testing.T) {
	v := StubValidator{}
	first := v.ValidateContent("file:///captures/photo-0003.jpg", "MMC-BIN-001")
	second := v.ValidateContent("file:///captures/photo-0003.jpg", "MMC-BIN-001")
	assert.Equal(t, first, second)
}

func TestStubValidatorConfidenceBands(t *testing.T) {
	v := StubValidator{}

	full := v.ValidateContent("file:///captures/photo-0003.jpg", "MMC-BIN-001")
	require.True(t, full.QualityPassed)
	assert.True(t, full.BinDetected)
	assert.True(t, full.WasteDetected)
	assert.GreaterOrEqual(t, full.Confidence, 0.60)
	assert.LessOrEqual(t, full.Confidence, 0.98)
	assert.Empty(t, full.FailureReason)

	noBin := v.ValidateContent("file:///captures/photo-0000.jpg", "MMC-BIN-001")
	require.True(t, noBin.QualityPassed)
	assert.False(t, noBin.BinDetected)
	assert.Equal(t, "no bin detected in frame", noBin.FailureReason)

	noWaste := v.ValidateContent("file:///captures/photo-0004.jpg", "MMC-BIN-001")
	require.True(t, noWaste.QualityPassed)
	assert.True(t, noWaste.BinDetected)
	assert.False(t, noWaste.WasteDetected)
	assert.Equal(t, "no waste detected in frame", noWaste.FailureReason)
}

func TestStubValidatorRejectsBadCapture(t *testing.T) {
	v := StubValidator{}
	report := v.ValidateContent("file:///captures/Screenshot_2025-11-02.png", "MMC-BIN-001")
	assert.False(t, report.QualityPassed)
	assert.False(t, report.BinDetected)
	assert.NotEmpty(t, report.FailureReason)
}
