package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAPITime(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	assert.Equal(t, "2025-06-01T12:30:45+0000", FormatAPITime(ts))

	// Non-UTC input is normalized to UTC before formatting
	loc := time.FixedZone("EET", 3*3600)
	assert.Equal(t, "2025-06-01T09:30:45+0000", FormatAPITime(ts.In(loc).Add(-3*time.Hour)))
}

func TestParseAPITime(t *testing.T) {
	ts, err := ParseAPITime("2025-06-01T12:30:45+0000")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC), ts.UTC())

	ts, err = ParseAPITime("2025-06-01T12:30:45+0300")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 9, 30, 45, 0, time.UTC), ts.UTC())

	_, err = ParseAPITime("2025-06-01 12:30:45")
	assert.Error(t, err)
}

func TestFormatParseRoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	parsed, err := ParseAPITime(FormatAPITime(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))
}

func TestValidateEIC(t *testing.T) {
	tests := []struct {
		name    string
		eic     string
		wantErr bool
	}{
		{name: "valid", eic: "38ZEE-1000000-XXXXX", wantErr: false},
		{name: "empty", eic: "", wantErr: true},
		{name: "slash", eic: "EIC/1", wantErr: true},
		{name: "backslash", eic: `EIC\1`, wantErr: true},
		{name: "colon", eic: "EIC:1", wantErr: true},
		{name: "wildcard", eic: "EIC*", wantErr: true},
		{name: "question mark", eic: "EIC?", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEIC(tt.eic)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSnapshotPath(t *testing.T) {
	assert.Equal(t, "history/38zee-test-00001.json", SnapshotPath("38ZEE-TEST-00001"))
	assert.Equal(t, "history/eic1.json", SnapshotPath("EIC1"))
}

func TestFormatPath(t *testing.T) {
	assert.Equal(t, "a/b/c", FormatPath("a", "b", "c"))
	assert.Equal(t, "a/b", FormatPath("a", "", "b"))
	assert.Equal(t, "", FormatPath())
}
