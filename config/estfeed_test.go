package config

import (
	"testing"

	"github.com/estfeed/metering_sdk/common"
	"github.com/stretchr/testify/assert"
)

func TestNewEstfeedConfigDefaults(t *testing.T) {
	cfg := NewEstfeedConfig()

	assert.Equal(t, DefaultAPIHost, cfg.APIHost)
	assert.Equal(t, DefaultTokenURL, cfg.TokenURL)
	assert.Equal(t, DefaultResolution, cfg.Resolution)
	assert.Equal(t, DefaultScanIntervalSeconds, cfg.ScanIntervalSeconds)
	assert.Equal(t, DefaultHistoryDays, cfg.HistoryDays)
}

func TestEstfeedConfigChainedMethods(t *testing.T) {
	cfg := NewEstfeedConfig().
		WithCredentials("client-id", "client-secret").
		WithEIC("38ZEE-TEST-00001", common.CommodityElectricity).
		WithResolution("15min").
		WithScanInterval(600).
		WithHistoryDays(30)

	assert.Equal(t, "client-id", cfg.ClientID)
	assert.Equal(t, "client-secret", cfg.ClientSecret)
	assert.Equal(t, "38ZEE-TEST-00001", cfg.EIC)
	assert.Equal(t, common.CommodityElectricity, cfg.CommodityType)
	assert.Equal(t, "FIFTEEN_MIN", cfg.Resolution)
	assert.Equal(t, 600, cfg.ScanIntervalSeconds)
	assert.Equal(t, 30, cfg.HistoryDays)
}

func TestResolveResolution(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{name: "label 15min", label: "15min", want: "FIFTEEN_MIN"},
		{name: "label 1h", label: "1h", want: "HOUR"},
		{name: "label 1w", label: "1w", want: "WEEK"},
		{name: "label 1m", label: "1m", want: "MONTH"},
		{name: "API value passes through", label: "MONTH", want: "MONTH"},
		{name: "unknown label falls back", label: "whenever", want: DefaultResolution},
		{name: "empty falls back", label: "", want: DefaultResolution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveResolution(tt.label))
		})
	}
}

func TestEstfeedConfigValidate(t *testing.T) {
	t.Run("missing client id", func(t *testing.T) {
		cfg := NewEstfeedConfig()
		cfg.ClientSecret = "secret"
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing client secret", func(t *testing.T) {
		cfg := NewEstfeedConfig()
		cfg.ClientID = "id"
		assert.Error(t, cfg.Validate())
	})

	t.Run("fills defaults", func(t *testing.T) {
		cfg := &EstfeedConfig{
			ClientID:     "id",
			ClientSecret: "secret",
		}
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, DefaultAPIHost, cfg.APIHost)
		assert.Equal(t, DefaultTokenURL, cfg.TokenURL)
		assert.Equal(t, DefaultResolution, cfg.Resolution)
		assert.Equal(t, DefaultScanIntervalSeconds, cfg.ScanIntervalSeconds)
	})

	t.Run("trims trailing slash from API host", func(t *testing.T) {
		cfg := NewEstfeedConfig().WithCredentials("id", "secret")
		cfg.APIHost = "https://example.com/"
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, "https://example.com", cfg.APIHost)
	})
}

func TestCommodityEnabled(t *testing.T) {
	enabled := true
	disabled := false

	tests := []struct {
		name string
		cfg  EstfeedConfig
		want bool
	}{
		{
			name: "electricity enabled by default",
			cfg:  EstfeedConfig{CommodityType: common.CommodityElectricity},
			want: true,
		},
		{
			name: "electricity toggled off",
			cfg:  EstfeedConfig{CommodityType: common.CommodityElectricity, EnableElectricity: &disabled},
			want: false,
		},
		{
			name: "gas toggled on explicitly",
			cfg:  EstfeedConfig{CommodityType: common.CommodityGas, EnableGas: &enabled},
			want: true,
		},
		{
			name: "gas toggled off",
			cfg:  EstfeedConfig{CommodityType: common.CommodityGas, EnableGas: &disabled},
			want: false,
		},
		{
			name: "gas toggle does not affect electricity",
			cfg:  EstfeedConfig{CommodityType: common.CommodityElectricity, EnableGas: &disabled},
			want: true,
		},
		{
			name: "unknown commodity always enabled",
			cfg:  EstfeedConfig{CommodityType: "HEAT", EnableElectricity: &disabled, EnableGas: &disabled},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.CommodityEnabled())
		})
	}
}
