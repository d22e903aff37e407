package config

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/estfeed/metering_sdk/common"
)

// Feed defaults. The token endpoint is fixed; everything else can be
// overridden per entry.
const (
	// DefaultAPIHost base URL of the Estfeed API
	DefaultAPIHost = "https://estfeed.elering.ee"
	// DefaultTokenURL OAuth2 client-credentials token endpoint
	DefaultTokenURL = "https://kc.elering.ee/realms/elering-sso/protocol/openid-connect/token"
	// DefaultResolution data granularity requested when none is configured
	DefaultResolution = "HOUR"
	// DefaultScanIntervalSeconds interval between periodic latest-reading refreshes
	DefaultScanIntervalSeconds = 300
	// InitialBackfillDays history fetched automatically on first setup
	InitialBackfillDays = 7
	// DefaultHistoryDays history fetched when a manual backfill is requested without a day count
	DefaultHistoryDays = 90
	// MinHistoryDays lower bound for a manual backfill request
	MinHistoryDays = 1
	// MaxHistoryDays upper bound for a manual backfill request
	MaxHistoryDays = 365
)

// ResolutionOptions maps user-facing resolution labels to API enum values.
var ResolutionOptions = map[string]string{
	"15min": "FIFTEEN_MIN",
	"1h":    "HOUR",
	"1w":    "WEEK",
	"1m":    "MONTH",
}

// ResolveResolution maps a resolution label to its API value. Unknown labels
// fall back to the default; an API enum value passes through unchanged.
func ResolveResolution(label string) string {
	if v, ok := ResolutionOptions[label]; ok {
		return v
	}
	for _, v := range ResolutionOptions {
		if v == label {
			return label
		}
	}
	return DefaultResolution
}

// EstfeedConfig holds the per-entry settings for one tracked metering point:
// the API credentials plus the user-tunable polling options.
type EstfeedConfig struct {
	// APIHost base URL of the Estfeed API, DefaultAPIHost when empty
	APIHost string `yaml:"api-host,omitempty" toml:"api-host,omitempty" json:"api-host,omitempty"`
	// TokenURL OAuth2 token endpoint, DefaultTokenURL when empty
	TokenURL string `yaml:"token-url,omitempty" toml:"token-url,omitempty" json:"token-url,omitempty"`
	// ClientID OAuth2 client id
	ClientID string `yaml:"client-id,omitempty" toml:"client-id,omitempty" json:"client-id,omitempty"`
	// ClientSecret OAuth2 client secret, never logged
	ClientSecret string `yaml:"client-secret,omitempty" toml:"client-secret,omitempty" json:"client-secret,omitempty"`
	// EIC the tracked metering point identifier
	EIC string `yaml:"eic,omitempty" toml:"eic,omitempty" json:"eic,omitempty"`
	// CommodityType ELECTRICITY or GAS
	CommodityType common.CommodityType `yaml:"commodity-type,omitempty" toml:"commodity-type,omitempty" json:"commodity-type,omitempty"`
	// Resolution API resolution enum value, DefaultResolution when empty
	Resolution string `yaml:"resolution,omitempty" toml:"resolution,omitempty" json:"resolution,omitempty"`
	// ScanIntervalSeconds seconds between periodic refreshes
	ScanIntervalSeconds int `yaml:"scan-interval-seconds,omitempty" toml:"scan-interval-seconds,omitempty" json:"scan-interval-seconds,omitempty"`
	// HistoryDays days of history fetched by the initial backfill, 0 disables it
	HistoryDays int `yaml:"history-days,omitempty" toml:"history-days,omitempty" json:"history-days,omitempty"`
	// EnableElectricity nil means enabled
	EnableElectricity *bool `yaml:"enable-electricity,omitempty" toml:"enable-electricity,omitempty" json:"enable-electricity,omitempty"`
	// EnableGas nil means enabled
	EnableGas *bool `yaml:"enable-gas,omitempty" toml:"enable-gas,omitempty" json:"enable-gas,omitempty"`

	// HTTPClient overrides the transport, used by tests. Not serialized.
	HTTPClient *http.Client `yaml:"-" toml:"-" json:"-"`
}

// NewEstfeedConfig creates an EstfeedConfig with feed defaults.
func NewEstfeedConfig() *EstfeedConfig {
	return &EstfeedConfig{
		APIHost:             DefaultAPIHost,
		TokenURL:            DefaultTokenURL,
		Resolution:          DefaultResolution,
		ScanIntervalSeconds: DefaultScanIntervalSeconds,
		HistoryDays:         DefaultHistoryDays,
	}
}

// WithCredentials sets the OAuth2 client credentials.
func (c *EstfeedConfig) WithCredentials(clientID, clientSecret string) *EstfeedConfig {
	c.ClientID = clientID
	c.ClientSecret = clientSecret
	return c
}

// WithEIC sets the tracked metering point.
func (c *EstfeedConfig) WithEIC(eic string, commodity common.CommodityType) *EstfeedConfig {
	c.EIC = eic
	c.CommodityType = commodity
	return c
}

// WithAPIHost sets a non-default API host.
func (c *EstfeedConfig) WithAPIHost(host string) *EstfeedConfig {
	c.APIHost = host
	return c
}

// WithTokenURL sets a non-default token endpoint.
func (c *EstfeedConfig) WithTokenURL(tokenURL string) *EstfeedConfig {
	c.TokenURL = tokenURL
	return c
}

// WithResolution sets the data resolution from a label ("1h") or API value ("HOUR").
func (c *EstfeedConfig) WithResolution(resolution string) *EstfeedConfig {
	c.Resolution = ResolveResolution(resolution)
	return c
}

// WithScanInterval sets the periodic refresh interval in seconds.
func (c *EstfeedConfig) WithScanInterval(seconds int) *EstfeedConfig {
	c.ScanIntervalSeconds = seconds
	return c
}

// WithHistoryDays sets the initial backfill depth. Zero disables the
// automatic backfill.
func (c *EstfeedConfig) WithHistoryDays(days int) *EstfeedConfig {
	c.HistoryDays = days
	return c
}

// WithHTTPClient sets a custom HTTP client.
func (c *EstfeedConfig) WithHTTPClient(client *http.Client) *EstfeedConfig {
	c.HTTPClient = client
	return c
}

// CommodityEnabled reports whether this entry's commodity is enabled by the
// per-commodity toggles. Unknown commodities are always enabled.
func (c *EstfeedConfig) CommodityEnabled() bool {
	switch c.CommodityType {
	case common.CommodityElectricity:
		return c.EnableElectricity == nil || *c.EnableElectricity
	case common.CommodityGas:
		return c.EnableGas == nil || *c.EnableGas
	default:
		return true
	}
}

// Validate checks the fields every API call depends on and fills defaults for
// the optional ones.
func (c *EstfeedConfig) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("client id is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("client secret is required")
	}
	if c.APIHost == "" {
		c.APIHost = DefaultAPIHost
	}
	c.APIHost = strings.TrimSuffix(c.APIHost, "/")
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.Resolution == "" {
		c.Resolution = DefaultResolution
	}
	if c.ScanIntervalSeconds <= 0 {
		c.ScanIntervalSeconds = DefaultScanIntervalSeconds
	}
	return nil
}
