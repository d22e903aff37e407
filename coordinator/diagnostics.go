package coordinator

import (
	"time"

	"github.com/estfeed/metering_sdk/api"
	"github.com/estfeed/metering_sdk/common"
)

// Diagnostics is a point-in-time report of one coordinator's state, safe to
// export: credentials are masked and tokens are never included.
type Diagnostics struct {
	EIC              string               `json:"eic"`
	CommodityType    common.CommodityType `json:"commodity_type,omitempty"`
	Resolution       string               `json:"resolution"`
	ScanIntervalSecs int                  `json:"scan_interval_seconds"`
	HistoryAvailable bool                 `json:"history_available"`
	HistoryPoints    int                  `json:"history_points"`
	LastFetch        string               `json:"last_fetch,omitempty"`
	LastSuccess      string               `json:"last_success,omitempty"`
	LastError        string               `json:"last_error,omitempty"`
	UpdateCount      int64                `json:"update_count"`
	RateLimit        api.RateLimitInfo    `json:"rate_limit"`
	ClientID         string               `json:"client_id"`
	ClientSecret     string               `json:"client_secret"`
}

// Diagnostics returns the coordinator's diagnostic report.
func (c *Coordinator) Diagnostics() Diagnostics {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := Diagnostics{
		EIC:              c.EIC(),
		CommodityType:    c.cfg.CommodityType,
		Resolution:       c.cfg.Resolution,
		ScanIntervalSecs: c.cfg.ScanIntervalSeconds,
		HistoryAvailable: c.store.HistoryAvailable(),
		HistoryPoints:    c.store.HistoryPoints(),
		LastFetch:        c.store.LastFetch(),
		LastError:        c.lastError,
		UpdateCount:      c.updates,
		RateLimit:        c.client.RateLimitInfo(),
		ClientID:         redact(c.cfg.ClientID),
		ClientSecret:     mask(c.cfg.ClientSecret),
	}
	if !c.lastSuccess.IsZero() {
		d.LastSuccess = c.lastSuccess.Format(time.RFC3339)
	}
	return d
}

// redact masks an identifier for diagnostics, keeping at most the first two
// characters as a hint.
func redact(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "****"
}

// mask fully hides a secret. No part of it ever reaches diagnostic output.
func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}
