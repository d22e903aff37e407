package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/estfeed/metering_sdk/common"
	"github.com/estfeed/metering_sdk/config"
	"github.com/estfeed/metering_sdk/internal/utils"
)

const (
	pathMeteringPointEICs = "/api/public/v1/metering-point-eics"
	pathMeteringData      = "/api/public/v1/metering-data"

	defaultHTTPTimeout = 30 * time.Second
)

// Client is an authenticated, rate-limited client for the Estfeed public
// API. All methods are safe for concurrent use; requests are serialized so
// the minimum request spacing holds across goroutines.
type Client struct {
	apiHost    string
	httpClient *http.Client
	tokens     *tokenManager
	limiter    *rateLimiter
	logger     *zap.Logger
	now        func() time.Time

	// reqMu serializes the full request cycle: throttle wait, token fetch
	// and the API call itself.
	reqMu sync.Mutex
}

// NewClient creates an Estfeed API client from the feed settings. The config
// is validated and defaults are filled in place.
func NewClient(estCfg *config.EstfeedConfig, cfg *config.Config) (*Client, error) {
	if estCfg == nil {
		return nil, fmt.Errorf("estfeed config cannot be nil")
	}
	if err := estCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid estfeed config: %w", err)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	httpClient := estCfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	logger := cfg.GetLogger()
	return &Client{
		apiHost:    estCfg.APIHost,
		httpClient: httpClient,
		tokens:     newTokenManager(estCfg.TokenURL, estCfg.ClientID, estCfg.ClientSecret, httpClient, logger),
		limiter:    newRateLimiter(logger),
		logger:     logger,
		now:        time.Now,
	}, nil
}

// GetAccessToken returns a valid OAuth2 access token, fetching one if the
// cached token has expired. Exposed for connectivity probes.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	return c.tokens.Token(ctx)
}

// RateLimitInfo returns a diagnostic snapshot of the client-side throttle
// and the server's most recent rate-limit headers.
func (c *Client) RateLimitInfo() RateLimitInfo {
	return c.limiter.snapshot()
}

// ListMeteringPoints fetches the metering points the credentials grant
// access to, valid at the current instant.
func (c *Client) ListMeteringPoints(ctx context.Context) ([]common.MeteringPoint, error) {
	now := utils.FormatAPITime(c.now())
	raw, err := c.request(ctx, http.MethodGet, pathMeteringPointEICs, url.Values{
		"startDateTime": {now},
		"endDateTime":   {now},
	})
	if err != nil {
		return nil, err
	}

	list := unwrap(raw, pointListKeys)
	if list == nil {
		if classifyPayload(raw) != shapeEmpty {
			c.logger.Warn("unrecognized metering points payload shape")
		}
		return nil, nil
	}

	points := make([]common.MeteringPoint, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		point := common.MeteringPoint{}
		point.EIC, _ = obj["eic"].(string)
		if ct, ok := obj["commodityType"].(string); ok {
			point.CommodityType = common.CommodityType(ct)
		}
		point.ValidFrom, _ = obj["validFrom"].(string)
		point.ValidTo, _ = obj["validTo"].(string)
		if point.EIC != "" {
			points = append(points, point)
		}
	}
	if len(points) == 0 {
		c.logger.Warn("no metering points returned for credentials")
	}
	return points, nil
}

// GetMeteringData fetches measurements for one EIC over [start, end] at the
// given resolution. The result is sorted ascending by timestamp.
func (c *Client) GetMeteringData(ctx context.Context, eic string, start, end time.Time, resolution string) ([]common.Measurement, error) {
	if resolution == "" {
		resolution = config.DefaultResolution
	}
	raw, err := c.request(ctx, http.MethodGet, pathMeteringData, url.Values{
		"startDateTime":     {utils.FormatAPITime(start)},
		"endDateTime":       {utils.FormatAPITime(end)},
		"resolution":        {resolution},
		"meteringPointEics": {eic},
	})
	if err != nil {
		return nil, err
	}

	measurements := extractMeasurements(raw, eic, c.logger)
	sort.SliceStable(measurements, func(i, j int) bool {
		return measurements[i].Timestamp() < measurements[j].Timestamp()
	})

	c.logger.Debug("fetched metering data",
		zap.String("eic", eic),
		zap.String("resolution", resolution),
		zap.Int("count", len(measurements)),
	)
	return measurements, nil
}

// request performs one authenticated API call and decodes the JSON response.
// The body is decoded regardless of the Content-Type header; some endpoints
// return JSON labelled as plain text.
func (c *Client) request(ctx context.Context, method, path string, query url.Values) (any, error) {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	if err := c.limiter.enforce(ctx); err != nil {
		return nil, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.apiHost + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	c.limiter.recordRequestCompleted()
	if err != nil {
		return nil, &ConnectionError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	c.limiter.captureHeaders(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Endpoint: endpoint, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.tokens.invalidate()
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: "API rejected credentials"}
	case resp.StatusCode != http.StatusOK:
		return nil, &ProtocolError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    "unexpected status",
		}
	}

	if len(body) == 0 {
		return nil, nil
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &ProtocolError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    fmt.Sprintf("failed to decode response: %v", err),
		}
	}
	return decoded, nil
}
