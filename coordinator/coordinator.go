package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/estfeed/metering_sdk/api"
	"github.com/estfeed/metering_sdk/common"
	"github.com/estfeed/metering_sdk/config"
	"github.com/estfeed/metering_sdk/history"
)

// DefaultDataWindow is the trailing window queried on each periodic refresh.
// Wide enough that a reading is found even when the feed lags by an interval.
const DefaultDataWindow = 2 * time.Hour

// ErrNotReady reports that the feed could not be reached during setup. The
// caller should retry later rather than treat the configuration as invalid.
var ErrNotReady = errors.New("estfeed: feed not ready")

// UpdateFailedError wraps a refresh failure for one metering point.
type UpdateFailedError struct {
	EIC string
	Err error
}

func (e *UpdateFailedError) Error() string {
	return fmt.Sprintf("update failed for %s: %v", e.EIC, e.Err)
}

func (e *UpdateFailedError) Unwrap() error {
	return e.Err
}

// MeteringClient is the API surface the coordinator needs. Satisfied by
// *api.Client.
type MeteringClient interface {
	GetAccessToken(ctx context.Context) (string, error)
	ListMeteringPoints(ctx context.Context) ([]common.MeteringPoint, error)
	GetMeteringData(ctx context.Context, eic string, start, end time.Time, resolution string) ([]common.Measurement, error)
	RateLimitInfo() api.RateLimitInfo
}

// Coordinator drives one tracked metering point: periodic latest-reading
// refreshes, manual history backfills and option updates. All methods are
// safe for concurrent use.
type Coordinator struct {
	client MeteringClient
	store  *history.Store
	cfg    *config.EstfeedConfig
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	latest      common.Measurement
	lastSuccess time.Time
	lastError   string
	updates     int64
}

// New creates a coordinator for one metering point. The Estfeed config must
// already be validated (NewClient does this).
func New(client MeteringClient, store *history.Store, estCfg *config.EstfeedConfig, cfg *config.Config) (*Coordinator, error) {
	if client == nil {
		return nil, fmt.Errorf("metering client cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("history store cannot be nil")
	}
	if estCfg == nil {
		return nil, fmt.Errorf("estfeed config cannot be nil")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	return &Coordinator{
		client: client,
		store:  store,
		cfg:    estCfg,
		logger: cfg.GetLogger(),
		now:    time.Now,
	}, nil
}

// EIC returns the tracked metering point identifier.
func (c *Coordinator) EIC() string {
	return c.store.EIC()
}

// Probe verifies the feed is reachable and the credentials work. A transport
// failure is reported as ErrNotReady so the caller can retry; an auth or
// protocol failure passes through unchanged.
func (c *Coordinator) Probe(ctx context.Context) error {
	if _, err := c.client.GetAccessToken(ctx); err != nil {
		if errors.Is(err, api.ErrConnection) {
			return fmt.Errorf("%w: %v", ErrNotReady, err)
		}
		return err
	}
	return nil
}

// Setup prepares the coordinator for periodic operation: restore the
// persisted snapshot, then run the initial backfill when the cache is empty
// and a backfill depth is configured.
func (c *Coordinator) Setup(ctx context.Context) error {
	if err := c.store.Load(ctx); err != nil {
		return err
	}

	if !c.store.HistoryAvailable() {
		days := c.cfg.HistoryDays
		if days > 0 {
			if days > config.MaxHistoryDays {
				days = config.MaxHistoryDays
			}
			if _, err := c.FetchHistory(ctx, days); err != nil {
				return err
			}
		}
	}
	return nil
}

// RefreshLatest fetches the trailing data window and updates the latest
// reading. New measurements are merged into the history cache. A window with
// no data keeps the previous reading.
func (c *Coordinator) RefreshLatest(ctx context.Context) error {
	if !c.cfg.CommodityEnabled() {
		c.logger.Debug("commodity disabled, skipping refresh", zap.String("eic", c.EIC()))
		return nil
	}

	c.mu.Lock()
	resolution := c.cfg.Resolution
	c.mu.Unlock()

	end := c.now().UTC()
	start := end.Add(-DefaultDataWindow)

	measurements, err := c.client.GetMeteringData(ctx, c.EIC(), start, end, resolution)
	if err != nil {
		c.recordFailure(err)
		return &UpdateFailedError{EIC: c.EIC(), Err: err}
	}

	if len(measurements) > 0 {
		if _, err := c.store.Merge(ctx, measurements); err != nil {
			c.logger.Warn("failed to persist merged measurements",
				zap.String("eic", c.EIC()),
				zap.Error(err),
			)
		}
		c.mu.Lock()
		c.latest = measurements[len(measurements)-1]
		c.mu.Unlock()
	}

	c.recordSuccess()
	return nil
}

// FetchHistory runs a manual backfill. The day count is clamped to the
// allowed range; zero selects the default depth. Returns the number of new
// points added to the cache.
func (c *Coordinator) FetchHistory(ctx context.Context, days int) (int, error) {
	if days == 0 {
		days = config.DefaultHistoryDays
	}
	if days < config.MinHistoryDays || days > config.MaxHistoryDays {
		return 0, fmt.Errorf("history days must be between %d and %d, got %d",
			config.MinHistoryDays, config.MaxHistoryDays, days)
	}

	added, err := c.store.FetchHistory(ctx, days)
	if err != nil {
		c.recordFailure(err)
		return added, &UpdateFailedError{EIC: c.EIC(), Err: err}
	}
	c.recordSuccess()
	return added, nil
}

// UpdateOptions applies new polling options at runtime. Credentials and the
// tracked EIC cannot change; a different EIC needs a new coordinator.
func (c *Coordinator) UpdateOptions(resolution string, scanIntervalSeconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if resolution != "" {
		c.cfg.Resolution = config.ResolveResolution(resolution)
	}
	if scanIntervalSeconds > 0 {
		c.cfg.ScanIntervalSeconds = scanIntervalSeconds
	}
	c.logger.Info("options updated",
		zap.String("eic", c.EIC()),
		zap.String("resolution", c.cfg.Resolution),
		zap.Int("scan_interval_seconds", c.cfg.ScanIntervalSeconds),
	)
}

// Run refreshes the latest reading on the configured interval until ctx is
// cancelled. Refresh failures are logged and the loop continues.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		c.mu.Lock()
		interval := time.Duration(c.cfg.ScanIntervalSeconds) * time.Second
		c.mu.Unlock()

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err := c.RefreshLatest(ctx); err != nil {
			c.logger.Warn("periodic refresh failed",
				zap.String("eic", c.EIC()),
				zap.Error(err),
			)
		}
	}
}

// Latest returns the most recent measurement, or nil before the first
// successful refresh with data.
func (c *Coordinator) Latest() common.Measurement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

func (c *Coordinator) recordSuccess() {
	c.mu.Lock()
	c.lastSuccess = c.now().UTC()
	c.lastError = ""
	c.updates++
	c.mu.Unlock()
}

func (c *Coordinator) recordFailure(err error) {
	c.mu.Lock()
	c.lastError = err.Error()
	c.updates++
	c.mu.Unlock()
}
