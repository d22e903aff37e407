package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/estfeed/metering_sdk/common"
	"github.com/estfeed/metering_sdk/config"
	"github.com/estfeed/metering_sdk/internal/utils"
	"github.com/estfeed/metering_sdk/storage"
)

// MaxWindowDays is the widest date range the feed accepts in one metering
// data request. Longer ranges are split into consecutive chunks.
const MaxWindowDays = 31

// DataFetcher fetches measurements from the feed. Satisfied by *api.Client.
type DataFetcher interface {
	GetMeteringData(ctx context.Context, eic string, start, end time.Time, resolution string) ([]common.Measurement, error)
}

// Store is the history cache for one EIC: an in-memory measurement list
// deduplicated by timestamp, persisted as a snapshot document on an object
// storage provider. All methods are safe for concurrent use.
type Store struct {
	provider   storage.ObjectStorageProvider
	client     DataFetcher
	eic        string
	resolution string
	logger     *zap.Logger
	now        func() time.Time

	mu           sync.RWMutex
	measurements []common.Measurement
	lastFetch    string
}

// NewStore creates a history store for one EIC backed by the given storage
// provider.
func NewStore(provider storage.ObjectStorageProvider, client DataFetcher, eic, resolution string, cfg *config.Config) (*Store, error) {
	if provider == nil {
		return nil, fmt.Errorf("storage provider cannot be nil")
	}
	if client == nil {
		return nil, fmt.Errorf("data fetcher cannot be nil")
	}
	if err := utils.ValidateEIC(eic); err != nil {
		return nil, err
	}
	if resolution == "" {
		resolution = config.DefaultResolution
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	return &Store{
		provider:   provider,
		client:     client,
		eic:        eic,
		resolution: resolution,
		logger:     cfg.GetLogger(),
		now:        time.Now,
	}, nil
}

// Load restores the persisted snapshot for this EIC, if one exists. A
// missing snapshot is not an error; the store simply starts empty.
func (s *Store) Load(ctx context.Context) error {
	path := utils.SnapshotPath(s.eic)

	exists, err := s.provider.Exists(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to check snapshot %s: %w", path, err)
	}
	if !exists {
		s.logger.Debug("no persisted snapshot", zap.String("eic", s.eic))
		return nil
	}

	reader, err := s.provider.Download(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to download snapshot %s: %w", path, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var snapshot common.HistorySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	s.mu.Lock()
	s.measurements = snapshot.Measurements
	s.lastFetch = snapshot.LastFetch
	s.mu.Unlock()

	s.logger.Info("restored history snapshot",
		zap.String("eic", s.eic),
		zap.Int("points", len(snapshot.Measurements)),
	)
	return nil
}

// FetchHistory backfills up to days of history ending now, merging fetched
// measurements into the cache and persisting a fresh snapshot when anything
// new arrived. Ranges wider than MaxWindowDays are fetched in consecutive
// chunks; a failed chunk is logged and skipped so one bad window does not
// abort the whole backfill. Only a persistence failure aborts the call.
// Returns the number of new points added.
func (s *Store) FetchHistory(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		return 0, fmt.Errorf("days must be positive, got %d", days)
	}

	end := s.now().UTC()
	start := end.AddDate(0, 0, -days)
	chunk := time.Duration(MaxWindowDays) * 24 * time.Hour

	var fetched []common.Measurement
	var failed int
	for cursor := start; cursor.Before(end); {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		chunkEnd := cursor.Add(chunk)
		if chunkEnd.After(end) {
			chunkEnd = end
		}

		batch, err := s.client.GetMeteringData(ctx, s.eic, cursor, chunkEnd, s.resolution)
		if err != nil {
			failed++
			s.logger.Warn("history chunk fetch failed",
				zap.String("eic", s.eic),
				zap.Time("chunk_start", cursor),
				zap.Time("chunk_end", chunkEnd),
				zap.Error(err),
			)
		} else {
			fetched = append(fetched, batch...)
		}
		cursor = chunkEnd
	}

	added := s.merge(fetched)
	s.logger.Info("history backfill complete",
		zap.String("eic", s.eic),
		zap.Int("days", days),
		zap.Int("fetched", len(fetched)),
		zap.Int("added", added),
		zap.Int("failed_chunks", failed),
	)

	if added > 0 {
		if err := s.save(ctx); err != nil {
			return added, err
		}
	}
	return added, nil
}

// Merge folds measurements into the cache, persisting a snapshot when any of
// them were new. Returns the number of points added.
func (s *Store) Merge(ctx context.Context, measurements []common.Measurement) (int, error) {
	added := s.merge(measurements)
	if added > 0 {
		if err := s.save(ctx); err != nil {
			return added, err
		}
	}
	return added, nil
}

// merge deduplicates by exact timestamp string and keeps the list sorted
// ascending. Records without a timestamp are dropped.
func (s *Store) merge(incoming []common.Measurement) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.measurements))
	for _, m := range s.measurements {
		seen[m.Timestamp()] = struct{}{}
	}

	added := 0
	for _, m := range incoming {
		ts := m.Timestamp()
		if ts == "" {
			continue
		}
		if _, dup := seen[ts]; dup {
			continue
		}
		seen[ts] = struct{}{}
		s.measurements = append(s.measurements, m)
		added++
	}

	if added > 0 {
		sortMeasurements(s.measurements)
	}
	return added
}

// save persists the current cache as a full snapshot document.
func (s *Store) save(ctx context.Context) error {
	s.mu.Lock()
	snapshot := common.HistorySnapshot{
		EIC:          s.eic,
		LastFetch:    s.now().UTC().Format(time.RFC3339),
		PointCount:   len(s.measurements),
		Measurements: s.measurements,
	}
	s.mu.Unlock()

	data, err := json.Marshal(&snapshot)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	path := utils.SnapshotPath(s.eic)
	if err := s.provider.Upload(ctx, path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to upload snapshot %s: %w", path, err)
	}

	s.mu.Lock()
	s.lastFetch = snapshot.LastFetch
	s.mu.Unlock()

	s.logger.Debug("persisted history snapshot",
		zap.String("eic", s.eic),
		zap.Int("points", snapshot.PointCount),
	)
	return nil
}

// Delete removes the persisted snapshot and clears the in-memory cache.
func (s *Store) Delete(ctx context.Context) error {
	path := utils.SnapshotPath(s.eic)
	exists, err := s.provider.Exists(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to check snapshot %s: %w", path, err)
	}
	if exists {
		if err := s.provider.Delete(ctx, path); err != nil {
			return fmt.Errorf("failed to delete snapshot %s: %w", path, err)
		}
	}

	s.mu.Lock()
	s.measurements = nil
	s.lastFetch = ""
	s.mu.Unlock()
	return nil
}

// EIC returns the metering point this store tracks.
func (s *Store) EIC() string {
	return s.eic
}

// HistoryAvailable reports whether the cache holds any measurements.
func (s *Store) HistoryAvailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.measurements) > 0
}

// HistoryPoints returns the number of cached measurements.
func (s *Store) HistoryPoints() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.measurements)
}

// LastFetch returns the RFC 3339 time of the last persisted snapshot, or ""
// when nothing has been persisted.
func (s *Store) LastFetch() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFetch
}

// Measurements returns a copy of the cached measurement list, sorted
// ascending by timestamp.
func (s *Store) Measurements() []common.Measurement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]common.Measurement, len(s.measurements))
	copy(out, s.measurements)
	return out
}
