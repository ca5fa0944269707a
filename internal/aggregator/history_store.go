package aggregator

import (
	"errors"
	"fmt"
	"sync"

	"landslide-monitor/internal/models"
)

// DefaultHistoryCapacity keeps 24 hours of samples at one sample every 5 seconds
const DefaultHistoryCapacity = (24 * 3600) / 5

var (
	// ErrUnknownSite is returned for site IDs that were not registered
	ErrUnknownSite = errors.New("unknown site")

	// ErrUnknownMetric is returned for metrics without a sample stream
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrStoreCorruption signals that a series grew past its capacity
	ErrStoreCorruption = errors.New("history store corruption")
)

// series is one bounded (site, metric) sample stream
type series struct {
	mu  sync.RWMutex
	buf *RingBuffer[models.Sample]
}

// HistoryStore keeps a bounded time series per site and metric.
// The set of series is fixed at construction; only their contents change.
type HistoryStore struct {
	capacity int
	series   map[string]map[models.Metric]*series
}

// NewHistoryStore creates empty series for every site and metric
func NewHistoryStore(siteIDs []string, capacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}

	hs := &HistoryStore{
		capacity: capacity,
		series:   make(map[string]map[models.Metric]*series, len(siteIDs)),
	}
	for _, id := range siteIDs {
		perMetric := make(map[models.Metric]*series, len(models.Metrics))
		for _, m := range models.Metrics {
			perMetric[m] = &series{buf: NewRingBuffer[models.Sample](capacity)}
		}
		hs.series[id] = perMetric
	}
	return hs
}

// lookup resolves the series for a site and metric
func (hs *HistoryStore) lookup(siteID string, metric models.Metric) (*series, error) {
	perMetric, ok := hs.series[siteID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSite, siteID)
	}
	s, ok := perMetric[metric]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}
	return s, nil
}

// Append adds a sample at the tail of a series, evicting the oldest sample
// when the series is at capacity. Eviction and insert happen under one lock.
func (hs *HistoryStore) Append(siteID string, metric models.Metric, sample models.Sample) error {
	s, err := hs.lookup(siteID, metric)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf.Push(sample)
	if n := s.buf.Len(); n > hs.capacity {
		return fmt.Errorf("%w: %s/%s holds %d samples, capacity %d",
			ErrStoreCorruption, siteID, metric, n, hs.capacity)
	}
	return nil
}

// ReadAll returns a copy of a series, oldest first
func (hs *HistoryStore) ReadAll(siteID string, metric models.Metric) ([]models.Sample, error) {
	s, err := hs.lookup(siteID, metric)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.Slice(), nil
}

// Len returns the current length of a series
func (hs *HistoryStore) Len(siteID string, metric models.Metric) (int, error) {
	s, err := hs.lookup(siteID, metric)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.Len(), nil
}

// Capacity returns the per-series sample limit
func (hs *HistoryStore) Capacity() int {
	return hs.capacity
}
