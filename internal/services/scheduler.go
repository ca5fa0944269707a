package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"landslide-monitor/internal/aggregator"
	"landslide-monitor/internal/hub"
	"landslide-monitor/internal/models"
	"landslide-monitor/internal/registry"
	"landslide-monitor/internal/risk"
	"landslide-monitor/internal/simulator"
)

// Event names pushed to subscribers
const (
	EventSiteUpdate = "update_data"
	EventSnapshot   = "update_index"
)

// DefaultTickInterval matches the 5 second sample spacing of the history store
const DefaultTickInterval = 5 * time.Second

// State is the lifecycle state of the scheduler loop
type State int32

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// Publisher is the subset of the hub used by the scheduler
type Publisher interface {
	Publish(topic string, msg hub.Message) (hub.PublishResult, error)
	PublishAll(msg hub.Message) (hub.PublishResult, error)
}

// Classifier maps a reading to a risk assessment
type Classifier interface {
	Classify(reading models.Reading) risk.Assessment
}

// HistoryAppender stores derived samples
type HistoryAppender interface {
	Append(siteID string, metric models.Metric, sample models.Sample) error
}

// StatusRecorder tracks the current status of every site
type StatusRecorder interface {
	Set(siteID string, status models.SiteStatus, at time.Time) error
	Snapshot() models.Snapshot
}

// CycleReport summarizes one tick across all sites
type CycleReport struct {
	Started         time.Time
	Duration        time.Duration
	Processed       int
	Failed          []string // site IDs skipped this cycle
	Delivered       int
	Dropped         int
	PublishFailures int
}

// SchedulerConfig holds configuration for the scheduler
type SchedulerConfig struct {
	Interval time.Duration
}

// DefaultSchedulerConfig returns default configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{Interval: DefaultTickInterval}
}

// Scheduler is the single producer loop: generate, classify, store and
// publish for every site, then publish one snapshot to everyone.
type Scheduler struct {
	sites      *registry.Registry
	generator  simulator.Generator
	classifier Classifier
	history    HistoryAppender
	statuses   StatusRecorder
	publisher  Publisher

	interval time.Duration
	now      func() time.Time
	state    atomic.Int32
	done     chan struct{}
	err      error // set before done is closed

	// OnCycle is called after every completed cycle
	OnCycle func(CycleReport)
}

// NewScheduler creates an idle scheduler
func NewScheduler(
	sites *registry.Registry,
	generator simulator.Generator,
	classifier Classifier,
	history HistoryAppender,
	statuses StatusRecorder,
	publisher Publisher,
	config SchedulerConfig,
) *Scheduler {
	interval := config.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Scheduler{
		sites:      sites,
		generator:  generator,
		classifier: classifier,
		history:    history,
		statuses:   statuses,
		publisher:  publisher,
		interval:   interval,
		now:        time.Now,
		done:       make(chan struct{}),
	}
}

// State returns the current lifecycle state
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Activate starts the loop on first call; later calls are no-ops.
// It reports whether this call started the loop.
func (s *Scheduler) Activate(ctx context.Context) bool {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return false
	}

	log.Printf("Scheduler: Activated, ticking every %v for %d sites", s.interval, s.sites.Len())
	go func() {
		s.err = s.run(ctx)
		close(s.done)
	}()
	return true
}

// Done is closed when an activated loop returns
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Err returns why the loop stopped; only valid after Done is closed
func (s *Scheduler) Err() error {
	return s.err
}

// Wait blocks until the loop stops or ctx ends. A loop that was never
// activated stops with ctx.
func (s *Scheduler) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		if s.State() == StateIdle {
			return nil
		}
		<-s.done
		return s.err
	}
}

// run executes one cycle immediately and then one per interval
func (s *Scheduler) run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunCycle(ctx); err != nil {
			log.Printf("Scheduler: Stopping: %v", err)
			return err
		}

		select {
		case <-ctx.Done():
			log.Println("Scheduler: Shutting down...")
			return nil
		case <-ticker.C:
		}
	}
}

// RunCycle processes every site in registry order and publishes the snapshot.
// Only store corruption is returned as an error; all other failures are
// isolated to the site that caused them.
func (s *Scheduler) RunCycle(ctx context.Context) (CycleReport, error) {
	report := CycleReport{Started: s.now()}

	for _, site := range s.sites.Sites() {
		if ctx.Err() != nil {
			log.Printf("Scheduler: Context cancelled, abandoning cycle before site %s", site.ID)
			break
		}

		update, err := s.processSite(site)
		if err != nil {
			if errors.Is(err, aggregator.ErrStoreCorruption) {
				return report, err
			}
			log.Printf("Scheduler: Skipping site %s this cycle: %v", site.ID, err)
			report.Failed = append(report.Failed, site.ID)
			continue
		}
		report.Processed++

		res, err := s.publisher.Publish(site.ID, hub.Message{Event: EventSiteUpdate, Data: update})
		report.add(res, err)
		if err != nil {
			log.Printf("Scheduler: Error publishing update for %s: %v", site.ID, err)
		}
	}

	// the snapshot always goes out, using last-known status for failed sites
	res, err := s.publisher.PublishAll(hub.Message{Event: EventSnapshot, Data: s.statuses.Snapshot()})
	report.add(res, err)
	if err != nil {
		log.Printf("Scheduler: Error publishing snapshot: %v", err)
	}

	report.Duration = s.now().Sub(report.Started)
	if len(report.Failed) > 0 {
		log.Printf("Scheduler: Cycle complete with %d/%d sites failed (%v)",
			len(report.Failed), s.sites.Len(), report.Failed)
	}
	if s.OnCycle != nil {
		s.OnCycle(report)
	}
	return report, nil
}

// processSite generates, classifies and stores one reading
func (s *Scheduler) processSite(site models.Site) (update models.SiteUpdate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing site: %v", r)
		}
	}()

	reading, err := s.generator.Generate(site)
	if err != nil {
		return update, err
	}

	assessment := s.classifier.Classify(reading)
	now := s.now()

	for _, metric := range models.Metrics {
		sample := models.Sample{Timestamp: now, Value: reading.Value(metric)}
		if err := s.history.Append(site.ID, metric, sample); err != nil {
			return update, fmt.Errorf("failed to store %s sample: %w", metric, err)
		}
	}

	status := assessment.Status()
	if err := s.statuses.Set(site.ID, status, now); err != nil {
		return update, fmt.Errorf("failed to update status: %w", err)
	}

	return models.SiteUpdate{
		SiteID:       site.ID,
		SoilMoisture: reading.SoilMoisture,
		Rainfall24h:  reading.Rainfall24h,
		Risk:         status.Risk,
		Color:        status.Color,
		Timestamp:    now.Format(models.DisplayTimeLayout),
		ObservedAt:   now,
	}, nil
}

func (r *CycleReport) add(res hub.PublishResult, err error) {
	if err != nil {
		r.PublishFailures++
		return
	}
	r.Delivered += res.Delivered
	r.Dropped += res.Dropped
}
