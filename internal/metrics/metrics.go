package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"landslide-monitor/internal/hub"
	"landslide-monitor/internal/services"
)

// Metrics holds the collectors for the producer loop and the hub
type Metrics struct {
	cycles          prometheus.Counter
	siteFailures    *prometheus.CounterVec
	delivered       prometheus.Counter
	dropped         prometheus.Counter
	publishFailures prometheus.Counter
	cycleDuration   prometheus.Histogram
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "landslide_cycles_total",
			Help: "Completed scheduler cycles.",
		}),
		siteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "landslide_site_failures_total",
			Help: "Sites skipped in a cycle because generation, classification or storage failed.",
		}, []string{"site"}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "landslide_messages_delivered_total",
			Help: "Messages accepted by subscriber queues.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "landslide_messages_dropped_total",
			Help: "Messages dropped because a subscriber queue was full or closed.",
		}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "landslide_publish_failures_total",
			Help: "Publish calls the hub could not carry out.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "landslide_cycle_duration_seconds",
			Help:    "Time spent generating, storing and publishing one cycle.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
	}

	reg.MustRegister(m.cycles, m.siteFailures, m.delivered, m.dropped, m.publishFailures, m.cycleDuration)
	return m
}

// ObserveCycle records one scheduler cycle; it matches Scheduler.OnCycle
func (m *Metrics) ObserveCycle(report services.CycleReport) {
	m.cycles.Inc()
	for _, site := range report.Failed {
		m.siteFailures.WithLabelValues(site).Inc()
	}
	m.delivered.Add(float64(report.Delivered))
	m.dropped.Add(float64(report.Dropped))
	m.publishFailures.Add(float64(report.PublishFailures))
	m.cycleDuration.Observe(report.Duration.Seconds())
}

// RegisterHub exposes per-topic subscriber counts
func RegisterHub(reg prometheus.Registerer, h *hub.Hub) {
	for _, topic := range h.Topics() {
		topic := topic // per-iteration copy; go 1.21 loop-variable semantics
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "landslide_topic_subscribers",
			Help:        "Current number of subscribers per topic.",
			ConstLabels: prometheus.Labels{"topic": topic},
		}, func() float64 {
			return float64(h.Members(topic))
		}))
	}
}

// RegisterScheduler exposes whether the producer loop is running
func RegisterScheduler(reg prometheus.Registerer, s *services.Scheduler) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "landslide_scheduler_running",
		Help: "1 once the producer loop has been activated.",
	}, func() float64 {
		if s.State() == services.StateRunning {
			return 1
		}
		return 0
	}))
}
