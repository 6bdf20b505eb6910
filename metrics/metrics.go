/*
Package metrics provides Prometheus collectors for the tracking pipeline.
Metrics are registered on a caller supplied registry so applications keep
control over what they expose.
*/
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	tracklet "github.com/visiontk/go-tracklet"
)

// TrackerMetrics contains all Prometheus metrics recorded around the
// tracker's per frame update cycle.
type TrackerMetrics struct {
	// EventsTotal counts lifecycle events partitioned by event type
	EventsTotal *prometheus.CounterVec
	// FramesTotal counts tracker update calls
	FramesTotal prometheus.Counter
	// LiveTracks is the number of tracks in any lifecycle state
	LiveTracks prometheus.Gauge
	// ConfirmedTracks is the number of tracks in the confirmed state
	ConfirmedTracks prometheus.Gauge
	// UpdateDuration observes how long each update call takes
	UpdateDuration prometheus.Histogram
	// MatchQuality observes the per match IoU, with fallback matches
	// recorded at their sentinel quality of 0
	MatchQuality prometheus.Histogram
	// DetectionsPerFrame observes how many detections each frame carried
	DetectionsPerFrame prometheus.Histogram

	registry *prometheus.Registry
}

// NewTrackerMetrics creates a new instance of TrackerMetrics and registers
// it on the given registry.  It returns an error if registration fails.
func NewTrackerMetrics(registry *prometheus.Registry) (*TrackerMetrics, error) {

	m := &TrackerMetrics{registry: registry}
	m.initMetrics()

	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register tracker metrics: %w", err)
	}

	return m, nil
}

// initMetrics initializes all metrics for TrackerMetrics
func (m *TrackerMetrics) initMetrics() {

	m.EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracklet_events_total",
			Help: "Total number of track lifecycle events partitioned by type",
		},
		[]string{"type"},
	)

	m.FramesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracklet_frames_total",
		Help: "Total number of frames fed through the tracker",
	})

	m.LiveTracks = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracklet_live_tracks",
		Help: "Current number of tracks in any lifecycle state",
	})

	m.ConfirmedTracks = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracklet_confirmed_tracks",
		Help: "Current number of tracks in the confirmed state",
	})

	m.UpdateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracklet_update_duration_seconds",
		Help:    "Duration of tracker update calls in seconds",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	})

	m.MatchQuality = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracklet_match_quality",
		Help:    "IoU of committed matches; nearest-center fallback matches record 0",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	m.DetectionsPerFrame = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracklet_detections_per_frame",
		Help:    "Number of detections handed to each update call",
		Buckets: prometheus.LinearBuckets(0, 2, 11),
	})
}

// ObserveUpdate records one complete update cycle: the events it emitted,
// the match qualities it committed and the resulting track population.
func (m *TrackerMetrics) ObserveUpdate(tk *tracklet.Tracker, detections int,
	events []tracklet.Event, elapsed time.Duration) {

	m.FramesTotal.Inc()
	m.DetectionsPerFrame.Observe(float64(detections))
	m.UpdateDuration.Observe(elapsed.Seconds())

	for _, ev := range events {
		m.EventsTotal.WithLabelValues(typeLabel(ev)).Inc()
	}

	for _, quality := range tk.GetLastMatchQualities() {
		m.MatchQuality.Observe(float64(quality))
	}

	m.LiveTracks.Set(float64(tk.GetTrackCount()))
	m.ConfirmedTracks.Set(float64(len(tk.GetConfirmedTrackRects())))
}

// typeLabel returns the metric label value for an event
func typeLabel(ev tracklet.Event) string {

	switch ev.(type) {
	case tracklet.Appeared:
		return "appeared"
	case tracklet.Confirmed:
		return "confirmed"
	case tracklet.Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// Collect implements the prometheus.Collector interface
func (m *TrackerMetrics) Collect(ch chan<- prometheus.Metric) {
	m.EventsTotal.Collect(ch)
	ch <- m.FramesTotal
	ch <- m.LiveTracks
	ch <- m.ConfirmedTracks
	ch <- m.UpdateDuration
	ch <- m.MatchQuality
	ch <- m.DetectionsPerFrame
}

// Describe implements the prometheus.Collector interface
func (m *TrackerMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.EventsTotal.Describe(ch)
	ch <- m.FramesTotal.Desc()
	ch <- m.LiveTracks.Desc()
	ch <- m.ConfirmedTracks.Desc()
	ch <- m.UpdateDuration.Desc()
	ch <- m.MatchQuality.Desc()
	ch <- m.DetectionsPerFrame.Desc()
}
