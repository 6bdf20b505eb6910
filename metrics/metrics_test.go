package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tracklet "github.com/visiontk/go-tracklet"
)

func TestObserveUpdate(t *testing.T) {

	registry := prometheus.NewRegistry()

	m, err := NewTrackerMetrics(registry)
	require.NoError(t, err)

	tk := tracklet.NewTracker(tracklet.Config{
		IoUThreshold:       0.3,
		SmoothingAlpha:     0.6,
		MinFramesToConfirm: 2,
		MaxMissedFrames:    1,
		MaxJumpDistance:    0.3,
	})

	d := []tracklet.Detection{{Rect: tracklet.NewRect(0.1, 0.1, 0.2, 0.2)}}

	// frame 1 appears, frame 2 confirms
	events := tk.Update(d)
	m.ObserveUpdate(tk, len(d), events, time.Millisecond)

	events = tk.Update(d)
	m.ObserveUpdate(tk, len(d), events, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.FramesTotal))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.EventsTotal.WithLabelValues("appeared")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.EventsTotal.WithLabelValues("confirmed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LiveTracks))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ConfirmedTracks))

	// two empty frames kill the track; gauges must fall back to zero
	events = tk.Update(nil)
	m.ObserveUpdate(tk, 0, events, time.Millisecond)

	events = tk.Update(nil)
	m.ObserveUpdate(tk, 0, events, time.Millisecond)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.EventsTotal.WithLabelValues("lost")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.LiveTracks))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ConfirmedTracks))
}

func TestCollectorExposesAllMetrics(t *testing.T) {

	registry := prometheus.NewRegistry()

	m, err := NewTrackerMetrics(registry)
	require.NoError(t, err)

	tk := tracklet.NewTracker(tracklet.DefaultConfig())

	events := tk.Update([]tracklet.Detection{
		{Rect: tracklet.NewRect(0.1, 0.1, 0.2, 0.2)},
	})
	m.ObserveUpdate(tk, 1, events, time.Millisecond)

	// counter vec with one labelled series plus six plain metrics
	count := testutil.CollectAndCount(m)
	assert.Equal(t, 7, count)
}

func TestDoubleRegistrationFails(t *testing.T) {

	registry := prometheus.NewRegistry()

	_, err := NewTrackerMetrics(registry)
	require.NoError(t, err)

	_, err = NewTrackerMetrics(registry)
	assert.Error(t, err)
}
