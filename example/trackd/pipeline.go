package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gocv.io/x/gocv"

	tracklet "github.com/visiontk/go-tracklet"
	"github.com/visiontk/go-tracklet/crop"
	"github.com/visiontk/go-tracklet/detect"
	"github.com/visiontk/go-tracklet/metrics"
	"github.com/visiontk/go-tracklet/notify"
	"github.com/visiontk/go-tracklet/render"
	"github.com/visiontk/go-tracklet/store"
	"github.com/visiontk/go-tracklet/video"
	"github.com/visiontk/go-tracklet/zone"
)

// zoneOverlayAlpha is the opacity of the zone shading on streamed frames
const zoneOverlayAlpha = 0.15

// boxThickness is the bounding box line width on streamed frames
const boxThickness = 2

// Pipeline owns the frame processing loop: capture, motion detection,
// zone filtering, tracking, and the fan out to the event store, broker,
// metrics, thumbnails and stream clients.
//
// The tracker, detector and trail are only touched from the pipeline
// goroutine.  HTTP handlers read the published snapshot instead.
type Pipeline struct {
	session  *video.Session
	detector *detect.MotionDetector
	zones    *zone.Set
	tracker  *tracklet.Tracker
	trail    *tracklet.Trail
	cropper  *crop.Cropper
	events   *store.Store
	notifier notify.Client
	stats    *metrics.TrackerMetrics
	hub      *frameHub
	logger   *slog.Logger

	font  render.Font
	style render.TrailStyle

	// snapshot state shared with the HTTP handlers
	mu       sync.RWMutex
	snapshot map[int]tracklet.Rect
	frames   int
}

// newPipeline assembles the processing loop around an opened session.
// notifier may be nil when event publishing is disabled.
func newPipeline(session *video.Session, detector *detect.MotionDetector,
	zones *zone.Set, cfg tracklet.Config, cropper *crop.Cropper,
	events *store.Store, notifier notify.Client,
	stats *metrics.TrackerMetrics, logger *slog.Logger) *Pipeline {

	return &Pipeline{
		session:  session,
		detector: detector,
		zones:    zones,
		tracker:  tracklet.NewTracker(cfg),
		trail:    tracklet.NewTrail(90),
		cropper:  cropper,
		events:   events,
		notifier: notifier,
		stats:    stats,
		hub:      newFrameHub(),
		logger:   logger,
		font:     render.DefaultFont(),
		style:    render.DefaultTrailStyle(),
		snapshot: make(map[int]tracklet.Rect),
	}
}

// Run drives the pipeline until the source ends or the context is
// cancelled.  It returns nil when the source ran out of frames.
func (p *Pipeline) Run(ctx context.Context) error {

	width, height := p.session.Size()

	p.logger.Info("pipeline started",
		"session", p.session.SessionID(),
		"source", p.session.Source(),
		"width", width,
		"height", height,
		"fps", p.session.FPS())

	for frame := range p.session.Frames(ctx) {
		p.process(ctx, frame)
	}

	return ctx.Err()
}

// process runs one frame through detection, tracking and the fan out
func (p *Pipeline) process(ctx context.Context, frame video.Frame) {

	img := frame.Img
	defer img.Close()

	// motion boxes to normalised detections, gated by the zone rules
	results := p.detector.Detect(img)
	dets := p.zones.Filter(detect.ToDetections(results, img.Cols(), img.Rows()))

	start := time.Now()
	events := p.tracker.Update(dets)
	elapsed := time.Since(start)

	snapshot := p.tracker.GetConfirmedTrackRects()

	p.publishState(snapshot, frame.Index)
	p.stats.ObserveUpdate(p.tracker, len(dets), events, elapsed)
	p.handleEvents(ctx, frame.Index, events)

	boxes := render.FromSnapshot(snapshot)

	for _, box := range boxes {
		p.trail.Add(box.ID, box.Rect)
	}

	// thumbnails come from the clean frame, before overlays land on it
	if len(snapshot) > 0 {
		p.cropper.Submit(crop.Job{Frame: img.Clone(), Rects: snapshot})
	}

	// annotating and encoding is wasted work without a viewer
	if p.hub.count() == 0 {
		return
	}

	render.Zones(&img, p.zones.Zones(), zoneOverlayAlpha, p.font)
	render.TrackBoxes(&img, boxes, p.font, boxThickness)
	render.Trail(&img, boxes, p.trail, p.style)

	buf, err := gocv.IMEncode(".jpg", img)

	if err != nil {
		p.logger.Error("error encoding stream frame", "error", err)
		return
	}

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	buf.Close()

	p.hub.publish(data)
}

// handleEvents logs lifecycle events and fans them out to the store and
// the broker.  Storage or publish failures are logged and do not stop
// the pipeline.
func (p *Pipeline) handleEvents(ctx context.Context, frameNum int,
	events []tracklet.Event) {

	if len(events) == 0 {
		return
	}

	for _, ev := range events {
		switch ev := ev.(type) {
		case tracklet.Appeared:
			p.logger.Info("track appeared", "frame", frameNum, "track", ev.ID)
		case tracklet.Confirmed:
			p.logger.Info("track confirmed", "frame", frameNum, "track", ev.ID)
		case tracklet.Lost:
			p.logger.Info("track lost", "frame", frameNum, "track", ev.ID)
			p.trail.Remove(ev.ID)
		}
	}

	sessionID := p.session.SessionID()

	if err := p.events.SaveEvents(sessionID, frameNum, events); err != nil {
		p.logger.Error("error saving track events", "error", err)
	}

	if p.notifier != nil && p.notifier.IsConnected() {
		if err := p.notifier.PublishEvents(ctx, sessionID, frameNum,
			events); err != nil {
			p.logger.Error("error publishing track events", "error", err)
		}
	}
}

// publishState replaces the snapshot the HTTP handlers read
func (p *Pipeline) publishState(snapshot map[int]tracklet.Rect, frameNum int) {
	p.mu.Lock()
	p.snapshot = snapshot
	p.frames = frameNum + 1
	p.mu.Unlock()
}

// Snapshot returns a copy of the confirmed tracks from the most recent
// frame
func (p *Pipeline) Snapshot() map[int]tracklet.Rect {

	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[int]tracklet.Rect, len(p.snapshot))

	for id, rect := range p.snapshot {
		out[id] = rect
	}

	return out
}

// FrameCount returns the number of frames processed so far
func (p *Pipeline) FrameCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.frames
}

// SessionID returns the capture session id the pipeline is processing
func (p *Pipeline) SessionID() string {
	return p.session.SessionID()
}

// Close releases the detector.  Only call after Run has returned.
func (p *Pipeline) Close() {
	p.detector.Close()
}
