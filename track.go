package tracklet

// TrackState represents the lifecycle state of a tracked object
type TrackState int

const (
	// Track is newly created and not yet reported to consumers
	StateTentative TrackState = 0
	// Track has been matched for enough consecutive frames to be reported
	StateConfirmed TrackState = 1
	// Track missed a frame after being confirmed and awaits eviction
	StateDying TrackState = 2
)

// String returns the human readable name of the track state
func (s TrackState) String() string {
	switch s {
	case StateTentative:
		return "tentative"
	case StateConfirmed:
		return "confirmed"
	case StateDying:
		return "dying"
	default:
		return "unknown"
	}
}

// Track represents a single tracked object.  Tracks are owned by the Tracker
// and handed out by value, so a Track held by a caller is a snapshot and
// never mutates underneath them.
type Track struct {
	// Unique ID for the track, assigned from a monotonically increasing
	// counter and never reused
	trackID int
	// Smoothed bounding box of the tracked object
	rect Rect
	// Current lifecycle state of the track
	state TrackState
	// Number of consecutive frames the track was matched since its last miss
	consecutiveFrames int
	// Number of consecutive frames the track was not matched
	missedFrames int
	// label is the object label/class from the detector
	label int
	// score is the confidence of the most recent matched detection
	score float32
}

// newTrack creates a tentative track from an unmatched detection
func newTrack(id int, det Detection) Track {
	return Track{
		trackID:           id,
		rect:              det.Rect,
		state:             StateTentative,
		consecutiveFrames: 1,
		missedFrames:      0,
		label:             det.Label,
		score:             det.Score,
	}
}

// GetTrackID returns the unique ID for the track
func (t *Track) GetTrackID() int {
	return t.trackID
}

// GetRect returns the smoothed bounding box of the tracked object
func (t *Track) GetRect() Rect {
	return t.rect
}

// GetState returns the current lifecycle state of the track
func (t *Track) GetState() TrackState {
	return t.state
}

// GetLabel returns the object label/class from the detector
func (t *Track) GetLabel() int {
	return t.label
}

// GetScore returns the confidence of the most recent matched detection
func (t *Track) GetScore() float32 {
	return t.score
}

// GetConsecutiveFrames returns the current matched frame streak
func (t *Track) GetConsecutiveFrames() int {
	return t.consecutiveFrames
}

// GetMissedFrames returns the current miss streak
func (t *Track) GetMissedFrames() int {
	return t.missedFrames
}

// applyDetection folds a matched detection into the track geometry.  A
// displacement larger than maxJump on any single component is treated as a
// re-acquisition: the raw detection replaces the smoothed rectangle and the
// matched frame streak restarts.  Otherwise each component is blended with
// an exponential moving average.
func (t *Track) applyDetection(det Detection, alpha, maxJump float32) {

	if jumpDistance(t.rect, det.Rect) > maxJump {
		t.rect = det.Rect
		t.consecutiveFrames = 1
	} else {
		t.rect = blendRect(det.Rect, t.rect, alpha)
		t.consecutiveFrames++
	}

	t.missedFrames = 0
	t.label = det.Label
	t.score = det.Score
}

// markMissed records one unmatched frame.  A confirmed track degrades to
// dying and is never matched again.
func (t *Track) markMissed() {
	t.missedFrames++
	t.consecutiveFrames = 0

	if t.state == StateConfirmed {
		t.state = StateDying
	}
}

// jumpDistance returns the largest absolute per component delta between two
// rectangles
func jumpDistance(a, b Rect) float32 {
	dx := absf(a.x - b.x)
	dy := absf(a.y - b.y)
	dw := absf(a.width - b.width)
	dh := absf(a.height - b.height)

	return max(max(dx, dy), max(dw, dh))
}

// blendRect applies the exponential moving average
// smoothed' = alpha*raw + (1-alpha)*smoothed to each component independently
func blendRect(raw, smoothed Rect, alpha float32) Rect {
	return Rect{
		x:      alpha*raw.x + (1-alpha)*smoothed.x,
		y:      alpha*raw.y + (1-alpha)*smoothed.y,
		width:  alpha*raw.width + (1-alpha)*smoothed.width,
		height: alpha*raw.height + (1-alpha)*smoothed.height,
	}
}

// absf returns the absolute value of a float32
func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
