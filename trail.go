package tracklet

import "sync"

// Point represents the center of a tracked bounding box in normalised
// coordinates
type Point struct {
	X, Y float32
}

// trackHistory holds the recorded points for one track id
type trackHistory struct {
	points []Point
}

// Trail keeps a bounded history of track center points used for drawing a
// motion trail.  Unlike the Tracker itself, a Trail is safe for concurrent
// use, since rendering often happens on a different goroutine to the update
// loop.
type Trail struct {
	// size is the maximum number of most recent points to keep per track
	size int
	// history of tracked points keyed by track id
	history map[int]*trackHistory
	sync.Mutex
}

// NewTrail returns a new trail history instance.  Size is the maximum number
// of most recent points to keep per track and bounds the drawn trail length.
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int]*trackHistory),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int]*trackHistory)
}

// Add appends the center point of the given rectangle to the history of the
// track id, dropping the oldest point once the size limit is reached
func (t *Trail) Add(id int, rect Rect) {
	t.Lock()
	defer t.Unlock()

	if _, exists := t.history[id]; !exists {
		t.history[id] = &trackHistory{}
	}

	hist := t.history[id]

	center := rect.Center()

	hist.points = append(hist.points, Point{
		X: float32(center.X),
		Y: float32(center.Y),
	})

	if len(hist.points) > t.size {
		hist.points = hist.points[1:]
	}
}

// GetPoints gets the point history for a specific track id, oldest first
func (t *Trail) GetPoints(id int) []Point {
	t.Lock()
	defer t.Unlock()

	if hist, exists := t.history[id]; exists {
		out := make([]Point, len(hist.points))
		copy(out, hist.points)
		return out
	}

	// no history yet
	return nil
}

// Remove drops the history for a track id.  Call it when the track's Lost
// event arrives so long running streams do not accumulate dead history.
func (t *Trail) Remove(id int) {
	t.Lock()
	defer t.Unlock()

	delete(t.history, id)
}
