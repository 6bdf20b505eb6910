package tracklet

// Event is a lifecycle event produced by Tracker.Update.  The set of event
// types is closed: Appeared, Confirmed and Lost.  Consumers are expected to
// handle all three in a type switch.
//
// Across a track's whole lifetime Appeared is emitted exactly once,
// Confirmed at most once and Lost exactly once.  A track evicted while still
// tentative emits Lost even though it was never confirmed, so consumers must
// not assume every Lost id was previously rendered.
type Event interface {
	// EventTrackID returns the id of the track the event belongs to
	EventTrackID() int

	isEvent()
}

// Appeared is emitted when a detection fails to match any existing track and
// a new tentative track is created for it
type Appeared struct {
	// ID of the newly created track
	ID int
}

// EventTrackID returns the id of the track the event belongs to
func (e Appeared) EventTrackID() int {
	return e.ID
}

func (Appeared) isEvent() {}

// Confirmed is emitted when a tentative track reaches the configured
// consecutive match streak and becomes eligible for display
type Confirmed struct {
	// ID of the confirmed track
	ID int
	// Rect is the smoothed bounding box at the time of confirmation
	Rect Rect
}

// EventTrackID returns the id of the track the event belongs to
func (e Confirmed) EventTrackID() int {
	return e.ID
}

func (Confirmed) isEvent() {}

// Lost is emitted when a track's miss streak exceeds the eviction threshold
// and the track is removed.  The id is never reused; an object reappearing
// at the same location forms a fresh identity.
type Lost struct {
	// ID of the removed track
	ID int
}

// EventTrackID returns the id of the track the event belongs to
func (e Lost) EventTrackID() int {
	return e.ID
}

func (Lost) isEvent() {}
