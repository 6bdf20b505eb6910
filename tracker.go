package tracklet

// Tracker turns per frame detection rectangles into identity persistent
// tracks.  It owns the track collection outright; tracks are stored by value
// in a slice and addressed by index, never shared by pointer.
//
// A Tracker is not safe for concurrent use.  It assumes a single logical
// caller drives Update and the query methods from one serialised execution
// context.  Detection production may run on a separate worker, but results
// must be handed to Update one frame at a time.
type Tracker struct {
	// cfg is the tracker configuration, normalised at construction
	cfg Config
	// tracks is the live track collection
	tracks []Track
	// nextID is the counter for assigning unique track IDs
	nextID int
	// lastQualities holds the match qualities of the most recent Update,
	// for diagnostics
	lastQualities []float32
}

// NewTracker initializes and returns a new Tracker.  Zero or out of range
// Config fields fall back to their DefaultConfig values.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		cfg:    cfg.withDefaults(),
		tracks: make([]Track, 0),
	}
}

// Reset clears the tracked data and restarts track ID assignment.  Use it on
// stream discontinuities, such as a camera restart, where historical
// identities are meaningless.  No events are emitted for the discarded
// tracks.
func (tk *Tracker) Reset() {
	tk.tracks = make([]Track, 0)
	tk.nextID = 0
	tk.lastQualities = nil
}

// Update advances the tracker by one frame and returns the lifecycle events
// produced: confirmations in matching order, then appearances, then losses.
// Each event type is emitted at most once per track id per call.
//
// An empty detections slice is valid input and drives all live tracks
// towards miss accounting and eventual eviction.  Coordinates are expected
// to be normalised to [0,1]; out of range input is not validated here.
func (tk *Tracker) Update(detections []Detection) []Event {

	// Step 1: match detections against live tracks
	pairs := matchDetections(detections, tk.tracks, tk.cfg.IoUThreshold)

	events := make([]Event, 0, len(pairs)+len(detections))
	matchedDets := make([]bool, len(detections))
	matchedTracks := make([]bool, len(tk.tracks))
	tk.lastQualities = tk.lastQualities[:0]

	// Step 2: fold matched detections into their tracks and promote
	// tentative tracks that completed the confirmation streak
	for _, p := range pairs {
		matchedDets[p.det] = true
		matchedTracks[p.track] = true
		tk.lastQualities = append(tk.lastQualities, p.quality)

		track := &tk.tracks[p.track]
		track.applyDetection(detections[p.det], tk.cfg.SmoothingAlpha,
			tk.cfg.MaxJumpDistance)

		if track.state == StateTentative &&
			track.consecutiveFrames >= tk.cfg.MinFramesToConfirm {

			track.state = StateConfirmed
			events = append(events, Confirmed{ID: track.trackID, Rect: track.rect})
		}
	}

	// Step 3: every unmatched detection starts a new tentative track
	for di := range detections {
		if matchedDets[di] {
			continue
		}

		tk.tracks = append(tk.tracks, newTrack(tk.nextID, detections[di]))
		events = append(events, Appeared{ID: tk.nextID})
		tk.nextID++
	}

	// Step 4: mark pre-existing unmatched tracks missed, then evict any
	// track whose miss streak exceeds the threshold.  Tracks created in
	// step 3 sit past the end of matchedTracks and are left alone.
	live := tk.tracks[:0]

	for i := range tk.tracks {
		track := &tk.tracks[i]

		if i < len(matchedTracks) && !matchedTracks[i] {
			track.markMissed()
		}

		if track.missedFrames > tk.cfg.MaxMissedFrames {
			events = append(events, Lost{ID: track.trackID})
			continue
		}

		live = append(live, *track)
	}

	tk.tracks = live

	return events
}

// GetConfirmedTrackRects returns the smoothed bounding boxes of all tracks
// currently in the confirmed state, keyed by track id.  It is a pure query:
// no events are produced and no state changes, so it may be called any
// number of times between updates.
func (tk *Tracker) GetConfirmedTrackRects() map[int]Rect {
	rects := make(map[int]Rect, len(tk.tracks))

	for i := range tk.tracks {
		if tk.tracks[i].state == StateConfirmed {
			rects[tk.tracks[i].trackID] = tk.tracks[i].rect
		}
	}

	return rects
}

// GetTracks returns a value snapshot of all live tracks in every lifecycle
// state, for diagnostics and rendering
func (tk *Tracker) GetTracks() []Track {
	out := make([]Track, len(tk.tracks))
	copy(out, tk.tracks)
	return out
}

// GetTrackCount returns the number of live tracks in any state
func (tk *Tracker) GetTrackCount() int {
	return len(tk.tracks)
}

// GetLastMatchQualities returns the match qualities recorded by the most
// recent Update call: the IoU for primary tier matches and the sentinel 0
// for fallback matches.  The returned slice is a copy.
func (tk *Tracker) GetLastMatchQualities() []float32 {
	out := make([]float32, len(tk.lastQualities))
	copy(out, tk.lastQualities)
	return out
}
