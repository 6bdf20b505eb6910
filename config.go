package tracklet

// Config holds the tunable parameters for a Tracker.  The values are knobs,
// not protocol constants; callers may vary them per use case.
type Config struct {
	// IoUThreshold is the minimum IoU for a primary tier match
	IoUThreshold float32
	// SmoothingAlpha is the EMA responsiveness; higher values favour the
	// raw detection over the smoothed history
	SmoothingAlpha float32
	// MinFramesToConfirm is the number of consecutive matched frames a
	// tentative track needs before it is confirmed
	MinFramesToConfirm int
	// MaxMissedFrames is the number of consecutive misses tolerated before
	// a track is evicted
	MaxMissedFrames int
	// MaxJumpDistance is the per component delta above which smoothing
	// resets to the raw detection instead of blending
	MaxJumpDistance float32
}

// DefaultConfig returns the default tracker configuration
func DefaultConfig() Config {
	return Config{
		IoUThreshold:       0.3,
		SmoothingAlpha:     0.6,
		MinFramesToConfirm: 3,
		MaxMissedFrames:    5,
		MaxJumpDistance:    0.3,
	}
}

// withDefaults replaces zero or out of range fields with their defaults so
// that NewTracker(Config{}) behaves like NewTracker(DefaultConfig())
func (c Config) withDefaults() Config {
	def := DefaultConfig()

	if c.IoUThreshold <= 0 || c.IoUThreshold > 1 {
		c.IoUThreshold = def.IoUThreshold
	}

	if c.SmoothingAlpha <= 0 || c.SmoothingAlpha > 1 {
		c.SmoothingAlpha = def.SmoothingAlpha
	}

	if c.MinFramesToConfirm < 1 {
		c.MinFramesToConfirm = def.MinFramesToConfirm
	}

	if c.MaxMissedFrames < 1 {
		c.MaxMissedFrames = def.MaxMissedFrames
	}

	if c.MaxJumpDistance <= 0 {
		c.MaxJumpDistance = def.MaxJumpDistance
	}

	return c
}
