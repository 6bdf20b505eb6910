package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	tracklet "github.com/visiontk/go-tracklet"
)

func square(x, y, size float64) []r2.Vec {
	return []r2.Vec{
		{X: x, Y: y},
		{X: x + size, Y: y},
		{X: x + size, Y: y + size},
		{X: x, Y: y + size},
	}
}

func detAt(x, y, w, h float32) tracklet.Detection {
	return tracklet.Detection{Rect: tracklet.NewRect(x, y, w, h)}
}

func TestZoneCoverage(t *testing.T) {

	z := Zone{Name: "gate", Polygon: square(0, 0, 0.5)}

	// fully inside
	assert.InDelta(t, 1.0, z.Coverage(tracklet.NewRect(0.1, 0.1, 0.2, 0.2)), 1e-4)

	// fully outside
	assert.InDelta(t, 0.0, z.Coverage(tracklet.NewRect(0.6, 0.6, 0.2, 0.2)), 1e-4)

	// straddling the right edge at x = 0.5, half in
	assert.InDelta(t, 0.5, z.Coverage(tracklet.NewRect(0.4, 0.1, 0.2, 0.2)), 1e-4)

	// triangle x + y <= 1 covers half of the square [0.5,1]^2
	tri := Zone{Polygon: []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}}
	assert.InDelta(t, 0.5, tri.Coverage(tracklet.NewRect(0.5, 0.5, 0.5, 0.5)), 1e-4)
}

func TestZoneCoverageDegenerate(t *testing.T) {

	line := Zone{Polygon: []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 1}}}
	assert.Zero(t, line.Coverage(tracklet.NewRect(0.1, 0.1, 0.2, 0.2)))

	z := Zone{Polygon: square(0, 0, 1)}
	assert.Zero(t, z.Coverage(tracklet.NewRect(0.1, 0.1, 0, 0)))
}

func TestSetFilterInclude(t *testing.T) {

	set := NewSet(0.5, Zone{Name: "left-half", Polygon: square(0, 0, 0.5)})

	dets := []tracklet.Detection{
		detAt(0.1, 0.1, 0.2, 0.2), // inside
		detAt(0.7, 0.7, 0.2, 0.2), // outside
		detAt(0.42, 0.1, 0.2, 0.2), // 40% covered, below the 0.5 floor
	}

	got := set.Filter(dets)

	require.Len(t, got, 1)
	assert.Equal(t, dets[0], got[0])
}

func TestSetFilterExclude(t *testing.T) {

	set := NewSet(0.5, Zone{
		Name:    "privacy",
		Polygon: square(0, 0, 0.5),
		Exclude: true,
	})

	dets := []tracklet.Detection{
		detAt(0.1, 0.1, 0.2, 0.2), // claimed by the exclude zone
		detAt(0.7, 0.7, 0.2, 0.2), // untouched
	}

	got := set.Filter(dets)

	require.Len(t, got, 1)
	assert.Equal(t, dets[1], got[0])
}

func TestSetFilterExcludeBeatsInclude(t *testing.T) {

	set := NewSet(0.5,
		Zone{Name: "watch", Polygon: square(0, 0, 1)},
		Zone{Name: "privacy", Polygon: square(0, 0, 0.5), Exclude: true},
	)

	dets := []tracklet.Detection{
		detAt(0.1, 0.1, 0.2, 0.2), // in both: exclusion wins
		detAt(0.7, 0.7, 0.2, 0.2), // only in the include zone
	}

	got := set.Filter(dets)

	require.Len(t, got, 1)
	assert.Equal(t, dets[1], got[0])
}

func TestSetFilterNoZonesPassesAll(t *testing.T) {

	dets := []tracklet.Detection{
		detAt(0.1, 0.1, 0.2, 0.2),
		detAt(0.7, 0.7, 0.2, 0.2),
	}

	assert.Len(t, NewSet(0.5).Filter(dets), 2)

	// exclude-only sets pass anything the exclusions do not claim
	set := NewSet(0.5, Zone{Polygon: square(0, 0, 0.3), Exclude: true})
	assert.Len(t, set.Filter(dets), 1)
}

func TestNewSetCoverageFallback(t *testing.T) {

	set := NewSet(-1, Zone{Polygon: square(0, 0, 0.5)})
	assert.Equal(t, float32(DefaultMinCoverage), set.minCoverage)

	set = NewSet(2, Zone{Polygon: square(0, 0, 0.5)})
	assert.Equal(t, float32(DefaultMinCoverage), set.minCoverage)
}
