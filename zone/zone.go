/*
Package zone filters detections through named polygon regions before they
reach the tracker.  Zones are defined in the same normalised bottom-left
coordinate space as detections, so one zone definition works across frame
resolutions.
*/
package zone

import (
	"math"

	clipper "github.com/ctessum/go.clipper"
	"gonum.org/v1/gonum/spatial/r2"

	tracklet "github.com/visiontk/go-tracklet"
)

// clipperScale converts normalised coordinates onto the integer grid the
// clipper library operates on
const clipperScale = 1e6

// DefaultMinCoverage is the fraction of a detection's area a zone must
// cover to claim it when no explicit value is configured
const DefaultMinCoverage = 0.5

// Zone is a named polygon region in normalised bottom-left coordinates
type Zone struct {
	// Name identifies the zone in logs and notifications
	Name string
	// Polygon is the zone boundary; at least three vertices
	Polygon []r2.Vec
	// Exclude inverts the zone: detections it claims are dropped rather
	// than kept
	Exclude bool
}

// Coverage returns the fraction of the rectangle's area covered by the
// zone polygon, in [0,1].  Degenerate rectangles and polygons with fewer
// than three vertices yield 0.
func (z Zone) Coverage(r tracklet.Rect) float32 {

	if len(z.Polygon) < 3 {
		return 0
	}

	rectArea := float64(r.Area()) * clipperScale * clipperScale

	if rectArea <= 0 {
		return 0
	}

	c := clipper.NewClipper(clipper.IoNone)
	c.AddPath(rectPath(r), clipper.PtSubject, true)
	c.AddPath(polyPath(z.Polygon), clipper.PtClip, true)

	solution, ok := c.Execute1(clipper.CtIntersection,
		clipper.PftEvenOdd, clipper.PftEvenOdd)

	if !ok {
		return 0
	}

	var inter float64

	for _, path := range solution {
		inter += math.Abs(clipper.Area(path))
	}

	return float32(inter / rectArea)
}

// Set applies a group of inclusion and exclusion zones to detections
type Set struct {
	zones       []Zone
	minCoverage float32
}

// NewSet returns a zone set.  minCoverage is the fraction of a detection's
// area a zone must cover to claim it; out of range values fall back to
// DefaultMinCoverage.
func NewSet(minCoverage float32, zones ...Zone) *Set {

	if minCoverage <= 0 || minCoverage > 1 {
		minCoverage = DefaultMinCoverage
	}

	return &Set{
		zones:       zones,
		minCoverage: minCoverage,
	}
}

// Filter returns the detections that pass the zone rules.  A detection is
// dropped when an exclude zone claims it.  When include zones exist, a
// detection must additionally be claimed by at least one of them; with no
// include zones every unexcluded detection passes.
func (s *Set) Filter(dets []tracklet.Detection) []tracklet.Detection {

	if len(s.zones) == 0 {
		return dets
	}

	hasInclude := false

	for _, z := range s.zones {
		if !z.Exclude {
			hasInclude = true
			break
		}
	}

	out := make([]tracklet.Detection, 0, len(dets))

	for _, det := range dets {
		if s.admit(det, hasInclude) {
			out = append(out, det)
		}
	}

	return out
}

// Zones returns the configured zones, for rendering overlays
func (s *Set) Zones() []Zone {
	out := make([]Zone, len(s.zones))
	copy(out, s.zones)
	return out
}

func (s *Set) admit(det tracklet.Detection, hasInclude bool) bool {

	included := !hasInclude

	for _, z := range s.zones {

		if z.Coverage(det.Rect) < s.minCoverage {
			continue
		}

		if z.Exclude {
			return false
		}

		included = true
	}

	return included
}

// rectPath converts a rectangle to a closed clipper path on the scaled
// integer grid
func rectPath(r tracklet.Rect) clipper.Path {

	x1 := scale(r.X())
	y1 := scale(r.Y())
	x2 := scale(r.X() + r.Width())
	y2 := scale(r.Y() + r.Height())

	return clipper.Path{
		&clipper.IntPoint{X: x1, Y: y1},
		&clipper.IntPoint{X: x2, Y: y1},
		&clipper.IntPoint{X: x2, Y: y2},
		&clipper.IntPoint{X: x1, Y: y2},
	}
}

// polyPath converts polygon vertices to a closed clipper path on the
// scaled integer grid
func polyPath(poly []r2.Vec) clipper.Path {

	path := make(clipper.Path, 0, len(poly))

	for _, pt := range poly {
		path = append(path, &clipper.IntPoint{
			X: clipper.CInt(math.Round(pt.X * clipperScale)),
			Y: clipper.CInt(math.Round(pt.Y * clipperScale)),
		})
	}

	return path
}

func scale(v float32) clipper.CInt {
	return clipper.CInt(math.Round(float64(v) * clipperScale))
}
