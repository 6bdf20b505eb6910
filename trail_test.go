package tracklet

import (
	"testing"
)

func TestTrailAdd(t *testing.T) {

	trail := NewTrail(4)

	trail.Add(0, NewRect(0.25, 0.25, 0.5, 0.5))

	points := trail.GetPoints(0)

	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}

	if points[0].X != 0.5 || points[0].Y != 0.5 {
		t.Errorf("expected center point (0.5,0.5), got (%v,%v)",
			points[0].X, points[0].Y)
	}
}

func TestTrailSizeBound(t *testing.T) {

	trail := NewTrail(3)

	// five points, only the most recent three survive
	for i := 0; i < 5; i++ {
		x := float32(i) * 0.125
		trail.Add(0, NewRect(x, 0, 0.25, 0.25))
	}

	points := trail.GetPoints(0)

	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	// oldest first: points for i = 2, 3, 4
	for i, p := range points {
		want := float32(i+2)*0.125 + 0.125

		if !almostEqual(p.X, want, 1e-6) {
			t.Errorf("point %d: expected x %v, got %v", i, want, p.X)
		}
	}
}

func TestTrailPerTrackHistories(t *testing.T) {

	trail := NewTrail(10)

	trail.Add(0, NewRect(0, 0, 0.25, 0.25))
	trail.Add(0, NewRect(0.125, 0, 0.25, 0.25))
	trail.Add(1, NewRect(0.5, 0.5, 0.25, 0.25))

	if n := len(trail.GetPoints(0)); n != 2 {
		t.Errorf("track 0: expected 2 points, got %d", n)
	}

	if n := len(trail.GetPoints(1)); n != 1 {
		t.Errorf("track 1: expected 1 point, got %d", n)
	}

	if pts := trail.GetPoints(9); pts != nil {
		t.Errorf("unknown track: expected nil, got %v", pts)
	}
}

func TestTrailGetPointsReturnsCopy(t *testing.T) {

	trail := NewTrail(10)

	trail.Add(0, NewRect(0.25, 0.25, 0.5, 0.5))

	points := trail.GetPoints(0)
	points[0] = Point{X: 9, Y: 9}

	fresh := trail.GetPoints(0)

	if fresh[0].X != 0.5 || fresh[0].Y != 0.5 {
		t.Errorf("mutating the returned slice leaked into the trail: %v", fresh[0])
	}
}

func TestTrailRemoveAndReset(t *testing.T) {

	trail := NewTrail(10)

	trail.Add(0, NewRect(0, 0, 0.25, 0.25))
	trail.Add(1, NewRect(0.5, 0.5, 0.25, 0.25))

	trail.Remove(0)

	if pts := trail.GetPoints(0); pts != nil {
		t.Errorf("expected no points after Remove, got %v", pts)
	}

	if n := len(trail.GetPoints(1)); n != 1 {
		t.Errorf("Remove must not touch other tracks, got %d points", n)
	}

	trail.Reset()

	if pts := trail.GetPoints(1); pts != nil {
		t.Errorf("expected no points after Reset, got %v", pts)
	}
}
