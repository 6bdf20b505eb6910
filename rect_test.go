package tracklet

import (
	"testing"
)

func TestCalcIoU(t *testing.T) {

	tests := []struct {
		name string
		a    Rect
		b    Rect
		want float32
	}{
		{
			// power of two coordinates keep the arithmetic exact
			name: "half overlap",
			a:    NewRect(0, 0, 0.25, 0.25),
			b:    NewRect(0, 0, 0.125, 0.25),
			want: 0.5,
		},
		{
			name: "identical",
			a:    NewRect(0.25, 0.25, 0.5, 0.5),
			b:    NewRect(0.25, 0.25, 0.5, 0.5),
			want: 1,
		},
		{
			name: "disjoint",
			a:    NewRect(0, 0, 0.2, 0.2),
			b:    NewRect(0.5, 0.5, 0.2, 0.2),
			want: 0,
		},
		{
			name: "touching edges",
			a:    NewRect(0, 0, 0.25, 0.25),
			b:    NewRect(0.25, 0, 0.25, 0.25),
			want: 0,
		},
		{
			name: "quarter overlap",
			a:    NewRect(0, 0, 0.5, 0.5),
			b:    NewRect(0.25, 0.25, 0.5, 0.5),
			want: 0.0625 / 0.4375,
		},
		{
			name: "contained",
			a:    NewRect(0, 0, 0.5, 0.5),
			b:    NewRect(0.125, 0.125, 0.25, 0.25),
			want: 0.25,
		},
		{
			name: "zero area detection",
			a:    NewRect(0.1, 0.1, 0, 0),
			b:    NewRect(0, 0, 0.5, 0.5),
			want: 0,
		},
		{
			name: "both degenerate",
			a:    NewRect(0.1, 0.1, 0, 0),
			b:    NewRect(0.1, 0.1, 0, 0),
			want: 0,
		},
	}

	for _, tt := range tests {
		got := tt.a.CalcIoU(tt.b)

		if !almostEqual(got, tt.want, 1e-6) {
			t.Errorf("%s: IoU = %v, want %v", tt.name, got, tt.want)
		}

		// IoU is symmetric
		if rev := tt.b.CalcIoU(tt.a); rev != got {
			t.Errorf("%s: IoU not symmetric, %v vs %v", tt.name, got, rev)
		}
	}
}

func TestRectCenter(t *testing.T) {

	c := NewRect(0.25, 0.25, 0.5, 0.5).Center()

	if c.X != 0.5 || c.Y != 0.5 {
		t.Errorf("expected center (0.5,0.5), got (%v,%v)", c.X, c.Y)
	}
}

func TestCenterDistance(t *testing.T) {

	// 3-4-5 triangle on the centers
	a := NewRect(0.05, 0.05, 0.1, 0.1) // center (0.1, 0.1)
	b := NewRect(0.35, 0.45, 0.1, 0.1) // center (0.4, 0.5)

	if d := CenterDistance(a, b); !almostEqual(d, 0.5, 1e-6) {
		t.Errorf("expected distance 0.5, got %v", d)
	}

	if d := CenterDistance(a, a); d != 0 {
		t.Errorf("expected zero distance to self, got %v", d)
	}
}

func TestRectArea(t *testing.T) {

	if a := NewRect(0, 0, 0.5, 0.25).Area(); a != 0.125 {
		t.Errorf("expected area 0.125, got %v", a)
	}

	if a := NewRect(0.3, 0.3, 0, 0.5).Area(); a != 0 {
		t.Errorf("expected zero area, got %v", a)
	}
}
