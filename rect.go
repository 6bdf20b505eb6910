package tracklet

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Rect represents an axis aligned rectangle in normalised coordinates.  Each
// of x, y, width and height is a fraction of the frame dimension in the range
// [0,1], with the origin at the bottom left of the frame.
type Rect struct {
	x      float32
	y      float32
	width  float32
	height float32
}

// NewRect creates a new Rect with given coordinates
func NewRect(x, y, width, height float32) Rect {
	return Rect{
		x:      x,
		y:      y,
		width:  width,
		height: height,
	}
}

// X returns the x coordinate of the rectangle
func (r Rect) X() float32 {
	return r.x
}

// Y returns the y coordinate of the rectangle
func (r Rect) Y() float32 {
	return r.y
}

// Width returns the width of the rectangle
func (r Rect) Width() float32 {
	return r.width
}

// Height returns the height of the rectangle
func (r Rect) Height() float32 {
	return r.height
}

// Area returns the area of the rectangle
func (r Rect) Area() float32 {
	return r.width * r.height
}

// Center returns the center point of the rectangle
func (r Rect) Center() r2.Vec {
	return r2.Vec{
		X: float64(r.x + r.width/2),
		Y: float64(r.y + r.height/2),
	}
}

// CalcIoU calculates the Intersection over Union (IoU) with another
// rectangle.  Disjoint rectangles have an IoU of 0, as do degenerate
// rectangle pairs whose union area is not positive, so the result is always
// a finite value in [0,1].
func (r Rect) CalcIoU(other Rect) float32 {

	iw := min(r.x+r.width, other.x+other.width) - max(r.x, other.x)

	if iw <= 0 {
		return 0
	}

	ih := min(r.y+r.height, other.y+other.height) - max(r.y, other.y)

	if ih <= 0 {
		return 0
	}

	inter := iw * ih
	union := r.Area() + other.Area() - inter

	if union <= 0 {
		return 0
	}

	return inter / union
}

// CenterDistance returns the Euclidean distance between the center points of
// two rectangles
func CenterDistance(a, b Rect) float32 {
	return float32(r2.Norm(r2.Sub(a.Center(), b.Center())))
}
