/*
Package render draws tracking overlays onto video frames.  The tracker
works in normalised coordinates with a bottom-left origin while images use
pixels with a top-left origin; ToImageRect and ToImagePoint perform that
conversion, and the drawing helpers take care of boxes, labels, motion
trails and zone shading.
*/
package render

import (
	"image"
	"math"

	tracklet "github.com/visiontk/go-tracklet"
)

// ToImageRect converts a normalised bottom-left rectangle to a pixel
// rectangle with a top-left origin for an image of the given size.  Edges
// are rounded to the nearest pixel.
func ToImageRect(r tracklet.Rect, width, height int) image.Rectangle {

	fw := float64(width)
	fh := float64(height)

	left := int(math.Round(float64(r.X()) * fw))
	right := int(math.Round(float64(r.X()+r.Width()) * fw))
	top := int(math.Round(float64(1-r.Y()-r.Height()) * fh))
	bottom := int(math.Round(float64(1-r.Y()) * fh))

	return image.Rect(left, top, right, bottom)
}

// ToImagePoint converts a normalised bottom-left point to a pixel point
// with a top-left origin
func ToImagePoint(p tracklet.Point, width, height int) image.Point {

	return image.Pt(
		int(math.Round(float64(p.X)*float64(width))),
		int(math.Round(float64(1-p.Y)*float64(height))),
	)
}
