/*
Package detect adapts raw detector output to the tracker's coordinate
space.  Detectors produce pixel rectangles with a top-left origin; the
tracker works in normalised [0,1] coordinates with a bottom-left origin.
The conversion here is the single place the y-axis flip happens.
*/
package detect

import (
	"math"

	"gonum.org/v1/gonum/stat"

	tracklet "github.com/visiontk/go-tracklet"
)

// Box are the pixel dimensions of the bounding box of a detected object,
// top-left origin
type Box struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Result defines the attributes of a single object detected
type Result struct {
	// Class is the line number in the labels file the detector was trained
	// on defining the class of the detected object
	Class int
	// Box is the bounding box of the object location in pixels
	Box Box
	// Score is the confidence of the detection
	Score float32
}

// ToDetections converts detector results in pixel space to tracker
// detections in normalised bottom-left coordinates.  Boxes are clamped to
// the frame so out of bounds detector output cannot produce coordinates
// outside [0,1].
func ToDetections(results []Result, frameWidth, frameHeight int) []tracklet.Detection {

	if frameWidth <= 0 || frameHeight <= 0 {
		return nil
	}

	var dets []tracklet.Detection

	fw := float32(frameWidth)
	fh := float32(frameHeight)

	for _, res := range results {

		left := clamp01(float32(res.Box.Left) / fw)
		right := clamp01(float32(res.Box.Right) / fw)
		top := clamp01(float32(res.Box.Top) / fh)
		bottom := clamp01(float32(res.Box.Bottom) / fh)

		if right <= left || bottom <= top {
			continue
		}

		// the box bottom edge in pixel space is the rectangle origin in
		// bottom-left space
		dets = append(dets, tracklet.Detection{
			Rect: tracklet.NewRect(
				left,
				1-bottom,
				right-left,
				bottom-top,
			),
			Label: res.Class,
			Score: res.Score,
		})
	}

	return dets
}

// FromDetection converts a normalised bottom-left detection back to a pixel
// space result for consumers that draw or crop in image coordinates.
// Edges are rounded to the nearest pixel.
func FromDetection(det tracklet.Detection, frameWidth, frameHeight int) Result {

	fw := float64(frameWidth)
	fh := float64(frameHeight)

	r := det.Rect

	return Result{
		Class: det.Label,
		Score: det.Score,
		Box: Box{
			Left:   int(math.Round(float64(r.X()) * fw)),
			Right:  int(math.Round(float64(r.X()+r.Width()) * fw)),
			Top:    int(math.Round(float64(1-r.Y()-r.Height()) * fh)),
			Bottom: int(math.Round(float64(1-r.Y()) * fh)),
		},
	}
}

// SummarizeAreas returns the mean and standard deviation of the pixel box
// areas across the given results, for detector health diagnostics
func SummarizeAreas(results []Result) (mean, stddev float64) {

	if len(results) == 0 {
		return 0, 0
	}

	areas := make([]float64, len(results))

	for i, res := range results {
		w := res.Box.Right - res.Box.Left
		h := res.Box.Bottom - res.Box.Top
		areas[i] = float64(w * h)
	}

	mean = stat.Mean(areas, nil)
	stddev = stat.StdDev(areas, nil)

	return mean, stddev
}

func clamp01(v float32) float32 {

	if v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}
