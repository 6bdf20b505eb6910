package render

import (
	"image/color"

	"gocv.io/x/gocv"

	tracklet "github.com/visiontk/go-tracklet"
)

// TrailStyle defines the parameters used for rendering motion trails
type TrailStyle struct {
	// LineSame defines if the color of the trail line should be the
	// same color as that of the bounding box.  If set to false then use
	// the color specified at LineColor
	LineSame      bool
	LineColor     color.RGBA
	LineThickness int
	// CircleSame defines if the color of the midpoint circle should be the
	// same color as that of the bounding box.  If set to false then use
	// the color specified at CircleColor
	CircleSame   bool
	CircleColor  color.RGBA
	CircleRadius int
}

// DefaultTrailStyle returns default trail style settings
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		LineSame:      false,
		LineColor:     Yellow,
		LineThickness: 1,
		CircleSame:    true,
		CircleColor:   Pink,
		CircleRadius:  3,
	}
}

// Trail draws each drawn track's center point history as a polyline, with
// a circle marking the newest point.  The history holds normalised
// coordinates and is converted to pixels for the target image.
func Trail(img *gocv.Mat, boxes []TrackBox, history *tracklet.Trail,
	style TrailStyle) {

	width := img.Cols()
	height := img.Rows()

	for _, box := range boxes {

		objClr := TrackColor(box.ID)

		lineClr := objClr
		circleClr := objClr

		if !style.LineSame {
			lineClr = style.LineColor
		}

		if !style.CircleSame {
			circleClr = style.CircleColor
		}

		points := history.GetPoints(box.ID)

		if len(points) < 2 {
			continue
		}

		for i := 1; i < len(points); i++ {
			gocv.Line(img,
				ToImagePoint(points[i-1], width, height),
				ToImagePoint(points[i], width, height),
				lineClr, style.LineThickness,
			)
		}

		// mark the newest point
		gocv.Circle(img, ToImagePoint(points[len(points)-1], width, height),
			style.CircleRadius, circleClr, -1)
	}
}
