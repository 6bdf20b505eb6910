package render

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/visiontk/go-tracklet/zone"
)

var (
	includeZoneColor = color.RGBA{R: 46, G: 204, B: 113, A: 255}
	excludeZoneColor = color.RGBA{R: 231, G: 76, B: 60, A: 255}
)

// Zones shades the zone polygons over the image, green for include zones
// and red for exclude zones, and writes each zone's name at its first
// vertex.  alpha controls the overlay opacity, 0 drawing nothing and 1 a
// fully opaque fill.
func Zones(img *gocv.Mat, zones []zone.Zone, alpha float64, font Font) {

	if alpha <= 0 || len(zones) == 0 {
		return
	}

	if alpha > 1 {
		alpha = 1
	}

	width := img.Cols()
	height := img.Rows()

	overlay := gocv.NewMat()
	defer overlay.Close()

	img.CopyTo(&overlay)

	for _, z := range zones {

		if len(z.Polygon) < 3 {
			continue
		}

		pts := make([]image.Point, 0, len(z.Polygon))

		for _, v := range z.Polygon {
			pts = append(pts, image.Pt(
				int(math.Round(v.X*float64(width))),
				int(math.Round((1-v.Y)*float64(height))),
			))
		}

		clr := includeZoneColor

		if z.Exclude {
			clr = excludeZoneColor
		}

		pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
		gocv.FillPoly(&overlay, pv, clr)
		pv.Close()
	}

	gocv.AddWeighted(overlay, alpha, *img, 1-alpha, 0, img)

	// names go on the blended image so they stay readable
	for _, z := range zones {

		if z.Name == "" || len(z.Polygon) < 3 {
			continue
		}

		pos := image.Pt(
			int(math.Round(z.Polygon[0].X*float64(width)))+font.LeftPad,
			int(math.Round((1-z.Polygon[0].Y)*float64(height)))-font.BottomPad,
		)

		gocv.PutTextWithParams(img, z.Name, pos, font.Face, font.Scale,
			font.Color, font.Thickness, font.LineType, false)
	}
}
