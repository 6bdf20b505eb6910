package render

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strconv"

	"gocv.io/x/gocv"

	tracklet "github.com/visiontk/go-tracklet"
)

// TrackBox is one tracked object to draw
type TrackBox struct {
	// ID is the track id; it selects the overlay color
	ID int
	// Rect is the smoothed geometry in normalised bottom-left coordinates
	Rect tracklet.Rect
	// Label is the display name for the object class, may be empty
	Label string
}

// boxLabel records the label text and backing rectangle of one box so all
// labels can be drawn as the topmost layer
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// FromSnapshot builds draw boxes from a confirmed track snapshot, ordered
// by id so successive frames render in a stable order
func FromSnapshot(snapshot map[int]tracklet.Rect) []TrackBox {

	boxes := make([]TrackBox, 0, len(snapshot))

	for id, rect := range snapshot {
		boxes = append(boxes, TrackBox{ID: id, Rect: rect})
	}

	sort.Slice(boxes, func(i, j int) bool {
		return boxes[i].ID < boxes[j].ID
	})

	return boxes
}

// FromTracks builds draw boxes for the confirmed tracks in a track
// snapshot.  name resolves a class index to display text and may be nil
// for unlabelled boxes.
func FromTracks(tracks []tracklet.Track, name func(int) string) []TrackBox {

	boxes := make([]TrackBox, 0, len(tracks))

	for i := range tracks {

		if tracks[i].GetState() != tracklet.StateConfirmed {
			continue
		}

		label := ""

		if name != nil {
			label = name(tracks[i].GetLabel())
		}

		boxes = append(boxes, TrackBox{
			ID:    tracks[i].GetTrackID(),
			Rect:  tracks[i].GetRect(),
			Label: label,
		})
	}

	return boxes
}

// TrackBoxes renders the bounding boxes of tracked objects with their id
// labels.  Box geometry is converted from the tracker's normalised space
// to pixels for the target image.
func TrackBoxes(img *gocv.Mat, boxes []TrackBox, font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0, len(boxes))

	for _, box := range boxes {

		useClr := TrackColor(box.ID)

		rect := ToImageRect(box.Rect, img.Cols(), img.Rows())
		gocv.Rectangle(img, rect, useClr, lineThickness)

		// create text for label
		text := fmt.Sprintf("%s %d", box.Label, box.ID)

		if box.Label == "" {
			text = strconv.Itoa(box.ID)
		}

		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		// calculate the alignment of the text label
		var centerX int

		switch font.Alignment {
		case Center:
			centerX = (rect.Min.X + rect.Max.X) / 2

		case Right:
			centerX = rect.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

		case Left:
			fallthrough
		default:
			centerX = rect.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
		}

		// adjust the label position so the text is centered horizontally
		labelPosition := image.Pt(centerX-textSize.X/2, rect.Min.Y-font.BottomPad)

		// box the text gets written on, sitting on the top edge
		bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
			rect.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, rect.Min.Y)

		boxLabels = append(boxLabels, boxLabel{
			rect:    bRect,
			clr:     useClr,
			text:    text,
			textPos: labelPosition,
		})
	}

	// draw all precalculated box labels so they are the topmost layer on
	// the image and don't get overlapped by neighbouring boxes
	for _, box := range boxLabels {
		gocv.Rectangle(img, box.rect, box.clr, -1)

		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
