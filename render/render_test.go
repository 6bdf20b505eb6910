package render

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"

	tracklet "github.com/visiontk/go-tracklet"
	"github.com/visiontk/go-tracklet/zone"
)

func TestToImageRect(t *testing.T) {

	tests := []struct {
		name string
		rect tracklet.Rect
		want image.Rectangle
	}{
		{
			name: "centered box",
			rect: tracklet.NewRect(0.25, 0.25, 0.5, 0.5),
			want: image.Rect(80, 60, 240, 180),
		},
		{
			name: "full frame",
			rect: tracklet.NewRect(0, 0, 1, 1),
			want: image.Rect(0, 0, 320, 240),
		},
		{
			// a box resting on the normalised origin hangs from the
			// image's bottom edge
			name: "bottom left corner",
			rect: tracklet.NewRect(0, 0, 0.25, 0.25),
			want: image.Rect(0, 180, 80, 240),
		},
	}

	for _, tt := range tests {
		if got := ToImageRect(tt.rect, 320, 240); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestToImagePoint(t *testing.T) {

	got := ToImagePoint(tracklet.Point{X: 0.5, Y: 0.25}, 320, 240)

	if got != image.Pt(160, 180) {
		t.Errorf("got %v, want (160,180)", got)
	}
}

func TestTrackColorStable(t *testing.T) {

	if TrackColor(0) != trackColors[0] {
		t.Errorf("id 0 should use the first palette color")
	}

	if TrackColor(3) != TrackColor(3+len(trackColors)) {
		t.Errorf("palette must cycle by id")
	}

	// negative ids must not panic and still map into the palette
	if TrackColor(-3) != trackColors[3] {
		t.Errorf("negative ids should map by magnitude")
	}
}

func TestFromSnapshot(t *testing.T) {

	snapshot := map[int]tracklet.Rect{
		4: tracklet.NewRect(0.5, 0.5, 0.1, 0.1),
		1: tracklet.NewRect(0.1, 0.1, 0.1, 0.1),
		9: tracklet.NewRect(0.7, 0.2, 0.1, 0.1),
	}

	boxes := FromSnapshot(snapshot)

	if len(boxes) != 3 {
		t.Fatalf("expected 3 boxes, got %d", len(boxes))
	}

	for i, wantID := range []int{1, 4, 9} {
		if boxes[i].ID != wantID {
			t.Errorf("box %d: expected id %d, got %d", i, wantID, boxes[i].ID)
		}
	}
}

func TestFromTracks(t *testing.T) {

	// a tracker with immediate confirmation produces one confirmed and
	// one tentative track after two frames
	tk := tracklet.NewTracker(tracklet.Config{
		IoUThreshold:       0.3,
		SmoothingAlpha:     0.6,
		MinFramesToConfirm: 2,
		MaxMissedFrames:    5,
		MaxJumpDistance:    0.3,
	})

	a := tracklet.Detection{Rect: tracklet.NewRect(0.1, 0.1, 0.2, 0.2), Label: 1}

	tk.Update([]tracklet.Detection{a})
	tk.Update([]tracklet.Detection{
		a,
		{Rect: tracklet.NewRect(0.6, 0.6, 0.2, 0.2), Label: 0},
	})

	names := func(class int) string {
		return map[int]string{0: "cat", 1: "person"}[class]
	}

	boxes := FromTracks(tk.GetTracks(), names)

	if len(boxes) != 1 {
		t.Fatalf("expected only the confirmed track, got %d boxes", len(boxes))
	}

	if boxes[0].ID != 0 || boxes[0].Label != "person" {
		t.Errorf("unexpected box %+v", boxes[0])
	}

	// nil name resolver leaves labels empty
	if boxes := FromTracks(tk.GetTracks(), nil); boxes[0].Label != "" {
		t.Errorf("expected empty label, got %q", boxes[0].Label)
	}
}

func TestTrackBoxesDraws(t *testing.T) {

	img := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer img.Close()

	boxes := []TrackBox{
		{ID: 0, Rect: tracklet.NewRect(0.25, 0.25, 0.5, 0.5), Label: "person"},
	}

	TrackBoxes(&img, boxes, DefaultFont(), 2)

	// the top border of the box runs through pixel row 60
	pixel := img.GetVecbAt(60, 160)

	if pixel[0] == 0 && pixel[1] == 0 && pixel[2] == 0 {
		t.Errorf("expected the box border to be drawn at (160,60)")
	}
}

func TestZonesDraws(t *testing.T) {

	img := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer img.Close()

	zones := []zone.Zone{{
		Name: "gate",
		Polygon: []r2.Vec{
			{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 0.5, Y: 0.5}, {X: 0, Y: 0.5},
		},
	}}

	Zones(&img, zones, 0.5, DefaultFont())

	// the zone occupies the bottom left quadrant of the image after the
	// axis flip
	inside := img.GetVecbAt(200, 80)

	if inside[0] == 0 && inside[1] == 0 && inside[2] == 0 {
		t.Errorf("expected shading inside the zone")
	}

	outside := img.GetVecbAt(40, 240)

	if outside[0] != 0 || outside[1] != 0 || outside[2] != 0 {
		t.Errorf("expected no shading outside the zone")
	}
}

func TestTrailDraws(t *testing.T) {

	img := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer img.Close()

	history := tracklet.NewTrail(10)
	history.Add(0, tracklet.NewRect(0.2, 0.45, 0.1, 0.1))
	history.Add(0, tracklet.NewRect(0.7, 0.45, 0.1, 0.1))

	boxes := []TrackBox{{ID: 0, Rect: tracklet.NewRect(0.7, 0.45, 0.1, 0.1)}}

	Trail(&img, boxes, history, DefaultTrailStyle())

	// the segment runs horizontally at normalised y 0.5, pixel row 120
	pixel := img.GetVecbAt(120, 160)

	if pixel[0] == 0 && pixel[1] == 0 && pixel[2] == 0 {
		t.Errorf("expected a trail segment through (160,120)")
	}
}
