package video

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
	"gocv.io/x/gocv"
)

// writeTestVideo encodes a short MJPG clip and returns its path.  Each
// frame carries a moving white square so decoded frames are non-empty.
func writeTestVideo(t *testing.T, frames int, fps float64) string {

	t.Helper()

	path := filepath.Join(t.TempDir(), "clip.avi")

	writer, err := gocv.VideoWriterFile(path, "MJPG", fps, 320, 240, true)

	if err != nil {
		t.Fatalf("error creating video writer: %v", err)
	}

	img := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer img.Close()

	white := color.RGBA{R: 255, G: 255, B: 255, A: 0}

	for i := 0; i < frames; i++ {
		img.SetTo(gocv.NewScalar(0, 0, 0, 0))
		gocv.Rectangle(&img, image.Rect(10+i*5, 10, 60+i*5, 60), white, -1)

		if err := writer.Write(img); err != nil {
			t.Fatalf("error writing frame %d: %v", i, err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("error closing video writer: %v", err)
	}

	return path
}

func TestSessionRead(t *testing.T) {

	path := writeTestVideo(t, 5, 25)

	session, err := Open(path)

	if err != nil {
		t.Fatalf("error opening session: %v", err)
	}

	defer session.Close()

	if session.SessionID() == "" {
		t.Error("expected a non-empty session id")
	}

	w, h := session.Size()

	if w != 320 || h != 240 {
		t.Errorf("expected size 320x240, got %dx%d", w, h)
	}

	img := gocv.NewMat()
	defer img.Close()

	read := 0

	for session.Read(&img) {
		if img.Empty() {
			continue
		}
		read++
	}

	if read != 5 {
		t.Errorf("expected 5 frames, got %d", read)
	}

	if session.FrameCount() != 5 {
		t.Errorf("expected frame count 5, got %d", session.FrameCount())
	}
}

func TestSessionIDsUnique(t *testing.T) {

	path := writeTestVideo(t, 1, 25)

	a, err := Open(path)

	if err != nil {
		t.Fatalf("error opening first session: %v", err)
	}

	defer a.Close()

	b, err := Open(path)

	if err != nil {
		t.Fatalf("error opening second session: %v", err)
	}

	defer b.Close()

	if a.SessionID() == b.SessionID() {
		t.Errorf("expected distinct session ids, both were %s", a.SessionID())
	}
}

// TestFrames drains a whole clip through the paced channel and checks the
// reader goroutine exits cleanly at end of file
func TestFrames(t *testing.T) {

	defer goleak.VerifyNone(t)

	// high nominal fps keeps the paced playback quick
	path := writeTestVideo(t, 6, 120)

	session, err := Open(path)

	if err != nil {
		t.Fatalf("error opening session: %v", err)
	}

	received := 0
	lastIndex := -1

	for frame := range session.Frames(context.Background()) {

		if frame.Img.Empty() {
			t.Error("received an empty frame")
		}

		if frame.Index != lastIndex+1 {
			t.Errorf("expected index %d, got %d", lastIndex+1, frame.Index)
		}

		lastIndex = frame.Index
		received++

		frame.Img.Close()
	}

	if received != 6 {
		t.Errorf("expected 6 frames, got %d", received)
	}

	session.Close()
}

// TestFramesCancel checks that cancelling the context stops the reader
// before the clip is exhausted
func TestFramesCancel(t *testing.T) {

	defer goleak.VerifyNone(t)

	path := writeTestVideo(t, 30, 30)

	session, err := Open(path)

	if err != nil {
		t.Fatalf("error opening session: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	frames := session.Frames(ctx)

	// take one frame then cancel
	frame, ok := <-frames

	if !ok {
		t.Fatal("channel closed before the first frame")
	}

	frame.Img.Close()
	cancel()

	// drain until the reader notices the cancellation
	deadline := time.After(5 * time.Second)

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				session.Close()
				return
			}
			frame.Img.Close()

		case <-deadline:
			t.Fatal("reader did not stop after cancel")
		}
	}
}
