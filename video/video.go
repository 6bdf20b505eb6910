/*
Package video opens camera devices and video files behind a capture
Session with a stable session id, a frame counter and an optional paced
frame channel for pipeline consumers.
*/
package video

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"
	"golang.org/x/time/rate"
)

// DefaultFPS is the pacing rate used when the source does not report its
// own frame rate, as live camera devices often do not
const DefaultFPS = 30

// Frame is one captured video frame delivered by Frames.  The receiver
// owns Img and must Close it when done.
type Frame struct {
	// Img holds the frame pixel data
	Img gocv.Mat
	// Index is the zero based frame number within the session
	Index int
	// Time is when the frame was read from the source
	Time time.Time
}

// Session is a single opened video source.  Each session carries a unique
// id so downstream consumers, such as the event store, can correlate
// their records with one capture run.
//
// A Session is not safe for concurrent use: either drive Read from one
// goroutine or hand the session to Frames and only consume the channel.
type Session struct {
	// id is the unique session identifier
	id string
	// src describes the opened source, for logs
	src string
	// capture is the underlying OpenCV capture handle
	capture *gocv.VideoCapture
	// frames counts frames successfully read so far
	frames int
}

// Open opens a video file or stream URL as a new capture session
func Open(src string) (*Session, error) {

	capture, err := gocv.VideoCaptureFile(src)

	if err != nil {
		return nil, fmt.Errorf("error opening video source %s: %w", src, err)
	}

	return newSession(src, capture), nil
}

// OpenDevice opens a camera by device id as a new capture session
func OpenDevice(id int) (*Session, error) {

	capture, err := gocv.VideoCaptureDevice(id)

	if err != nil {
		return nil, fmt.Errorf("error opening capture device %d: %w", id, err)
	}

	return newSession(fmt.Sprintf("device:%d", id), capture), nil
}

func newSession(src string, capture *gocv.VideoCapture) *Session {
	return &Session{
		id:      uuid.New().String(),
		src:     src,
		capture: capture,
	}
}

// SessionID returns the unique id assigned to this capture session
func (s *Session) SessionID() string {
	return s.id
}

// Source returns a description of the opened source
func (s *Session) Source() string {
	return s.src
}

// Read reads the next frame from the source into img and reports whether
// a frame was available.  A false return means the end of a file source
// or a closed device.
func (s *Session) Read(img *gocv.Mat) bool {

	if ok := s.capture.Read(img); !ok {
		return false
	}

	s.frames++

	return true
}

// FrameCount returns the number of frames read so far
func (s *Session) FrameCount() int {
	return s.frames
}

// Size returns the frame dimensions of the source in pixels
func (s *Session) Size() (width, height int) {
	return int(s.capture.Get(gocv.VideoCaptureFrameWidth)),
		int(s.capture.Get(gocv.VideoCaptureFrameHeight))
}

// FPS returns the frame rate reported by the source, or 0 when the source
// does not report one
func (s *Session) FPS() float64 {
	return s.capture.Get(gocv.VideoCaptureFPS)
}

// Frames starts a background reader and returns a channel of frames paced
// at the source frame rate, so file sources play out in real time rather
// than as fast as decoding allows.  The channel closes when the source
// ends or the context is cancelled.
//
// Each delivered frame is a copy owned by the receiver.  Cancel the
// context and drain the channel before calling Close.
func (s *Session) Frames(ctx context.Context) <-chan Frame {

	fps := s.FPS()

	if fps <= 0 {
		fps = DefaultFPS
	}

	limiter := rate.NewLimiter(rate.Limit(fps), 1)
	out := make(chan Frame)

	go func() {
		defer close(out)

		img := gocv.NewMat()
		defer img.Close()

		for {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			if !s.Read(&img) {
				return
			}

			if img.Empty() {
				continue
			}

			frame := Frame{
				Img:   img.Clone(),
				Index: s.frames - 1,
				Time:  time.Now(),
			}

			select {
			case out <- frame:
			case <-ctx.Done():
				frame.Img.Close()
				return
			}
		}
	}()

	return out
}

// Close releases the capture handle.  Do not call while a Frames channel
// is still being read; cancel its context first.
func (s *Session) Close() error {
	return s.capture.Close()
}
