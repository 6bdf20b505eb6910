/*
Package crop cuts per track thumbnails out of video frames.  A Cropper
owns a single worker goroutine and a TTL cache of JPEG bytes keyed by
track id, so frame processing never blocks on encoding and consumers
never share mutable image state: submission is message passing and
retrieval returns immutable byte slices.
*/
package crop

import (
	"fmt"
	"image"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gocv.io/x/gocv"

	tracklet "github.com/visiontk/go-tracklet"
	"github.com/visiontk/go-tracklet/render"
)

// Config holds the cropper settings
type Config struct {
	// ThumbWidth and ThumbHeight are the thumbnail output size in pixels
	ThumbWidth  int
	ThumbHeight int
	// TTL is how long a thumbnail stays retrievable after its last update
	TTL time.Duration
	// QueueSize is the job buffer length.  Submit drops jobs when the
	// buffer is full rather than blocking the caller's frame loop.
	QueueSize int
}

// DefaultConfig returns the default cropper configuration
func DefaultConfig() Config {
	return Config{
		ThumbWidth:  160,
		ThumbHeight: 120,
		TTL:         time.Minute,
		QueueSize:   8,
	}
}

// Job carries one frame and the track rectangles to thumbnail from it.
// The Cropper takes ownership of Frame and closes it; submit a clone if
// the frame is still needed elsewhere.
type Job struct {
	Frame gocv.Mat
	Rects map[int]tracklet.Rect
}

// Cropper runs thumbnail extraction on its own goroutine
type Cropper struct {
	cfg   Config
	jobs  chan Job
	cache *gocache.Cache
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// New starts a cropper worker
func New(cfg Config) *Cropper {

	c := &Cropper{
		cfg:   cfg,
		jobs:  make(chan Job, cfg.QueueSize),
		cache: gocache.New(cfg.TTL, cfg.TTL*2),
		done:  make(chan struct{}),
	}

	go c.run()

	return c
}

// Submit hands a job to the worker without blocking.  It reports whether
// the job was accepted; rejected jobs have their frame closed.
func (c *Cropper) Submit(job Job) bool {

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		job.Frame.Close()
		return false
	}

	select {
	case c.jobs <- job:
		return true
	default:
		job.Frame.Close()
		return false
	}
}

// Get returns the most recent JPEG thumbnail for a track id.  The bytes
// are owned by the cache and must not be modified.
func (c *Cropper) Get(trackID int) ([]byte, bool) {

	v, found := c.cache.Get(strconv.Itoa(trackID))

	if !found {
		return nil, false
	}

	return v.([]byte), true
}

// Len returns the number of cached thumbnails
func (c *Cropper) Len() int {
	return c.cache.ItemCount()
}

// Close stops the worker after draining queued jobs.  It is safe to call
// more than once.
func (c *Cropper) Close() {

	c.mu.Lock()

	if !c.closed {
		c.closed = true
		close(c.jobs)
	}

	c.mu.Unlock()

	<-c.done
}

// run is the worker loop; it owns every frame passed through the queue
func (c *Cropper) run() {

	defer close(c.done)

	for job := range c.jobs {
		c.process(job)
	}
}

func (c *Cropper) process(job Job) {

	defer job.Frame.Close()

	for id, rect := range job.Rects {

		data, err := Thumbnail(job.Frame, rect, c.cfg.ThumbWidth, c.cfg.ThumbHeight)

		if err != nil {
			continue
		}

		c.cache.Set(strconv.Itoa(id), data, gocache.DefaultExpiration)
	}
}

// Region returns the pixel region of frame covered by the normalised
// rectangle, clamped to the frame bounds.  The returned Mat shares memory
// with frame; close it after use.
func Region(frame gocv.Mat, rect tracklet.Rect) (gocv.Mat, error) {

	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())
	roi := render.ToImageRect(rect, frame.Cols(), frame.Rows()).Intersect(bounds)

	if roi.Empty() {
		return gocv.Mat{}, fmt.Errorf("rect %+v lies outside the frame", rect)
	}

	return frame.Region(roi), nil
}

// Thumbnail cuts the rectangle out of the frame, scales it to the given
// size and returns it JPEG encoded
func Thumbnail(frame gocv.Mat, rect tracklet.Rect, width, height int) ([]byte, error) {

	roi, err := Region(frame, rect)

	if err != nil {
		return nil, err
	}

	defer roi.Close()

	thumb := gocv.NewMat()
	defer thumb.Close()

	gocv.Resize(roi, &thumb, image.Pt(width, height), 0, 0, gocv.InterpolationArea)

	buf, err := gocv.IMEncode(".jpg", thumb)

	if err != nil {
		return nil, fmt.Errorf("error encoding thumbnail: %w", err)
	}

	defer buf.Close()

	// copy out of the native buffer before it is freed
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())

	return data, nil
}
