/*
synthetic drives the tracker with a deterministic simulation of moving,
jittering, flickering rectangles.  It demonstrates the event and snapshot
API without needing a camera, a detector or OpenCV.
*/
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sort"

	tracklet "github.com/visiontk/go-tracklet"
)

// object is one simulated moving target.  Its detection jitters around the
// true position and occasionally drops out entirely, imitating a noisy
// detector.
type object struct {
	// current true position and per frame velocity
	x, y   float32
	vx, vy float32
	// box size
	w, h float32
	// frame window the object is visible in
	enter, leave int
}

// step advances the object one frame, bouncing off the frame edges
func (o *object) step() {

	o.x += o.vx
	o.y += o.vy

	if o.x < 0 || o.x+o.w > 1 {
		o.vx = -o.vx
		o.x += 2 * o.vx
	}

	if o.y < 0 || o.y+o.h > 1 {
		o.vy = -o.vy
		o.y += 2 * o.vy
	}
}

// detect produces the noisy detection for the current frame, or false when
// the detector misses this object
func (o *object) detect(rng *rand.Rand, jitter float32, dropRate float64) (tracklet.Detection, bool) {

	if rng.Float64() < dropRate {
		return tracklet.Detection{}, false
	}

	jx := (rng.Float32()*2 - 1) * jitter
	jy := (rng.Float32()*2 - 1) * jitter

	return tracklet.Detection{
		Rect:  tracklet.NewRect(o.x+jx, o.y+jy, o.w, o.h),
		Score: 0.5 + rng.Float32()/2,
	}, true
}

// makeObjects seeds the simulation with count objects on staggered
// enter/leave windows
func makeObjects(rng *rand.Rand, count, frames int) []*object {

	objects := make([]*object, count)

	for i := range objects {

		enter := rng.Intn(frames / 2)

		objects[i] = &object{
			x:     rng.Float32() * 0.7,
			y:     rng.Float32() * 0.7,
			vx:    (rng.Float32()*2 - 1) * 0.01,
			vy:    (rng.Float32()*2 - 1) * 0.01,
			w:     0.1 + rng.Float32()*0.1,
			h:     0.1 + rng.Float32()*0.1,
			enter: enter,
			leave: enter + frames/2 + rng.Intn(frames/2),
		}
	}

	return objects
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	frames := flag.Int("n", 120, "Number of frames to simulate")
	count := flag.Int("o", 3, "Number of simulated objects")
	seed := flag.Int64("seed", 1, "Random seed, same seed gives same run")
	jitter := flag.Float64("j", 0.01, "Detection jitter in normalised units")
	dropRate := flag.Float64("d", 0.1, "Probability a detection drops out per frame")
	confirm := flag.Int("c", 3, "Consecutive matched frames required to confirm")
	missed := flag.Int("m", 5, "Consecutive misses tolerated before eviction")
	every := flag.Int("s", 30, "Print a confirmed track snapshot every s frames")

	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	objects := makeObjects(rng, *count, *frames)

	cfg := tracklet.DefaultConfig()
	cfg.MinFramesToConfirm = *confirm
	cfg.MaxMissedFrames = *missed

	tk := tracklet.NewTracker(cfg)

	log.Printf("Simulating %d objects over %d frames (seed %d)",
		*count, *frames, *seed)

	for frame := 0; frame < *frames; frame++ {

		var dets []tracklet.Detection

		for _, obj := range objects {

			if frame < obj.enter || frame >= obj.leave {
				continue
			}

			obj.step()

			if det, ok := obj.detect(rng, float32(*jitter), *dropRate); ok {
				dets = append(dets, det)
			}
		}

		for _, ev := range tk.Update(dets) {
			logEvent(frame, ev)
		}

		if *every > 0 && frame%*every == *every-1 {
			logSnapshot(frame, tk.GetConfirmedTrackRects())
		}
	}

	// drain: feed empty frames until every remaining track is evicted
	for frame := *frames; tk.GetTrackCount() > 0; frame++ {
		for _, ev := range tk.Update(nil) {
			logEvent(frame, ev)
		}
	}

	log.Printf("Done, all tracks drained")
}

// logEvent prints one lifecycle event
func logEvent(frame int, ev tracklet.Event) {

	switch ev := ev.(type) {
	case tracklet.Appeared:
		log.Printf("frame %3d  appeared   track %d", frame, ev.ID)

	case tracklet.Confirmed:
		log.Printf("frame %3d  confirmed  track %d at %s", frame, ev.ID,
			fmtRect(ev.Rect))

	case tracklet.Lost:
		log.Printf("frame %3d  lost       track %d", frame, ev.ID)
	}
}

// logSnapshot prints the confirmed tracks in id order
func logSnapshot(frame int, snapshot map[int]tracklet.Rect) {

	ids := make([]int, 0, len(snapshot))

	for id := range snapshot {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	log.Printf("frame %3d  snapshot   %d confirmed", frame, len(ids))

	for _, id := range ids {
		log.Printf("           track %d at %s", id, fmtRect(snapshot[id]))
	}
}

func fmtRect(r tracklet.Rect) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f, %.3f)",
		r.X(), r.Y(), r.Width(), r.Height())
}
