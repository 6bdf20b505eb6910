/*
motiontrack runs the full local pipeline on a video file or camera: motion
detection, tracking, and overlay rendering, with the annotated output
written to a video file or shown in a window.
*/
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"time"

	"gocv.io/x/gocv"

	tracklet "github.com/visiontk/go-tracklet"
	"github.com/visiontk/go-tracklet/detect"
	"github.com/visiontk/go-tracklet/render"
	"github.com/visiontk/go-tracklet/video"
)

// Timing is a struct to hold timers used for finding execution time
// for various parts of the process
type Timing struct {
	ProcessStart time.Time
	DetectEnd    time.Time
	TrackerEnd   time.Time
	ProcessEnd   time.Time
}

// Demo runs the motion tracking pipeline over one video source
type Demo struct {
	session  *video.Session
	detector *detect.MotionDetector
	tracker  *tracklet.Tracker
	trail    *tracklet.Trail
	font     render.Font
	style    render.TrailStyle
	// frame dimensions of the source
	width  int
	height int
}

// NewDemo opens the video source and builds the pipeline components
func NewDemo(src string, deviceID int, minArea float64) (*Demo, error) {

	var session *video.Session
	var err error

	if src != "" {
		session, err = video.Open(src)
	} else {
		session, err = video.OpenDevice(deviceID)
	}

	if err != nil {
		return nil, fmt.Errorf("error opening video source: %w", err)
	}

	motionCfg := detect.DefaultMotionConfig()
	motionCfg.MinArea = minArea

	width, height := session.Size()

	log.Printf("Source %s: %dx%d at %.1f FPS", session.Source(),
		width, height, session.FPS())

	return &Demo{
		session:  session,
		detector: detect.NewMotionDetector(motionCfg),
		tracker:  tracklet.NewTracker(tracklet.DefaultConfig()),
		trail:    tracklet.NewTrail(90),
		font:     render.DefaultFont(),
		style:    render.DefaultTrailStyle(),
		width:    width,
		height:   height,
	}, nil
}

// Close releases the pipeline resources
func (d *Demo) Close() {
	d.detector.Close()
	d.session.Close()
}

// ProcessFrame feeds one frame through detection and tracking and draws
// the overlays onto it in place
func (d *Demo) ProcessFrame(img *gocv.Mat, fps float64) {

	timing := &Timing{
		ProcessStart: time.Now(),
	}

	frameNum := d.session.FrameCount() - 1

	// motion boxes to normalised detections
	results := d.detector.Detect(*img)
	dets := detect.ToDetections(results, d.width, d.height)

	timing.DetectEnd = time.Now()

	// advance the tracker one frame
	events := d.tracker.Update(dets)

	timing.TrackerEnd = time.Now()

	for _, ev := range events {
		switch ev := ev.(type) {
		case tracklet.Appeared:
			log.Printf("frame %d: track %d appeared", frameNum, ev.ID)
		case tracklet.Confirmed:
			log.Printf("frame %d: track %d confirmed", frameNum, ev.ID)
		case tracklet.Lost:
			log.Printf("frame %d: track %d lost", frameNum, ev.ID)
			d.trail.Remove(ev.ID)
		}
	}

	// overlay confirmed tracks with their motion trails
	boxes := render.FromSnapshot(d.tracker.GetConfirmedTrackRects())

	for _, box := range boxes {
		d.trail.Add(box.ID, box.Rect)
	}

	render.TrackBoxes(img, boxes, d.font, 2)
	render.Trail(img, boxes, d.trail, d.style)

	timing.ProcessEnd = time.Now()

	// add FPS, object count and stage times to top of image
	gocv.PutTextWithParams(img,
		fmt.Sprintf("Frame: %d, FPS: %.2f, Tracks: %d", frameNum, fps, len(boxes)),
		image.Pt(4, 14), gocv.FontHersheySimplex, 0.5, render.Yellow, 1,
		gocv.LineAA, false)

	gocv.PutTextWithParams(img,
		fmt.Sprintf("Detect: %.2fms, Track: %.2fms, Render: %.2fms",
			float32(timing.DetectEnd.Sub(timing.ProcessStart))/float32(time.Millisecond),
			float32(timing.TrackerEnd.Sub(timing.DetectEnd))/float32(time.Millisecond),
			float32(timing.ProcessEnd.Sub(timing.TrackerEnd))/float32(time.Millisecond)),
		image.Pt(4, 30), gocv.FontHersheySimplex, 0.5, render.Yellow, 1,
		gocv.LineAA, false)
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	vidFile := flag.String("v", "", "Video file to run motion tracking on, blank to use a camera")
	deviceID := flag.Int("c", 0, "Camera device id used when no video file is given")
	outFile := flag.String("o", "", "Write annotated output to this video file instead of a window")
	minArea := flag.Float64("area", 400, "Minimum contour area in pixels kept as a detection")

	flag.Parse()

	demo, err := NewDemo(*vidFile, *deviceID, *minArea)

	if err != nil {
		log.Fatalf("Error creating demo: %v", err)
	}

	defer demo.Close()

	fps := demo.session.FPS()

	if fps <= 0 {
		fps = video.DefaultFPS
	}

	var writer *gocv.VideoWriter
	var window *gocv.Window

	if *outFile != "" {
		writer, err = gocv.VideoWriterFile(*outFile, "MJPG", fps,
			demo.width, demo.height, true)

		if err != nil {
			log.Fatalf("Error creating video writer: %v", err)
		}

		defer writer.Close()
		log.Printf("Writing annotated video to %s", *outFile)

	} else {
		window = gocv.NewWindow("motiontrack")
		defer window.Close()
	}

	img := gocv.NewMat()
	defer img.Close()

	// used for calculating FPS
	frameCount := 0
	startTime := time.Now()
	measuredFPS := float64(0)

	for demo.session.Read(&img) {

		if img.Empty() {
			continue
		}

		demo.ProcessFrame(&img, measuredFPS)

		if writer != nil {
			if err := writer.Write(img); err != nil {
				log.Fatalf("Error writing output frame: %v", err)
			}

		} else {
			window.IMShow(img)

			if window.WaitKey(1) == 27 {
				// ESC pressed
				break
			}
		}

		// calculate FPS
		frameCount++
		elapsed := time.Since(startTime).Seconds()

		if elapsed >= 1.0 {
			measuredFPS = float64(frameCount) / elapsed
			frameCount = 0
			startTime = time.Now()
		}
	}

	log.Printf("Processed %d frames", demo.session.FrameCount())
}
