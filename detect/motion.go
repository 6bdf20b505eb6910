package detect

import (
	"image"

	"gocv.io/x/gocv"
)

// MotionConfig holds the tunable parameters for a MotionDetector
type MotionConfig struct {
	// History is the number of frames the background model learns from
	History int
	// VarThreshold is the MOG2 squared Mahalanobis distance above which a
	// pixel is considered foreground
	VarThreshold float64
	// DetectShadows enables MOG2 shadow marking at intensity 127; raise
	// Threshold above 127 to drop marked shadows from the mask
	DetectShadows bool
	// Threshold is the binary mask cutoff applied to the foreground mask
	Threshold float32
	// DilateIterations joins fragmented motion blobs before contour
	// extraction
	DilateIterations int
	// MinArea is the smallest contour area, in pixels, kept as a detection
	MinArea float64
	// Score is the confidence assigned to motion results, as background
	// subtraction produces no per blob confidence of its own
	Score float32
}

// DefaultMotionConfig returns the default motion detector configuration
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{
		History:          500,
		VarThreshold:     16,
		DetectShadows:    false,
		Threshold:        25,
		DilateIterations: 2,
		MinArea:          400,
		Score:            1,
	}
}

// MotionDetector produces detection rectangles from frame motion using MOG2
// background subtraction followed by thresholding, dilation and contour
// extraction.  All results carry Class 0.
//
// The detector holds native OpenCV state and is not safe for concurrent
// use.  Call Close to release the native resources.
type MotionDetector struct {
	cfg        MotionConfig
	subtractor gocv.BackgroundSubtractorMOG2
	fgMask     gocv.Mat
	kernel     gocv.Mat
}

// NewMotionDetector returns a motion detector with a fresh background model
func NewMotionDetector(cfg MotionConfig) *MotionDetector {
	return &MotionDetector{
		cfg: cfg,
		subtractor: gocv.NewBackgroundSubtractorMOG2WithParams(
			cfg.History, cfg.VarThreshold, cfg.DetectShadows),
		fgMask: gocv.NewMat(),
		kernel: gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
	}
}

// Detect feeds one frame through the pipeline and returns the bounding
// boxes of motion regions at least MinArea in size.  The background model
// updates on every call, so frames must be fed in stream order.
func (m *MotionDetector) Detect(frame gocv.Mat) []Result {

	m.subtractor.Apply(frame, &m.fgMask)

	gocv.Threshold(m.fgMask, &m.fgMask, m.cfg.Threshold, 255, gocv.ThresholdBinary)

	for i := 0; i < m.cfg.DilateIterations; i++ {
		gocv.Dilate(m.fgMask, &m.fgMask, m.kernel)
	}

	contours := gocv.FindContours(m.fgMask, gocv.RetrievalExternal,
		gocv.ChainApproxSimple)
	defer contours.Close()

	var results []Result

	for i := 0; i < contours.Size(); i++ {

		contour := contours.At(i)

		if gocv.ContourArea(contour) < m.cfg.MinArea {
			continue
		}

		box := gocv.BoundingRect(contour)

		results = append(results, Result{
			Class: 0,
			Score: m.cfg.Score,
			Box: Box{
				Left:   box.Min.X,
				Top:    box.Min.Y,
				Right:  box.Max.X,
				Bottom: box.Max.Y,
			},
		})
	}

	return results
}

// Close releases the native resources held by the detector
func (m *MotionDetector) Close() {
	m.fgMask.Close()
	m.kernel.Close()
	m.subtractor.Close()
}
