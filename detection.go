package tracklet

// Detection represents a single detector output for one frame.  A Detection
// carries no identity; it is only valid for the duration of the Update call
// it is passed to.  Associating detections across frames is the Tracker's
// job.
type Detection struct {
	// Rect is the bounding box of the detected object in normalised
	// coordinates
	Rect Rect
	// Label is the class label of the object detected
	Label int
	// Score is the confidence of the detection
	Score float32
}

// NewDetection is a constructor function for the Detection struct
func NewDetection(rect Rect, label int, score float32) Detection {
	return Detection{
		Rect:  rect,
		Label: label,
		Score: score,
	}
}
