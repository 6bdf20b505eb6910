package tracklet

// nnDistanceCap is the fixed maximum normalised center distance accepted by
// the fallback matching tier
const nnDistanceCap = 0.2

// matchPair couples a detection index with a track index for one frame.
// quality is the IoU of a primary tier match, or 0 for a fallback match to
// signal there is no overlap confidence behind the pairing.
type matchPair struct {
	det     int
	track   int
	quality float32
}

// matchDetections computes a partial injective correspondence between the
// frame's detections and the live non-dying tracks.
//
// The pass is greedy over detections in their input order, so the first
// detection in the slice gets first pick of the tracks.  Two detections that
// both overlap two tracks can therefore pair sub-optimally depending on
// input order.  This is a deliberate trade against the cost and complexity
// of optimal assignment; detection and track counts are small and the
// smoothing layer absorbs the occasional swap.
//
// Tier 1 takes the highest IoU at or above iouThreshold, ties broken by the
// lowest track index.  Tier 2 only considers tracks whose miss streak is
// exactly one frame and pairs the nearest rectangle centers strictly under
// nnDistanceCap.
func matchDetections(dets []Detection, tracks []Track,
	iouThreshold float32) []matchPair {

	pairs := make([]matchPair, 0, len(dets))
	used := make([]bool, len(tracks))

	for di := range dets {

		// primary tier: best IoU against unmatched, non-dying tracks
		best := -1
		bestIoU := float32(0)

		for ti := range tracks {
			if used[ti] || tracks[ti].state == StateDying {
				continue
			}

			iou := dets[di].Rect.CalcIoU(tracks[ti].rect)

			if iou >= iouThreshold && iou > bestIoU {
				best = ti
				bestIoU = iou
			}
		}

		if best != -1 {
			used[best] = true
			pairs = append(pairs, matchPair{det: di, track: best, quality: bestIoU})
			continue
		}

		// fallback tier: nearest center among tracks missed exactly one
		// frame, for objects that moved too far for any IoU overlap
		best = -1
		bestDist := float32(nnDistanceCap)

		for ti := range tracks {
			if used[ti] || tracks[ti].state == StateDying ||
				tracks[ti].missedFrames != 1 {
				continue
			}

			dist := CenterDistance(dets[di].Rect, tracks[ti].rect)

			if dist < bestDist {
				best = ti
				bestDist = dist
			}
		}

		if best != -1 {
			used[best] = true
			pairs = append(pairs, matchPair{det: di, track: best, quality: 0})
		}
	}

	return pairs
}
