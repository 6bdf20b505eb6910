/*
go-tracklet turns noisy, per-frame object detection rectangles into temporally
stable, identity persistent tracks suitable for UI overlay and downstream
cropping.

Detections are unreliable frame to frame: boxes jitter, appear for a single
frame as noise, or briefly disappear due to occlusion or detector misses.
The Tracker matches each frame's detections to existing tracks using a greedy
IoU policy with a nearest-center fallback, smooths matched geometry with an
exponential moving average (resetting on large jumps), and drives a
tentative/confirmed/dying lifecycle with exactly-once Appeared, Confirmed and
Lost events.

All geometry is in normalised coordinates, each component a fraction of the
frame dimension in [0,1] with the origin at the bottom left.  Adapters for
pixel space detectors, video capture, overlay rendering, zone filtering,
cropping, persistence and notification live in the subdirectories.

See example code and usage in the examples subdirectory.
*/
package tracklet
