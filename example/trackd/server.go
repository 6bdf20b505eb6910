package main

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/visiontk/go-tracklet/crop"
	"github.com/visiontk/go-tracklet/store"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// Server exposes the HTTP surface: the annotated MJPEG stream, track and
// event queries, per track thumbnails, health and Prometheus metrics
type Server struct {
	echo     *echo.Echo
	pipeline *Pipeline
	events   *store.Store
	cropper  *crop.Cropper
	logger   *slog.Logger
}

// newServer builds the router around the pipeline and its stores
func newServer(pipeline *Pipeline, events *store.Store, cropper *crop.Cropper,
	registry *prometheus.Registry, logger *slog.Logger) *Server {

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:     e,
		pipeline: pipeline,
		events:   events,
		cropper:  cropper,
		logger:   logger,
	}

	e.GET("/stream", s.stream)
	e.GET("/api/tracks", s.tracks)
	e.GET("/api/events/recent", s.recentEvents)
	e.GET("/api/events/stats", s.eventStats)
	e.GET("/api/thumb/:id", s.thumb)
	e.GET("/healthz", s.healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry,
		promhttp.HandlerOpts{Registry: registry})))

	return s
}

// Start listens on addr and serves until Shutdown is called
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the server, waiting for in-flight requests to finish
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// rectJSON is a bounding box in API responses, in normalised bottom-left
// coordinates
type rectJSON struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	W float32 `json:"w"`
	H float32 `json:"h"`
}

// trackJSON is one confirmed track in the tracks response
type trackJSON struct {
	ID int     `json:"id"`
	X  float32 `json:"x"`
	Y  float32 `json:"y"`
	W  float32 `json:"w"`
	H  float32 `json:"h"`
}

// tracksResponse is the GET /api/tracks payload
type tracksResponse struct {
	Session string      `json:"session"`
	Frame   int         `json:"frame"`
	Tracks  []trackJSON `json:"tracks"`
}

// eventJSON is one stored lifecycle event in the events response.  Rect
// is only present on confirmed events.
type eventJSON struct {
	ID      uint      `json:"id"`
	Session string    `json:"session"`
	Frame   int       `json:"frame"`
	TrackID int       `json:"track_id"`
	Type    string    `json:"type"`
	Rect    *rectJSON `json:"rect,omitempty"`
	Time    time.Time `json:"time"`
}

// stream serves the annotated video as an MJPEG multipart stream, the
// format browsers render as live video in a plain img tag
func (s *Server) stream(c echo.Context) error {

	ch := s.pipeline.hub.subscribe()
	defer s.pipeline.hub.unsubscribe(ch)

	s.logger.Info("stream client connected", "remote", c.RealIP())
	defer s.logger.Info("stream client disconnected", "remote", c.RealIP())

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType,
		"multipart/x-mixed-replace; boundary=frame")
	resp.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()

	for {
		select {
		case <-ctx.Done():
			return nil

		case frame := <-ch:

			if _, err := resp.Write([]byte("--frame\r\n" +
				"Content-Type: image/jpeg\r\n\r\n")); err != nil {
				return nil
			}

			if _, err := resp.Write(frame); err != nil {
				return nil
			}

			if _, err := resp.Write([]byte("\r\n")); err != nil {
				return nil
			}

			resp.Flush()
		}
	}
}

// tracks returns the confirmed tracks of the most recent frame
func (s *Server) tracks(c echo.Context) error {

	snapshot := s.pipeline.Snapshot()

	out := make([]trackJSON, 0, len(snapshot))

	for id, rect := range snapshot {
		out = append(out, trackJSON{
			ID: id,
			X:  rect.X(),
			Y:  rect.Y(),
			W:  rect.Width(),
			H:  rect.Height(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return c.JSON(http.StatusOK, tracksResponse{
		Session: s.pipeline.SessionID(),
		Frame:   s.pipeline.FrameCount(),
		Tracks:  out,
	})
}

// recentEvents returns the newest stored events, newest first.  The
// optional limit query parameter caps the row count.
func (s *Server) recentEvents(c echo.Context) error {

	limit := defaultEventLimit

	if raw := c.QueryParam("limit"); raw != "" {

		v, err := strconv.Atoi(raw)

		if err != nil || v < 1 {
			return echo.NewHTTPError(http.StatusBadRequest,
				"limit must be a positive integer")
		}

		limit = min(v, maxEventLimit)
	}

	rows, err := s.events.RecentEvents(limit)

	if err != nil {
		s.logger.Error("error querying recent events", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError,
			"error querying events")
	}

	out := make([]eventJSON, 0, len(rows))

	for _, row := range rows {

		ev := eventJSON{
			ID:      row.ID,
			Session: row.SessionID,
			Frame:   row.FrameIndex,
			TrackID: row.TrackID,
			Type:    row.Type,
			Time:    row.CreatedAt,
		}

		if row.Type == store.TypeConfirmed {
			ev.Rect = &rectJSON{X: row.X, Y: row.Y, W: row.W, H: row.H}
		}

		out = append(out, ev)
	}

	return c.JSON(http.StatusOK, out)
}

// eventStats returns per type event counts for the current session
func (s *Server) eventStats(c echo.Context) error {

	counts, err := s.events.CountByType(s.pipeline.SessionID())

	if err != nil {
		s.logger.Error("error counting events", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError,
			"error counting events")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"session": s.pipeline.SessionID(),
		"counts":  counts,
	})
}

// thumb returns the most recent JPEG thumbnail for a track id
func (s *Server) thumb(c echo.Context) error {

	id, err := strconv.Atoi(c.Param("id"))

	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest,
			"track id must be an integer")
	}

	data, ok := s.cropper.Get(id)

	if !ok {
		return echo.NewHTTPError(http.StatusNotFound,
			"no thumbnail for track")
	}

	return c.Blob(http.StatusOK, "image/jpeg", data)
}

// healthz reports liveness along with basic pipeline counters
func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"session": s.pipeline.SessionID(),
		"frames":  s.pipeline.FrameCount(),
		"viewers": s.pipeline.hub.count(),
	})
}
