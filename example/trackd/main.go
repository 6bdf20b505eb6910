/*
trackd is a motion tracking service.  It captures a camera or video file,
tracks moving objects through zone filters, and serves the annotated
MJPEG stream alongside a JSON API, Prometheus metrics, a SQLite event
log, per track thumbnails and optional MQTT event publishing.

	GET /stream             annotated MJPEG video
	GET /api/tracks         confirmed tracks of the latest frame
	GET /api/events/recent  stored lifecycle events, newest first
	GET /api/events/stats   per type event counts for this session
	GET /api/thumb/:id      JPEG thumbnail of one track
	GET /healthz            liveness and pipeline counters
	GET /metrics            Prometheus metrics

Configuration comes from flags, a trackd.yaml config file, or both, with
flags taking precedence.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	tracklet "github.com/visiontk/go-tracklet"
	"github.com/visiontk/go-tracklet/crop"
	"github.com/visiontk/go-tracklet/detect"
	"github.com/visiontk/go-tracklet/metrics"
	"github.com/visiontk/go-tracklet/notify"
	"github.com/visiontk/go-tracklet/store"
	"github.com/visiontk/go-tracklet/video"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootCommand builds the trackd command with its flags bound to viper
func rootCommand() *cobra.Command {

	setDefaults()

	rootCmd := &cobra.Command{
		Use:          "trackd",
		Short:        "Motion tracking service with stream, API, event log and metrics",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd)
		},
		RunE: run,
	}

	def := tracklet.DefaultConfig()

	flags := rootCmd.Flags()
	flags.StringP("source", "s", "", "video file or stream URL; empty uses the camera device")
	flags.IntP("device", "d", 0, "camera device id used when no source is given")
	flags.StringP("addr", "a", ":8080", "HTTP listen address")
	flags.String("db", "trackd.db", "SQLite event log path")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.Float64("iou", float64(def.IoUThreshold), "IoU threshold for matching detections to tracks")
	flags.Float64("alpha", float64(def.SmoothingAlpha), "smoothing weight given to each new detection")
	flags.Int("confirm", def.MinFramesToConfirm, "consecutive frames before a track is confirmed")
	flags.Int("max-missed", def.MaxMissedFrames, "missed frames tolerated before a track is dropped")
	flags.Float64("max-jump", float64(def.MaxJumpDistance), "per component movement that resets smoothing")
	flags.Float64("min-area", 400, "smallest motion contour kept, in pixels")
	flags.String("mqtt-broker", "", "MQTT broker URL; enables event publishing")
	flags.String("mqtt-topic", "tracklet", "MQTT topic prefix")

	return rootCmd
}

// bindFlags wires each command line flag to its viper config key
func bindFlags(cmd *cobra.Command) error {

	flags := cmd.Flags()

	for key, name := range map[string]string{
		"source":                        "source",
		"device":                        "device",
		"addr":                          "addr",
		"database":                      "db",
		"log_level":                     "log-level",
		"tracker.iou_threshold":         "iou",
		"tracker.smoothing_alpha":       "alpha",
		"tracker.min_frames_to_confirm": "confirm",
		"tracker.max_missed_frames":     "max-missed",
		"tracker.max_jump_distance":     "max-jump",
		"motion.min_area":               "min-area",
		"mqtt.broker":                   "mqtt-broker",
		"mqtt.topic_prefix":             "mqtt-topic",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}

	return nil
}

// run loads the configuration, assembles the service and blocks until
// shutdown
func run(cmd *cobra.Command, args []string) error {

	settings, err := loadSettings()

	if err != nil {
		return err
	}

	logger := newLogger(settings.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx, settings, logger)

	if err != nil {
		return err
	}

	defer svc.Close()

	return svc.Run(ctx)
}

// newLogger builds a JSON logger at the configured level
func newLogger(level string) *slog.Logger {

	var lvl slog.Level

	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
}

// service bundles the pipeline, its stores and the HTTP server
type service struct {
	settings *Settings
	logger   *slog.Logger
	session  *video.Session
	pipeline *Pipeline
	server   *Server
	events   *store.Store
	cropper  *crop.Cropper
	notifier notify.Client
}

// newService opens every component described by the settings.  A broker
// that cannot be reached disables publishing rather than failing the
// whole service.
func newService(ctx context.Context, settings *Settings,
	logger *slog.Logger) (*service, error) {

	events, err := store.Open(settings.Database)

	if err != nil {
		return nil, err
	}

	var session *video.Session

	if settings.Source != "" {
		session, err = video.Open(settings.Source)
	} else {
		session, err = video.OpenDevice(settings.Device)
	}

	if err != nil {
		events.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()

	stats, err := metrics.NewTrackerMetrics(registry)

	if err != nil {
		session.Close()
		events.Close()
		return nil, err
	}

	cropCfg := crop.DefaultConfig()
	cropCfg.ThumbWidth = settings.Thumbs.Width
	cropCfg.ThumbHeight = settings.Thumbs.Height
	cropCfg.TTL = settings.Thumbs.TTL
	cropper := crop.New(cropCfg)

	var notifier notify.Client

	if settings.MQTT.Broker != "" {

		mqttCfg := notify.DefaultConfig()
		mqttCfg.Broker = settings.MQTT.Broker
		mqttCfg.ClientID = settings.MQTT.ClientID
		mqttCfg.TopicPrefix = settings.MQTT.TopicPrefix
		mqttCfg.Username = settings.MQTT.Username
		mqttCfg.Password = settings.MQTT.Password

		notifier = notify.NewClient(mqttCfg)

		if err := notifier.Connect(ctx); err != nil {
			logger.Error("error connecting to MQTT broker, publishing disabled",
				"broker", settings.MQTT.Broker, "error", err)
			notifier = nil
		}
	}

	motionCfg := detect.DefaultMotionConfig()
	motionCfg.MinArea = settings.Motion.MinArea
	detector := detect.NewMotionDetector(motionCfg)

	pipeline := newPipeline(session, detector, settings.zoneSet(),
		settings.trackerConfig(), cropper, events, notifier, stats, logger)

	return &service{
		settings: settings,
		logger:   logger,
		session:  session,
		pipeline: pipeline,
		server:   newServer(pipeline, events, cropper, registry, logger),
		events:   events,
		cropper:  cropper,
		notifier: notifier,
	}, nil
}

// Run starts the pipeline and the HTTP server and blocks until the
// context is cancelled or the server fails.  The API outlives a finished
// video source so stored events stay queryable until shutdown.
func (s *service) Run(ctx context.Context) error {

	pctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pipeDone := make(chan struct{})

	go func() {
		defer close(pipeDone)

		if err := s.pipeline.Run(pctx); err != nil &&
			!errors.Is(err, context.Canceled) {
			s.logger.Error("pipeline stopped", "error", err)
			return
		}

		s.logger.Info("pipeline finished", "frames", s.pipeline.FrameCount())
	}()

	httpErr := make(chan error, 1)

	go func() {
		httpErr <- s.server.Start(s.settings.Addr)
	}()

	s.logger.Info("trackd started",
		"addr", s.settings.Addr,
		"session", s.pipeline.SessionID(),
		"database", s.settings.Database)

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")

	case err := <-httpErr:
		cancel()
		<-pipeDone

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}

		return nil
	}

	cancel()
	<-pipeDone

	shutCtx, shutCancel := context.WithTimeout(context.Background(),
		5*time.Second)
	defer shutCancel()

	if err := s.server.Shutdown(shutCtx); err != nil {
		s.logger.Error("error shutting down http server", "error", err)
	}

	return nil
}

// Close releases every component.  Only call after Run has returned.
func (s *service) Close() {

	s.pipeline.Close()
	s.cropper.Close()

	if s.notifier != nil {
		s.notifier.Disconnect()
	}

	if err := s.session.Close(); err != nil {
		s.logger.Error("error closing video session", "error", err)
	}

	if err := s.events.Close(); err != nil {
		s.logger.Error("error closing event store", "error", err)
	}
}
