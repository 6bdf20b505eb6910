package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gonum.org/v1/gonum/spatial/r2"

	tracklet "github.com/visiontk/go-tracklet"
	"github.com/visiontk/go-tracklet/zone"
)

// Settings holds the trackd configuration, populated from the config
// file, environment and command line flags via viper.  Flags take
// precedence over the config file, the config file over the defaults.
type Settings struct {
	// Source is a video file or stream URL; when empty the camera at
	// Device is used instead
	Source string `mapstructure:"source"`
	// Device is the camera device id
	Device int `mapstructure:"device"`
	// Addr is the HTTP listen address
	Addr string `mapstructure:"addr"`
	// Database is the SQLite event log path
	Database string `mapstructure:"database"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`

	Tracker struct {
		IoUThreshold       float64 `mapstructure:"iou_threshold"`
		SmoothingAlpha     float64 `mapstructure:"smoothing_alpha"`
		MinFramesToConfirm int     `mapstructure:"min_frames_to_confirm"`
		MaxMissedFrames    int     `mapstructure:"max_missed_frames"`
		MaxJumpDistance    float64 `mapstructure:"max_jump_distance"`
	} `mapstructure:"tracker"`

	Motion struct {
		// MinArea is the smallest motion contour, in pixels, kept as a
		// detection
		MinArea float64 `mapstructure:"min_area"`
	} `mapstructure:"motion"`

	// Zones are the optional inclusion/exclusion polygons; config file only
	Zones []ZoneSetting `mapstructure:"zones"`
	// ZoneMinCoverage is the area fraction a zone must cover to claim a
	// detection
	ZoneMinCoverage float64 `mapstructure:"zone_min_coverage"`

	MQTT struct {
		// Broker enables event publishing when non-empty, eg
		// tcp://localhost:1883
		Broker      string `mapstructure:"broker"`
		ClientID    string `mapstructure:"client_id"`
		TopicPrefix string `mapstructure:"topic_prefix"`
		Username    string `mapstructure:"username"`
		Password    string `mapstructure:"password"`
	} `mapstructure:"mqtt"`

	Thumbs struct {
		Width  int           `mapstructure:"width"`
		Height int           `mapstructure:"height"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"thumbs"`
}

// ZoneSetting is one polygon zone from the config file.  Polygon points
// are x,y pairs in normalised bottom-left coordinates.
type ZoneSetting struct {
	Name    string      `mapstructure:"name"`
	Exclude bool        `mapstructure:"exclude"`
	Polygon [][]float64 `mapstructure:"polygon"`
}

// setDefaults seeds viper with the default configuration.  Call before
// flags are defined so flag defaults and config defaults agree.
func setDefaults() {

	viper.SetDefault("source", "")
	viper.SetDefault("device", 0)
	viper.SetDefault("addr", ":8080")
	viper.SetDefault("database", "trackd.db")
	viper.SetDefault("log_level", "info")

	def := tracklet.DefaultConfig()
	viper.SetDefault("tracker.iou_threshold", float64(def.IoUThreshold))
	viper.SetDefault("tracker.smoothing_alpha", float64(def.SmoothingAlpha))
	viper.SetDefault("tracker.min_frames_to_confirm", def.MinFramesToConfirm)
	viper.SetDefault("tracker.max_missed_frames", def.MaxMissedFrames)
	viper.SetDefault("tracker.max_jump_distance", float64(def.MaxJumpDistance))

	viper.SetDefault("motion.min_area", 400.0)

	viper.SetDefault("zone_min_coverage", float64(zone.DefaultMinCoverage))

	viper.SetDefault("mqtt.broker", "")
	viper.SetDefault("mqtt.client_id", "trackd")
	viper.SetDefault("mqtt.topic_prefix", "tracklet")

	viper.SetDefault("thumbs.width", 160)
	viper.SetDefault("thumbs.height", 120)
	viper.SetDefault("thumbs.ttl", time.Minute)
}

// loadSettings reads the optional trackd.yaml config file and unmarshals
// the merged configuration
func loadSettings() (*Settings, error) {

	viper.SetConfigName("trackd")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "trackd"))
	}

	if err := viper.ReadInConfig(); err != nil {
		// the config file is optional; flags and defaults still apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var settings Settings

	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &settings, nil
}

// trackerConfig converts the tracker settings to a tracklet Config
func (s *Settings) trackerConfig() tracklet.Config {
	return tracklet.Config{
		IoUThreshold:       float32(s.Tracker.IoUThreshold),
		SmoothingAlpha:     float32(s.Tracker.SmoothingAlpha),
		MinFramesToConfirm: s.Tracker.MinFramesToConfirm,
		MaxMissedFrames:    s.Tracker.MaxMissedFrames,
		MaxJumpDistance:    float32(s.Tracker.MaxJumpDistance),
	}
}

// zoneSet builds the zone filter from the configured polygons.  Polygons
// with fewer than three points are dropped.
func (s *Settings) zoneSet() *zone.Set {

	zones := make([]zone.Zone, 0, len(s.Zones))

	for _, zs := range s.Zones {

		if len(zs.Polygon) < 3 {
			continue
		}

		poly := make([]r2.Vec, 0, len(zs.Polygon))

		for _, pt := range zs.Polygon {
			if len(pt) != 2 {
				continue
			}
			poly = append(poly, r2.Vec{X: pt[0], Y: pt[1]})
		}

		if len(poly) < 3 {
			continue
		}

		zones = append(zones, zone.Zone{
			Name:    zs.Name,
			Exclude: zs.Exclude,
			Polygon: poly,
		})
	}

	return zone.NewSet(float32(s.ZoneMinCoverage), zones...)
}
