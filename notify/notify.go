/*
Package notify publishes tracker lifecycle events to an MQTT broker so
external systems can react to objects appearing and disappearing without
polling the tracking service.  Each event is a small JSON envelope
published on a per event type topic.
*/
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	tracklet "github.com/visiontk/go-tracklet"
)

// Event type values used in envelopes and topic names
const (
	TypeAppeared  = "appeared"
	TypeConfirmed = "confirmed"
	TypeLost      = "lost"
)

// Config holds the MQTT publisher settings
type Config struct {
	// Broker is the broker URL, eg tcp://localhost:1883
	Broker string
	// ClientID identifies this publisher to the broker
	ClientID string
	// TopicPrefix is prepended to the per event type topic, eg a prefix
	// of "tracklet" publishes confirmations on "tracklet/confirmed"
	TopicPrefix string
	// Username and Password are the broker credentials, empty for none
	Username string
	Password string
	// ConnectTimeout bounds how long Connect waits for the broker
	ConnectTimeout time.Duration
	// PublishTimeout bounds how long each publish waits for delivery
	PublishTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable default values
func DefaultConfig() Config {
	return Config{
		ClientID:       "tracklet",
		TopicPrefix:    "tracklet",
		ConnectTimeout: 30 * time.Second,
		PublishTimeout: 10 * time.Second,
	}
}

// Rect is the bounding box carried by confirmed event envelopes
type Rect struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	W float32 `json:"w"`
	H float32 `json:"h"`
}

// Envelope is the JSON message published for one lifecycle event.  Rect
// is only present on confirmed events.
type Envelope struct {
	Session string    `json:"session"`
	Frame   int       `json:"frame"`
	Type    string    `json:"type"`
	TrackID int       `json:"track_id"`
	Rect    *Rect     `json:"rect,omitempty"`
	Time    time.Time `json:"time"`
}

// NewEnvelope builds the publishable envelope for one lifecycle event
func NewEnvelope(sessionID string, frame int, ev tracklet.Event, at time.Time) Envelope {

	env := Envelope{
		Session: sessionID,
		Frame:   frame,
		TrackID: ev.EventTrackID(),
		Time:    at,
	}

	switch ev := ev.(type) {
	case tracklet.Appeared:
		env.Type = TypeAppeared

	case tracklet.Confirmed:
		env.Type = TypeConfirmed
		env.Rect = &Rect{
			X: ev.Rect.X(),
			Y: ev.Rect.Y(),
			W: ev.Rect.Width(),
			H: ev.Rect.Height(),
		}

	case tracklet.Lost:
		env.Type = TypeLost
	}

	return env
}

// Topic returns the full topic the envelope publishes on
func (e Envelope) Topic(prefix string) string {
	return prefix + "/" + e.Type
}

// Client defines the interface for publishing lifecycle events.  The
// interface exists so the tracking pipeline can run with notification
// disabled or faked in tests.
type Client interface {
	// Connect attempts to connect to the MQTT broker
	Connect(ctx context.Context) error

	// PublishEvents publishes one envelope per event
	PublishEvents(ctx context.Context, sessionID string, frame int,
		events []tracklet.Event) error

	// IsConnected reports whether the client currently holds a broker
	// connection
	IsConnected() bool

	// Disconnect closes the connection to the MQTT broker
	Disconnect()
}

// client implements Client on the paho MQTT library
type client struct {
	cfg      Config
	internal mqtt.Client
}

// NewClient creates an MQTT publisher with the provided configuration.
// No connection is made until Connect is called.
func NewClient(cfg Config) Client {

	def := DefaultConfig()

	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = def.ConnectTimeout
	}

	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = def.PublishTimeout
	}

	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = def.TopicPrefix
	}

	return &client{cfg: cfg}
}

// Connect attempts to establish a connection to the configured broker
func (c *client) Connect(ctx context.Context) error {

	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.cfg.Broker)
	opts.SetClientID(c.cfg.ClientID)
	opts.SetUsername(c.cfg.Username)
	opts.SetPassword(c.cfg.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)

	c.internal = mqtt.NewClient(opts)

	token := c.internal.Connect()

	if !token.WaitTimeout(c.cfg.ConnectTimeout) {
		return fmt.Errorf("connection timeout to broker %s", c.cfg.Broker)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}

	// honour a context cancelled while we were waiting
	if err := ctx.Err(); err != nil {
		c.Disconnect()
		return err
	}

	return nil
}

// PublishEvents publishes one envelope per event on the per type topic.
// Publishing stops at the first delivery failure.
func (c *client) PublishEvents(ctx context.Context, sessionID string,
	frame int, events []tracklet.Event) error {

	if len(events) == 0 {
		return nil
	}

	if !c.IsConnected() {
		return fmt.Errorf("not connected to MQTT broker")
	}

	for _, ev := range events {

		if err := ctx.Err(); err != nil {
			return err
		}

		env := NewEnvelope(sessionID, frame, ev, time.Now().UTC())

		payload, err := json.Marshal(env)

		if err != nil {
			return fmt.Errorf("error encoding event envelope: %w", err)
		}

		token := c.internal.Publish(env.Topic(c.cfg.TopicPrefix), 0, false, payload)

		if !token.WaitTimeout(c.cfg.PublishTimeout) {
			return fmt.Errorf("publish timeout on topic %s",
				env.Topic(c.cfg.TopicPrefix))
		}

		if err := token.Error(); err != nil {
			return fmt.Errorf("publish error: %w", err)
		}
	}

	return nil
}

// IsConnected reports whether the client currently holds a broker
// connection
func (c *client) IsConnected() bool {
	return c.internal != nil && c.internal.IsConnected()
}

// Disconnect closes the connection to the MQTT broker
func (c *client) Disconnect() {
	if c.internal != nil && c.internal.IsConnected() {
		c.internal.Disconnect(250)
	}
}
