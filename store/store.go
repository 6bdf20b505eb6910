/*
Package store persists tracker lifecycle events to SQLite.  Each Appeared,
Confirmed and Lost event becomes one row keyed by capture session and
frame index, giving a queryable history of what was tracked and when
without keeping any tracker state itself.
*/
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	tracklet "github.com/visiontk/go-tracklet"
)

// Event type values stored in the Type column
const (
	TypeAppeared  = "appeared"
	TypeConfirmed = "confirmed"
	TypeLost      = "lost"
)

// TrackEvent is one persisted lifecycle event.  Confirmed rows carry the
// smoothed geometry at confirmation time; Appeared and Lost rows have no
// geometry of their own and leave the rectangle columns zero.
type TrackEvent struct {
	ID         uint   `gorm:"primaryKey"`
	SessionID  string `gorm:"index:idx_track_events_session"`
	FrameIndex int
	TrackID    int
	Type       string `gorm:"index:idx_track_events_type"`
	X          float32
	Y          float32
	W          float32
	H          float32
	CreatedAt  time.Time `gorm:"index"`
}

// Store is a SQLite backed event log
type Store struct {
	db *gorm.DB
}

// Open opens or creates the SQLite database at the given path and
// migrates the schema.  Use ":memory:" for a throwaway in-memory store.
func Open(path string) (*Store, error) {

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		return nil, fmt.Errorf("error opening event store %s: %w", path, err)
	}

	if err := db.AutoMigrate(&TrackEvent{}); err != nil {
		return nil, fmt.Errorf("error migrating event store schema: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveEvents writes one row per lifecycle event for the given session and
// frame.  An empty event slice is a no-op.
func (s *Store) SaveEvents(sessionID string, frame int, events []tracklet.Event) error {

	if len(events) == 0 {
		return nil
	}

	rows := make([]TrackEvent, 0, len(events))

	for _, ev := range events {

		row := TrackEvent{
			SessionID:  sessionID,
			FrameIndex: frame,
			TrackID:    ev.EventTrackID(),
		}

		switch ev := ev.(type) {
		case tracklet.Appeared:
			row.Type = TypeAppeared

		case tracklet.Confirmed:
			row.Type = TypeConfirmed
			row.X = ev.Rect.X()
			row.Y = ev.Rect.Y()
			row.W = ev.Rect.Width()
			row.H = ev.Rect.Height()

		case tracklet.Lost:
			row.Type = TypeLost

		default:
			return fmt.Errorf("unhandled event type %T", ev)
		}

		rows = append(rows, row)
	}

	if err := s.db.Create(&rows).Error; err != nil {
		return fmt.Errorf("error saving track events: %w", err)
	}

	return nil
}

// RecentEvents returns up to limit events, newest first
func (s *Store) RecentEvents(limit int) ([]TrackEvent, error) {

	var rows []TrackEvent

	err := s.db.Order("id desc").Limit(limit).Find(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("error querying recent events: %w", err)
	}

	return rows, nil
}

// SessionEvents returns all events of one capture session in insert order
func (s *Store) SessionEvents(sessionID string) ([]TrackEvent, error) {

	var rows []TrackEvent

	err := s.db.Where("session_id = ?", sessionID).
		Order("id asc").Find(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("error querying session events: %w", err)
	}

	return rows, nil
}

// CountByType returns the number of events of each type recorded for the
// session.  Types with no events are absent from the map.
func (s *Store) CountByType(sessionID string) (map[string]int64, error) {

	var rows []struct {
		Type  string
		Count int64
	}

	err := s.db.Model(&TrackEvent{}).
		Select("type, count(*) as count").
		Where("session_id = ?", sessionID).
		Group("type").
		Find(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("error counting events by type: %w", err)
	}

	counts := make(map[string]int64, len(rows))

	for _, row := range rows {
		counts[row.Type] = row.Count
	}

	return counts, nil
}

// Close releases the underlying database handle
func (s *Store) Close() error {

	sqlDB, err := s.db.DB()

	if err != nil {
		return fmt.Errorf("error getting database handle: %w", err)
	}

	return sqlDB.Close()
}
