package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tracklet "github.com/visiontk/go-tracklet"
)

func setupStore(t *testing.T) *Store {

	t.Helper()

	s, err := Open(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

func TestSaveAndQueryEvents(t *testing.T) {

	s := setupStore(t)

	session := "cam-1"

	require.NoError(t, s.SaveEvents(session, 1, []tracklet.Event{
		tracklet.Appeared{ID: 0},
	}))

	require.NoError(t, s.SaveEvents(session, 2, []tracklet.Event{
		tracklet.Confirmed{ID: 0, Rect: tracklet.NewRect(0.25, 0.25, 0.5, 0.5)},
		tracklet.Appeared{ID: 1},
	}))

	require.NoError(t, s.SaveEvents(session, 5, []tracklet.Event{
		tracklet.Lost{ID: 0},
	}))

	rows, err := s.SessionEvents(session)
	require.NoError(t, err)

	want := []TrackEvent{
		{SessionID: session, FrameIndex: 1, TrackID: 0, Type: TypeAppeared},
		{SessionID: session, FrameIndex: 2, TrackID: 0, Type: TypeConfirmed,
			X: 0.25, Y: 0.25, W: 0.5, H: 0.5},
		{SessionID: session, FrameIndex: 2, TrackID: 1, Type: TypeAppeared},
		{SessionID: session, FrameIndex: 5, TrackID: 0, Type: TypeLost},
	}

	ignore := cmpopts.IgnoreFields(TrackEvent{}, "ID", "CreatedAt")

	if diff := cmp.Diff(want, rows, ignore); diff != "" {
		t.Errorf("session events mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveEventsEmpty(t *testing.T) {

	s := setupStore(t)

	require.NoError(t, s.SaveEvents("cam-1", 1, nil))

	rows, err := s.RecentEvents(10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRecentEventsNewestFirst(t *testing.T) {

	s := setupStore(t)

	for frame := 1; frame <= 5; frame++ {
		require.NoError(t, s.SaveEvents("cam-1", frame, []tracklet.Event{
			tracklet.Appeared{ID: frame},
		}))
	}

	rows, err := s.RecentEvents(3)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 5, rows[0].FrameIndex)
	assert.Equal(t, 4, rows[1].FrameIndex)
	assert.Equal(t, 3, rows[2].FrameIndex)
}

func TestCountByType(t *testing.T) {

	s := setupStore(t)

	require.NoError(t, s.SaveEvents("cam-1", 1, []tracklet.Event{
		tracklet.Appeared{ID: 0},
		tracklet.Appeared{ID: 1},
	}))

	require.NoError(t, s.SaveEvents("cam-1", 3, []tracklet.Event{
		tracklet.Confirmed{ID: 0, Rect: tracklet.NewRect(0, 0, 0.1, 0.1)},
		tracklet.Lost{ID: 1},
	}))

	// a second session must not bleed into the first session's counts
	require.NoError(t, s.SaveEvents("cam-2", 1, []tracklet.Event{
		tracklet.Appeared{ID: 0},
	}))

	counts, err := s.CountByType("cam-1")
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{
		TypeAppeared:  2,
		TypeConfirmed: 1,
		TypeLost:      1,
	}, counts)
}
