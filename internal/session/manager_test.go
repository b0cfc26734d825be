package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/fasttrack/fasttrack/internal/flatstore"
	"github.com/fasttrack/fasttrack/internal/project"
	"github.com/fasttrack/fasttrack/internal/repository"
	"github.com/fasttrack/fasttrack/internal/repository/mocks"
	"github.com/fasttrack/fasttrack/internal/sqlite"
	"github.com/fasttrack/fasttrack/internal/timeline"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStores(t *testing.T) repository.Stores {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() {
		db.Close()
	})

	return repository.Stores{
		Sessions:  sqlite.NewSessionRepository(db),
		Projects:  sqlite.NewProjectRepository(db),
		Assets:    sqlite.NewAssetRepository(db),
		Snapshots: sqlite.NewSnapshotStore(db),
	}
}

// noAutoSave disables the background save loop in tests
var noAutoSave = Options{AutoSaveInterval: -1}

func TestManager_InitFreshProject(t *testing.T) {
	stores := newTestStores(t)
	m := NewManager(stores, nil, nil, testLogger(), noAutoSave)

	p, err := m.Init(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, StateActive, m.State())
	require.Equal(t, p.ID, m.SessionID())

	require.NotNil(t, p.Timeline.Track("v1"))
	require.NotNil(t, p.Timeline.Track("a1"))
}

func TestManager_InitTwiceFails(t *testing.T) {
	stores := newTestStores(t)
	m := NewManager(stores, nil, nil, testLogger(), noAutoSave)

	_, err := m.Init(context.Background(), "")
	require.NoError(t, err)
	_, err = m.Init(context.Background(), "")
	require.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestManager_InitRequestedMissingFallsBackToMostRecent(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	seed := NewManager(stores, nil, nil, testLogger(), noAutoSave)
	p, err := seed.Init(ctx, "existing")
	require.NoError(t, err)
	p.Name = "Existing Cut"
	require.NoError(t, seed.Close(ctx))

	// An unknown requested id falls through to the stored session
	// instead of shadowing it with a fresh project.
	m := NewManager(stores, nil, nil, testLogger(), noAutoSave)
	restored, err := m.Init(ctx, "no-such-session")
	require.NoError(t, err)
	require.Equal(t, "existing", restored.ID)
	require.Equal(t, "Existing Cut", restored.Name)
	require.Equal(t, "existing", m.SessionID())
}

func TestManager_InitRequestedMissingEmptyStoreStartsFresh(t *testing.T) {
	stores := newTestStores(t)
	m := NewManager(stores, nil, nil, testLogger(), noAutoSave)

	p, err := m.Init(context.Background(), "wanted-session")
	require.NoError(t, err)
	require.Equal(t, "wanted-session", p.ID)
	require.Equal(t, "wanted-session", m.SessionID())
}

func TestManager_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	m := NewManager(stores, nil, nil, testLogger(), noAutoSave)
	p, err := m.Init(ctx, "")
	require.NoError(t, err)

	videoAsset := p.AddAsset(timeline.MediaVideo, "beach.mp4", "video/mp4", []byte("video-bytes"))
	audioAsset := p.AddAsset(timeline.MediaAudio, "waves.mp3", "audio/mpeg", []byte("audio-bytes"))

	v1 := p.Timeline.Track("v1")
	c1 := timeline.NewClip("asset:"+videoAsset, "Beach A", timeline.MediaVideo, 10)
	require.NoError(t, c1.Move(0))
	v1.AddClip(c1)
	c2 := timeline.NewClip("asset:"+videoAsset, "Beach B", timeline.MediaVideo, 8)
	require.NoError(t, c2.Move(10))
	v1.AddClip(c2)

	a1 := p.Timeline.Track("a1")
	c3 := timeline.NewClip("asset:"+audioAsset, "Waves", timeline.MediaAudio, 18)
	require.NoError(t, c3.Move(0))
	a1.AddClip(c3)

	require.NoError(t, m.Save(ctx))

	// A second manager over the same stores restores the saved session.
	m2 := NewManager(stores, nil, nil, testLogger(), noAutoSave)
	restored, err := m2.Init(ctx, "")
	require.NoError(t, err)
	require.Equal(t, p.ID, restored.ID)

	rv1 := restored.Timeline.Track("v1")
	require.Len(t, rv1.Clips, 2)
	require.Equal(t, 0.0, rv1.Clips[0].Position)
	require.Equal(t, 10.0, rv1.Clips[0].Duration)
	require.Equal(t, 10.0, rv1.Clips[1].Position)
	require.Equal(t, 8.0, rv1.Clips[1].Duration)
	require.Len(t, restored.Timeline.Track("a1").Clips, 1)

	// Track id counters survive the round trip.
	require.Equal(t, "v2", restored.Timeline.AddTrack(timeline.TrackVideo).ID)

	// Asset payloads are reattached from the blob store.
	beach := restored.Assets.Lookup(videoAsset)
	require.NotNil(t, beach)
	require.Equal(t, []byte("video-bytes"), beach.Data)
	waves := restored.Assets.Lookup(audioAsset)
	require.NotNil(t, waves)
	require.Equal(t, []byte("audio-bytes"), waves.Data)
}

func TestManager_RepeatedSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	m := NewManager(stores, nil, nil, testLogger(), noAutoSave)
	_, err := m.Init(ctx, "")
	require.NoError(t, err)

	require.NoError(t, m.Save(ctx))
	require.NoError(t, m.Save(ctx))
	require.NoError(t, m.Save(ctx))

	list, err := m.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestManager_CleanupOldSessions(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 1; i <= 25; i++ {
		saved := base.Add(time.Duration(i) * time.Minute)
		id := fmt.Sprintf("session-%02d", i)
		err := stores.Snapshots.SaveSnapshot(ctx, &repository.Snapshot{
			Session: repository.SessionRecord{
				SessionID:    id,
				ProjectID:    id,
				Name:         id,
				Timestamp:    saved,
				LastModified: saved,
			},
			ProjectDoc: []byte(`{}`),
		})
		require.NoError(t, err)
	}

	m := NewManager(stores, nil, nil, testLogger(), noAutoSave)
	deleted, err := m.CleanupOldSessions(ctx, 20)
	require.NoError(t, err)
	require.Equal(t, 5, deleted)

	list, err := m.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 20)
	for _, rec := range list {
		// The five oldest sessions are the ones removed.
		require.Greater(t, rec.SessionID, "session-05")
	}
}

func TestManager_CleanupSparesActiveSession(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	m := NewManager(stores, nil, nil, testLogger(), noAutoSave)
	_, err := m.Init(ctx, "")
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx))

	// Bury the active session under newer ones.
	base := time.Now().UTC().Add(time.Hour)
	for i := 1; i <= 3; i++ {
		saved := base.Add(time.Duration(i) * time.Minute)
		id := fmt.Sprintf("newer-%d", i)
		err := stores.Snapshots.SaveSnapshot(ctx, &repository.Snapshot{
			Session:    repository.SessionRecord{SessionID: id, ProjectID: id, Name: id, Timestamp: saved, LastModified: saved},
			ProjectDoc: []byte(`{}`),
		})
		require.NoError(t, err)
	}

	deleted, err := m.CleanupOldSessions(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	list, err := m.ListSessions(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, rec := range list {
		ids = append(ids, rec.SessionID)
	}
	require.Contains(t, ids, m.SessionID())
}

func TestManager_Observers(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	m := NewManager(stores, nil, nil, testLogger(), noAutoSave)
	_, err := m.Init(ctx, "")
	require.NoError(t, err)

	var events []Event
	handle := m.Subscribe(func(ev Event) {
		events = append(events, ev)
	})

	require.NoError(t, m.Save(ctx))
	require.Len(t, events, 1)
	require.Equal(t, EventSaved, events[0].Type)
	require.Equal(t, m.SessionID(), events[0].SessionID)

	m.Unsubscribe(handle)
	require.NoError(t, m.Save(ctx))
	require.Len(t, events, 1)
}

func TestManager_SaveAfterCloseIsNoOp(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	m := NewManager(stores, nil, nil, testLogger(), noAutoSave)
	p, err := m.Init(ctx, "")
	require.NoError(t, err)
	require.NoError(t, m.Close(ctx))
	require.Equal(t, StateDestroyed, m.State())

	// Close performed the final save.
	list, err := m.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, p.ID, list[0].SessionID)

	require.NoError(t, m.Save(ctx))
	require.Len(t, list, 1)
}

func TestManager_DeleteSession(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	m := NewManager(stores, nil, nil, testLogger(), noAutoSave)
	_, err := m.Init(ctx, "")
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx))

	require.NoError(t, m.DeleteSession(ctx, m.SessionID()))
	list, err := m.ListSessions(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	// The in-memory project is untouched.
	require.NotNil(t, m.Project())

	require.ErrorIs(t, m.DeleteSession(ctx, "missing"), repository.ErrNotFound)
}

func TestManager_FlatStoreFallbackOnSave(t *testing.T) {
	ctx := context.Background()

	snapshots := new(mocks.SnapshotStore)
	snapshots.On("SaveSnapshot", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: disk gone", repository.ErrPersistence))
	sessions := new(mocks.SessionRepository)
	sessions.On("MostRecent", mock.Anything).Return(nil, repository.ErrNotFound)

	flat, err := flatstore.New(t.TempDir())
	require.NoError(t, err)

	stores := repository.Stores{Sessions: sessions, Snapshots: snapshots}
	m := NewManager(stores, flat, nil, testLogger(), noAutoSave)
	p, err := m.Init(ctx, "")
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx))

	// The snapshot landed in the flat store under the session key.
	data, err := flat.Get("fasttrack_session_" + p.ID)
	require.NoError(t, err)
	require.Contains(t, string(data), p.ID)
	snapshots.AssertExpectations(t)
}

func TestManager_FlatStoreFallbackOnLoad(t *testing.T) {
	ctx := context.Background()

	snapshots := new(mocks.SnapshotStore)
	snapshots.On("SaveSnapshot", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: disk gone", repository.ErrPersistence))
	sessions := new(mocks.SessionRepository)
	sessions.On("MostRecent", mock.Anything).Return(nil, repository.ErrNotFound)
	sessions.On("Get", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: disk gone", repository.ErrPersistence))

	flat, err := flatstore.New(t.TempDir())
	require.NoError(t, err)

	stores := repository.Stores{Sessions: sessions, Snapshots: snapshots}
	m := NewManager(stores, flat, nil, testLogger(), noAutoSave)
	p, err := m.Init(ctx, "")
	require.NoError(t, err)
	p.Name = "Degraded Cut"
	require.NoError(t, m.Save(ctx))

	loaded, err := m.Load(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Degraded Cut", loaded.Name)
}

func TestManager_ImportProject(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	m := NewManager(stores, nil, nil, testLogger(), noAutoSave)
	p, err := m.Init(ctx, "")
	require.NoError(t, err)
	p.Name = "Original Cut"
	data, _, err := project.Export(p)
	require.NoError(t, err)
	originalSession := m.SessionID()

	imported, err := m.ImportProject(ctx, data)
	require.NoError(t, err)
	require.Equal(t, "Original Cut", imported.Name)
	require.Equal(t, imported.ID, m.SessionID())
	require.Equal(t, originalSession, imported.ID)

	// The import was saved immediately.
	list, err := m.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = m.ImportProject(ctx, []byte(`{"export_format":"other"}`))
	require.ErrorIs(t, err, project.ErrDeserialization)
}

type fixedThumbnailer struct {
	data []byte
}

func (f *fixedThumbnailer) Thumbnail(ctx context.Context, projectID string) ([]byte, error) {
	return f.data, nil
}

func TestManager_SaveIncludesThumbnail(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	thumbs := &fixedThumbnailer{data: []byte("png-bytes")}
	m := NewManager(stores, nil, thumbs, testLogger(), noAutoSave)
	_, err := m.Init(ctx, "")
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx))

	list, err := m.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, []byte("png-bytes"), list[0].Thumbnail)
}
