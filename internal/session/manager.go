// Package session implements the persistence engine: it owns the active
// project, saves and restores it through the durable store, and falls
// back to a flat key/value store when the durable store is unavailable.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/fasttrack/fasttrack/internal/project"
	"github.com/fasttrack/fasttrack/internal/repository"
)

// State is the manager lifecycle state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateActive        State = "active"
	StateSaving        State = "saving"
	StateDestroyed     State = "destroyed"
)

// EventType names an observer notification.
type EventType string

const (
	EventSaved   EventType = "session_saved"
	EventLoaded  EventType = "session_loaded"
	EventDeleted EventType = "session_deleted"
	EventCleaned EventType = "sessions_cleaned"
)

// Event is delivered to subscribed observers after a lifecycle change.
type Event struct {
	Type      EventType
	SessionID string
}

const (
	// DefaultAutoSaveInterval matches the project default save cadence
	DefaultAutoSaveInterval = 30 * time.Second

	// DefaultRetain is how many sessions cleanup keeps
	DefaultRetain = 20

	// cleanupEveryNSaves runs housekeeping on auto-save cadence multiples
	cleanupEveryNSaves = 10

	flatSessionPrefix = "fasttrack_session_"
	flatIndexKey      = "fasttrack_sessions"
)

// Options tunes the manager. Zero values select the defaults; a negative
// AutoSaveInterval disables the background save loop.
type Options struct {
	AutoSaveInterval time.Duration
	Retain           int
}

// Manager coordinates the save/restore lifecycle of one active project.
type Manager struct {
	stores repository.Stores
	flat   repository.FlatStore
	thumbs ThumbnailGenerator
	logger *slog.Logger

	autoSaveInterval time.Duration
	retain           int

	mu         sync.Mutex
	state      State
	current    *project.Project
	sessionID  string
	started    time.Time
	observers  map[int]func(Event)
	nextHandle int

	stopAutoSave chan struct{}
	autoSaveDone chan struct{}
}

// NewManager creates a session manager. flat and thumbs may be nil;
// without a flat store persistence failures are surfaced to the caller,
// and without a generator sessions are saved with no thumbnail.
func NewManager(
	stores repository.Stores,
	flat repository.FlatStore,
	thumbs ThumbnailGenerator,
	logger *slog.Logger,
	opts Options,
) *Manager {
	interval := opts.AutoSaveInterval
	if interval == 0 {
		interval = DefaultAutoSaveInterval
	}
	retain := opts.Retain
	if retain <= 0 {
		retain = DefaultRetain
	}
	return &Manager{
		stores:           stores,
		flat:             flat,
		thumbs:           thumbs,
		logger:           logger,
		autoSaveInterval: interval,
		retain:           retain,
		state:            StateUninitialized,
		observers:        make(map[int]func(Event)),
	}
}

// Init brings the manager to the active state. The restore chain is:
// the requested session if it exists, otherwise the most recently
// modified session, otherwise a fresh project. The project id doubles
// as the session id.
func (m *Manager) Init(ctx context.Context, requestedID string) (*project.Project, error) {
	m.mu.Lock()
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return nil, ErrAlreadyInitialized
	}
	m.state = StateInitializing
	m.mu.Unlock()

	p, err := m.restore(ctx, requestedID)
	if err != nil {
		m.mu.Lock()
		m.state = StateUninitialized
		m.mu.Unlock()
		return nil, err
	}

	m.mu.Lock()
	m.current = p
	m.sessionID = p.ID
	m.started = time.Now()
	m.state = StateActive
	m.mu.Unlock()

	if m.autoSaveInterval > 0 {
		m.startAutoSave()
	}

	m.logger.Info("session initialized", "session_id", p.ID, "project", p.Name)
	return p, nil
}

func (m *Manager) restore(ctx context.Context, requestedID string) (*project.Project, error) {
	if requestedID != "" {
		p, err := m.load(ctx, requestedID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		m.logger.Warn("requested session not found, falling back to most recent", "session_id", requestedID)
	}

	recent, err := m.stores.Sessions.MostRecent(ctx)
	if err == nil {
		p, loadErr := m.load(ctx, recent.SessionID)
		if loadErr == nil {
			return p, nil
		}
		m.logger.Warn("restoring most recent session failed", "session_id", recent.SessionID, "error", loadErr)
	} else if !errors.Is(err, repository.ErrNotFound) {
		if p, ok := m.restoreFromFlat(); ok {
			return p, nil
		}
		return nil, err
	}

	// A requested id that matched nothing stored still names the new
	// session, so callers resuming by id converge on it.
	return project.New(requestedID, ""), nil
}

// Project returns the active project, or nil before Init.
func (m *Manager) Project() *project.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SessionID returns the active session id, empty before Init.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Save persists the active project as one atomic snapshot. After Close
// it is a no-op. When the durable store fails and a flat store is
// configured, the snapshot is written there instead.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateDestroyed {
		m.mu.Unlock()
		return nil
	}
	if m.current == nil {
		m.mu.Unlock()
		return ErrNotInitialized
	}
	prev := m.state
	m.state = StateSaving
	p := m.current
	sessionID := m.sessionID
	started := m.started
	m.mu.Unlock()

	err := m.save(ctx, p, sessionID, started)

	m.mu.Lock()
	if m.state == StateSaving {
		m.state = prev
		if m.state == StateInitializing {
			m.state = StateActive
		}
	}
	m.mu.Unlock()

	if err != nil {
		return err
	}
	m.notify(Event{Type: EventSaved, SessionID: sessionID})
	return nil
}

func (m *Manager) save(ctx context.Context, p *project.Project, sessionID string, started time.Time) error {
	p.Touch()
	doc, err := project.Serialize(p)
	if err != nil {
		return fmt.Errorf("serializing project: %w", err)
	}

	snap := &repository.Snapshot{
		Session: repository.SessionRecord{
			SessionID:    sessionID,
			ProjectID:    p.ID,
			Name:         p.Name,
			Timestamp:    started,
			LastModified: time.Now(),
		},
		ProjectDoc: doc,
	}

	if m.thumbs != nil {
		thumb, err := m.thumbs.Thumbnail(ctx, p.ID)
		if err != nil {
			m.logger.Warn("thumbnail generation failed", "session_id", sessionID, "error", err)
		} else {
			snap.Session.Thumbnail = thumb
		}
	}

	for _, asset := range p.Assets.All() {
		if asset.Data == nil {
			continue
		}
		snap.Assets = append(snap.Assets, repository.AssetRecord{
			ID:        asset.ID,
			SessionID: sessionID,
			Type:      string(asset.Type),
			Name:      asset.Name,
			MIMEType:  asset.MIMEType,
			Data:      asset.Data,
			Timestamp: asset.AddedAt,
		})
	}

	if err := m.stores.Snapshots.SaveSnapshot(ctx, snap); err != nil {
		if errors.Is(err, repository.ErrPersistence) && m.flat != nil {
			m.logger.Warn("durable save failed, using flat store", "session_id", sessionID, "error", err)
			return m.saveToFlat(snap)
		}
		return err
	}

	m.logger.Debug("session saved", "session_id", sessionID, "assets", len(snap.Assets))
	return nil
}

// Load replaces the active project with a stored session.
func (m *Manager) Load(ctx context.Context, sessionID string) (*project.Project, error) {
	m.mu.Lock()
	if m.state == StateDestroyed {
		m.mu.Unlock()
		return nil, ErrNotInitialized
	}
	m.mu.Unlock()

	p, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.current = p
	m.sessionID = sessionID
	m.started = time.Now()
	if m.state == StateUninitialized {
		m.state = StateActive
	}
	m.mu.Unlock()

	m.notify(Event{Type: EventLoaded, SessionID: sessionID})
	return p, nil
}

func (m *Manager) load(ctx context.Context, sessionID string) (*project.Project, error) {
	sess, err := m.stores.Sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrPersistence) && m.flat != nil {
			return m.loadFromFlat(sessionID)
		}
		return nil, err
	}

	doc, err := m.stores.Projects.Get(ctx, sess.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("loading project document: %w", err)
	}

	p, err := project.Deserialize(doc)
	if err != nil {
		return nil, err
	}

	assets, err := m.stores.Assets.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}
	for _, rec := range assets {
		if !p.AttachPayload(rec.ID, rec.Data) {
			m.logger.Warn("stored asset has no project entry", "session_id", sessionID, "asset_id", rec.ID)
		}
	}

	for _, id := range p.DanglingSources() {
		m.logger.Warn("clip references missing asset", "session_id", sessionID, "asset_id", id)
	}

	m.logger.Debug("session loaded", "session_id", sessionID, "assets", len(assets))
	return p, nil
}

// ImportProject parses an export document, makes it the active project
// under its own session id, and saves it. Asset references stay dangling
// until payloads are attached again.
func (m *Manager) ImportProject(ctx context.Context, data []byte) (*project.Project, error) {
	m.mu.Lock()
	if m.state == StateDestroyed {
		m.mu.Unlock()
		return nil, ErrNotInitialized
	}
	m.mu.Unlock()

	p, err := project.Import(data)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.current = p
	m.sessionID = p.ID
	m.started = time.Now()
	if m.state == StateUninitialized {
		m.state = StateActive
	}
	m.mu.Unlock()

	if err := m.Save(ctx); err != nil {
		return nil, err
	}
	m.logger.Info("project imported", "session_id", p.ID, "project", p.Name)
	return p, nil
}

// ListSessions returns all stored sessions, most recently saved first.
func (m *Manager) ListSessions(ctx context.Context) ([]repository.SessionRecord, error) {
	list, err := m.stores.Sessions.List(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrPersistence) && m.flat != nil {
			return m.listFromFlat()
		}
		return nil, err
	}
	return list, nil
}

// DeleteSession removes a stored session and everything saved with it.
// Deleting the active session is allowed; the in-memory project stays.
func (m *Manager) DeleteSession(ctx context.Context, sessionID string) error {
	if err := m.stores.Snapshots.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	if m.flat != nil {
		if err := m.flat.Remove(flatSessionPrefix + sessionID); err != nil {
			m.logger.Warn("flat store cleanup failed", "session_id", sessionID, "error", err)
		}
	}
	m.notify(Event{Type: EventDeleted, SessionID: sessionID})
	return nil
}

// CleanupOldSessions deletes all but the retain most recently modified
// sessions and returns how many were removed. retain <= 0 selects the
// configured default. The active session is never removed.
func (m *Manager) CleanupOldSessions(ctx context.Context, retain int) (int, error) {
	if retain <= 0 {
		retain = m.retain
	}

	list, err := m.stores.Sessions.List(ctx)
	if err != nil {
		return 0, err
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].LastModified.After(list[j].LastModified)
	})

	m.mu.Lock()
	active := m.sessionID
	m.mu.Unlock()

	deleted := 0
	for _, rec := range list[min(retain, len(list)):] {
		if rec.SessionID == active {
			continue
		}
		if err := m.stores.Snapshots.DeleteSession(ctx, rec.SessionID); err != nil {
			return deleted, fmt.Errorf("deleting session %s: %w", rec.SessionID, err)
		}
		deleted++
	}

	if deleted > 0 {
		m.logger.Info("cleaned up old sessions", "deleted", deleted, "retained", retain)
		m.notify(Event{Type: EventCleaned})
	}
	return deleted, nil
}

// Subscribe registers an observer for lifecycle events and returns the
// handle to unsubscribe with.
func (m *Manager) Subscribe(fn func(Event)) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextHandle++
	m.observers[m.nextHandle] = fn
	return m.nextHandle
}

// Unsubscribe removes an observer. Unknown handles are ignored.
func (m *Manager) Unsubscribe(handle int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.observers, handle)
}

func (m *Manager) notify(ev Event) {
	m.mu.Lock()
	fns := make([]func(Event), 0, len(m.observers))
	for _, fn := range m.observers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Close saves the active project one final time and shuts the manager
// down. Further Save calls are no-ops.
func (m *Manager) Close(ctx context.Context) error {
	m.stopAutoSaveLoop()

	var saveErr error
	m.mu.Lock()
	hasProject := m.current != nil && m.state != StateDestroyed
	m.mu.Unlock()
	if hasProject {
		saveErr = m.Save(ctx)
	}

	m.mu.Lock()
	m.state = StateDestroyed
	m.observers = make(map[int]func(Event))
	m.mu.Unlock()

	if saveErr != nil {
		return fmt.Errorf("final save: %w", saveErr)
	}
	m.logger.Info("session manager closed")
	return nil
}

func (m *Manager) startAutoSave() {
	m.mu.Lock()
	if m.stopAutoSave != nil {
		m.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	m.stopAutoSave = stop
	m.autoSaveDone = done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.autoSaveInterval)
		defer ticker.Stop()
		ticks := 0
		for {
			select {
			case <-ticker.C:
				if err := m.Save(context.Background()); err != nil {
					m.logger.Error("auto-save failed", "error", err)
				}
				ticks++
				if ticks%cleanupEveryNSaves == 0 {
					if _, err := m.CleanupOldSessions(context.Background(), 0); err != nil {
						m.logger.Error("periodic cleanup failed", "error", err)
					}
				}
			case <-stop:
				return
			}
		}
	}()
}

func (m *Manager) stopAutoSaveLoop() {
	m.mu.Lock()
	stop := m.stopAutoSave
	done := m.autoSaveDone
	m.stopAutoSave = nil
	m.autoSaveDone = nil
	m.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// flatDocument is the degraded single-key snapshot format. Asset blobs
// are left out; they are restored only when the durable store is back.
type flatDocument struct {
	Session    repository.SessionRecord `json:"session"`
	ProjectDoc []byte                   `json:"project_doc"`
}

func (m *Manager) saveToFlat(snap *repository.Snapshot) error {
	doc := flatDocument{
		Session:    snap.Session,
		ProjectDoc: snap.ProjectDoc,
	}
	data, err := sonic.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding flat snapshot: %w", err)
	}
	if err := m.flat.Set(flatSessionPrefix+snap.Session.SessionID, data); err != nil {
		return err
	}
	return m.updateFlatIndex(snap.Session)
}

func (m *Manager) updateFlatIndex(rec repository.SessionRecord) error {
	list, err := m.listFromFlat()
	if err != nil {
		list = nil
	}
	replaced := false
	for i := range list {
		if list[i].SessionID == rec.SessionID {
			list[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	data, err := sonic.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding flat index: %w", err)
	}
	return m.flat.Set(flatIndexKey, data)
}

func (m *Manager) loadFromFlat(sessionID string) (*project.Project, error) {
	data, err := m.flat.Get(flatSessionPrefix + sessionID)
	if err != nil {
		return nil, err
	}
	var doc flatDocument
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: flat snapshot: %v", project.ErrDeserialization, err)
	}
	p, err := project.Deserialize(doc.ProjectDoc)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("session loaded from flat store", "session_id", sessionID)
	return p, nil
}

func (m *Manager) restoreFromFlat() (*project.Project, bool) {
	if m.flat == nil {
		return nil, false
	}
	list, err := m.listFromFlat()
	if err != nil || len(list) == 0 {
		return nil, false
	}
	p, err := m.loadFromFlat(list[0].SessionID)
	if err != nil {
		return nil, false
	}
	m.logger.Warn("durable store unavailable, restored from flat store", "session_id", list[0].SessionID)
	return p, true
}

func (m *Manager) listFromFlat() ([]repository.SessionRecord, error) {
	data, err := m.flat.Get(flatIndexKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var list []repository.SessionRecord
	if err := sonic.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decoding flat index: %w", err)
	}
	return list, nil
}
