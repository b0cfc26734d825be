package repository

import (
	"context"
	"time"
)

// SessionRecord is the persisted session row: identity, the project it
// stores, bookkeeping timestamps, and an optional thumbnail image.
type SessionRecord struct {
	SessionID    string
	ProjectID    string
	Name         string
	Timestamp    time.Time
	LastModified time.Time
	Thumbnail    []byte
}

// AssetRecord is a persisted binary payload keyed by (asset id, session id).
type AssetRecord struct {
	ID        string
	SessionID string
	Type      string
	Name      string
	MIMEType  string
	Data      []byte
	Timestamp time.Time
}

// Snapshot is one logical save: the session row, the serialized project
// document, and every asset payload, committed atomically.
type Snapshot struct {
	Session    SessionRecord
	ProjectDoc []byte
	Assets     []AssetRecord
}

// SessionRepository reads the sessions collection.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (*SessionRecord, error)
	// List returns all sessions, most recently saved first.
	List(ctx context.Context) ([]SessionRecord, error)
	// MostRecent returns the newest session or ErrNotFound.
	MostRecent(ctx context.Context) (*SessionRecord, error)
}

// ProjectRepository reads serialized project documents.
type ProjectRepository interface {
	Get(ctx context.Context, projectID string) ([]byte, error)
}

// AssetRepository reads asset payloads for a session.
type AssetRepository interface {
	ListBySession(ctx context.Context, sessionID string) ([]AssetRecord, error)
}

// SnapshotStore performs the multi-collection writes. Both operations are
// single logical transactions: a torn session/project/asset state is never
// observable.
type SnapshotStore interface {
	// SaveSnapshot upserts the session, project, and asset collections.
	// Repeated saves of the same session id overwrite, never duplicate.
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	// DeleteSession removes the session, its project, and all its assets.
	DeleteSession(ctx context.Context, sessionID string) error
}

// Stores bundles the collection views the session manager needs.
type Stores struct {
	Sessions  SessionRepository
	Projects  ProjectRepository
	Assets    AssetRepository
	Snapshots SnapshotStore
}

// FlatStore is the fallback string key/value store used when the durable
// store is unavailable.
type FlatStore interface {
	Set(key string, value []byte) error
	Get(key string) ([]byte, error)
	Remove(key string) error
}
