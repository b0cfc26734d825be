package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fasttrack/fasttrack/internal/repository"
)

// SnapshotStore implements repository.SnapshotStore for SQLite. Every
// save and delete runs in one transaction so the three collections never
// disagree.
type SnapshotStore struct {
	db *DB
}

// NewSnapshotStore creates a new SnapshotStore
func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// SaveSnapshot commits the session row, project document, and asset
// payloads atomically. Existing rows for the session id are overwritten;
// assets no longer part of the project are removed.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snap *repository.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning save: %v", repository.ErrPersistence, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (id, data) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, snap.Session.ProjectID, snap.ProjectDoc)
	if err != nil {
		return fmt.Errorf("%w: saving project: %v", repository.ErrPersistence, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (session_id, project_id, name, timestamp, last_modified, thumbnail)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			project_id = excluded.project_id,
			name = excluded.name,
			timestamp = excluded.timestamp,
			last_modified = excluded.last_modified,
			thumbnail = excluded.thumbnail
	`, snap.Session.SessionID, snap.Session.ProjectID, snap.Session.Name,
		snap.Session.Timestamp, snap.Session.LastModified, snap.Session.Thumbnail)
	if err != nil {
		return fmt.Errorf("%w: saving session: %v", repository.ErrPersistence, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE session_id = ?`, snap.Session.SessionID); err != nil {
		return fmt.Errorf("%w: clearing assets: %v", repository.ErrPersistence, err)
	}
	for _, asset := range snap.Assets {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO assets (id, session_id, type, name, mime_type, data, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, asset.ID, asset.SessionID, asset.Type, asset.Name, asset.MIMEType, asset.Data, asset.Timestamp)
		if err != nil {
			return fmt.Errorf("%w: saving asset %s: %v", repository.ErrPersistence, asset.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing save: %v", repository.ErrPersistence, err)
	}
	return nil
}

// DeleteSession removes the session, its project document, and all its
// asset payloads in one transaction.
func (s *SnapshotStore) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning delete: %v", repository.ErrPersistence, err)
	}
	defer tx.Rollback()

	var projectID string
	err = tx.QueryRowContext(ctx, `SELECT project_id FROM sessions WHERE session_id = ?`, sessionID).Scan(&projectID)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: locating session: %v", repository.ErrPersistence, err)
	}

	for _, stmt := range []struct {
		query string
		arg   string
	}{
		{`DELETE FROM assets WHERE session_id = ?`, sessionID},
		{`DELETE FROM projects WHERE id = ?`, projectID},
		{`DELETE FROM sessions WHERE session_id = ?`, sessionID},
	} {
		if _, err := tx.ExecContext(ctx, stmt.query, stmt.arg); err != nil {
			return fmt.Errorf("%w: deleting session %s: %v", repository.ErrPersistence, sessionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing delete: %v", repository.ErrPersistence, err)
	}
	return nil
}
