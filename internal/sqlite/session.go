package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fasttrack/fasttrack/internal/repository"
)

// SessionRepository implements repository.SessionRepository for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get retrieves a session record by ID
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*repository.SessionRecord, error) {
	query := `
		SELECT session_id, project_id, name, timestamp, last_modified, thumbnail
		FROM sessions
		WHERE session_id = ?
	`

	rec, err := scanSession(r.db.QueryRowContext(ctx, query, sessionID))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getting session: %v", repository.ErrPersistence, err)
	}
	return rec, nil
}

// List returns all sessions, most recently saved first
func (r *SessionRepository) List(ctx context.Context) ([]repository.SessionRecord, error) {
	query := `
		SELECT session_id, project_id, name, timestamp, last_modified, thumbnail
		FROM sessions
		ORDER BY timestamp DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing sessions: %v", repository.ErrPersistence, err)
	}
	defer rows.Close()

	var sessions []repository.SessionRecord
	for rows.Next() {
		var rec repository.SessionRecord
		var thumbnail []byte
		if err := rows.Scan(&rec.SessionID, &rec.ProjectID, &rec.Name, &rec.Timestamp, &rec.LastModified, &thumbnail); err != nil {
			return nil, fmt.Errorf("%w: scanning session: %v", repository.ErrPersistence, err)
		}
		rec.Thumbnail = thumbnail
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sessions: %v", repository.ErrPersistence, err)
	}

	return sessions, nil
}

// MostRecent returns the most recently modified session
func (r *SessionRepository) MostRecent(ctx context.Context) (*repository.SessionRecord, error) {
	query := `
		SELECT session_id, project_id, name, timestamp, last_modified, thumbnail
		FROM sessions
		ORDER BY last_modified DESC
		LIMIT 1
	`

	rec, err := scanSession(r.db.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getting most recent session: %v", repository.ErrPersistence, err)
	}
	return rec, nil
}

func scanSession(row *sql.Row) (*repository.SessionRecord, error) {
	var rec repository.SessionRecord
	var thumbnail []byte
	if err := row.Scan(&rec.SessionID, &rec.ProjectID, &rec.Name, &rec.Timestamp, &rec.LastModified, &thumbnail); err != nil {
		return nil, err
	}
	rec.Thumbnail = thumbnail
	return &rec, nil
}
