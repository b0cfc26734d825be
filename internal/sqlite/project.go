package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fasttrack/fasttrack/internal/repository"
)

// ProjectRepository implements repository.ProjectRepository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Get retrieves a serialized project document by ID
func (r *ProjectRepository) Get(ctx context.Context, projectID string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM projects WHERE id = ?`, projectID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getting project: %v", repository.ErrPersistence, err)
	}
	return data, nil
}
