package sqlite

import (
	"context"
	"fmt"

	"github.com/fasttrack/fasttrack/internal/repository"
)

// AssetRepository implements repository.AssetRepository for SQLite
type AssetRepository struct {
	db *DB
}

// NewAssetRepository creates a new AssetRepository
func NewAssetRepository(db *DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// ListBySession returns all asset payloads stored for a session
func (r *AssetRepository) ListBySession(ctx context.Context, sessionID string) ([]repository.AssetRecord, error) {
	query := `
		SELECT id, session_id, type, name, mime_type, data, timestamp
		FROM assets
		WHERE session_id = ?
		ORDER BY timestamp ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing assets: %v", repository.ErrPersistence, err)
	}
	defer rows.Close()

	var assets []repository.AssetRecord
	for rows.Next() {
		var rec repository.AssetRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Type, &rec.Name, &rec.MIMEType, &rec.Data, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scanning asset: %v", repository.ErrPersistence, err)
		}
		assets = append(assets, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating assets: %v", repository.ErrPersistence, err)
	}

	return assets, nil
}
