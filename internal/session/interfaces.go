package session

import "context"

// ThumbnailGenerator renders a small preview image for a session row.
// A nil generator is allowed; sessions are then saved without one.
type ThumbnailGenerator interface {
	Thumbnail(ctx context.Context, projectID string) ([]byte, error)
}
