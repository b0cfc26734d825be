package timeline

import "errors"

var (
	// ErrInvalidRange indicates trim/split bounds outside the legal window.
	ErrInvalidRange = errors.New("invalid range")
	// ErrLocked indicates a mutation attempted on a locked clip or track.
	ErrLocked = errors.New("locked")
	// ErrNotFound indicates an operation on a missing clip or track id.
	ErrNotFound = errors.New("not found")
	// ErrZeroDuration indicates a time sample on a zero-length clip.
	ErrZeroDuration = errors.New("zero duration")
	// ErrNotContiguous indicates a merge over clips that do not line up.
	ErrNotContiguous = errors.New("clips not contiguous")
)
