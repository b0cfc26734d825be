package project

import "errors"

var (
	// ErrDeserialization indicates a corrupt or incompatible stored project.
	ErrDeserialization = errors.New("project deserialization failed")
	// ErrNoProject indicates an export or import with no project loaded.
	ErrNoProject = errors.New("no project")
)
