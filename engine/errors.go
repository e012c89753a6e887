package engine

import "errors"

var (
	// ErrUnknownExercise is returned by NormalizeSession alongside a usable
	// session carrying catalog.DefaultMetadata.
	ErrUnknownExercise = errors.New("unknown exercise")

	ErrUnknownEventKind = errors.New("unknown event kind")
)
