package engine

import "errors"

var (
	// ErrUnknownScene is returned when a preset name has no scene.
	ErrUnknownScene = errors.New("engine: unknown scene preset")

	// ErrBadSpeedIndex is returned for a speed index outside the
	// configured multiplier set.
	ErrBadSpeedIndex = errors.New("engine: speed multiplier index out of range")

	// ErrUnknownProperty is returned by particle edits naming a
	// property the engine does not expose.
	ErrUnknownProperty = errors.New("engine: unknown particle property")
)
