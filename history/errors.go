package history

import "errors"

var (
	// ErrOpen is returned when the database cannot be opened or migrated.
	ErrOpen = errors.New("history: open failed")

	// ErrCorrupt is returned when a stored row cannot be decoded into a value.
	ErrCorrupt = errors.New("history: corrupt row")
)
