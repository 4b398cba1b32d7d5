package ipso

import "errors"

var (
	// ErrUnknownObject is returned for an enabled object name the catalog does not know.
	ErrUnknownObject = errors.New("ipso: unknown object")

	// ErrDefinitions is returned for an unreadable or inconsistent sensor definitions file.
	ErrDefinitions = errors.New("ipso: invalid sensor definitions")
)
