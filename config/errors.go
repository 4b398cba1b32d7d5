package config

import "errors"

// ErrInvalid is returned by Load and Validate for configuration that cannot be used.
var ErrInvalid = errors.New("config: invalid configuration")
