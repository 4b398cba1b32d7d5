package mqttsink

import "errors"

var (
	// ErrConnectionFailed is returned when the broker cannot be reached.
	ErrConnectionFailed = errors.New("mqttsink: connection failed")

	// ErrPublishFailed is returned when a publish is not acknowledged in time.
	ErrPublishFailed = errors.New("mqttsink: publish failed")

	// ErrInvalidQoS is returned for QoS levels other than 0, 1 or 2.
	ErrInvalidQoS = errors.New("mqttsink: invalid QoS level (must be 0, 1, or 2)")

	// ErrUnknownFormat is returned for payload formats other than json and msgpack.
	ErrUnknownFormat = errors.New("mqttsink: unknown payload format")
)
