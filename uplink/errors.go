package uplink

import "errors"

var (
	// ErrCredentials is returned when the device key cannot be loaded or used.
	ErrCredentials = errors.New("uplink: device credentials")

	// ErrDial is returned when the DTLS connection cannot be established.
	ErrDial = errors.New("uplink: dial failed")

	// ErrUnexpectedResponse is returned when the cloud answers with another code than expected.
	ErrUnexpectedResponse = errors.New("uplink: unexpected response")

	// ErrEncode is returned when a SenML pack cannot be validated or encoded.
	ErrEncode = errors.New("uplink: encode failed")
)
