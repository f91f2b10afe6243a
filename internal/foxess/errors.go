package foxess

import (
	"errors"
	"fmt"
)

// ErrMissingResult reports an envelope that claims success but
// carries no result payload.
var ErrMissingResult = errors.New("foxess: success response without result")

// ErrNotAuthenticated reports a domain call issued before
// Authenticate.
var ErrNotAuthenticated = errors.New("foxess: not authenticated")

// ErrNoDevices reports an account with an empty device list.
var ErrNoDevices = errors.New("foxess: no devices registered to this account")

// TransportError reports a failed HTTP exchange: either a non-2xx
// status or a network-level failure (Status 0).
type TransportError struct {
	Status int
	Err    error
}

func (e TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("foxess: http %d", e.Status)
	}
	return fmt.Sprintf("foxess: request failed: %v", e.Err)
}

func (e TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body that does not match the
// envelope or result schema.
type DecodeError struct {
	Err error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("foxess: decode response: %v", e.Err)
}

func (e DecodeError) Unwrap() error {
	return e.Err
}

// ServerError surfaces a nonzero application error code from the
// response envelope. The vendor does not document its codes; only 0
// is interpreted (as success).
type ServerError struct {
	Code int
}

func (e ServerError) Error() string {
	return fmt.Sprintf("foxess: server error %d", e.Code)
}

// DeviceNotFoundError reports a realtime response that carries no
// block for the requested serial number.
type DeviceNotFoundError struct {
	SerialNumber string
}

func (e DeviceNotFoundError) Error() string {
	return fmt.Sprintf("foxess: no realtime data for device %s", e.SerialNumber)
}
