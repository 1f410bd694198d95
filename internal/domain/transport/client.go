package transport

import (
	"context"
	"errors"
	"fmt"
)

// Client defines an interface for delivering one message to one address.
// A call is at-most-once; retry is the dispatcher's responsibility. This
// decouples the application logic from the specific provider SDK.
type Client interface {
	Send(ctx context.Context, address, body string) (providerID string, err error)
}

// Error is a delivery failure reported by the transport provider.
type Error struct {
	Code      int // provider error code, 0 when not supplied
	Message   string
	Retryable bool
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("transport error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("transport error: %s", e.Message)
}

// IsRetryable reports whether err is a transport error worth retrying.
// Validation-class failures (bad address, permission denied) are not.
func IsRetryable(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Retryable
	}
	return false
}
