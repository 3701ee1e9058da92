// Package transport delivers rendered messages through a pluggable sender.
// The default sender shells out to an external messaging CLI; alternatives
// (Telegram) plug in behind the same interface without touching the renderer
// or the event gate.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sender is the delivery capability. Implementations log every outcome
// themselves and return a typed error so callers can count failures, but no
// implementation retries and none may panic: delivery is best-effort.
type Sender interface {
	SendText(ctx context.Context, text string) error
	SendImage(ctx context.Context, filename string, data []byte) error
}

// ErrNoDestination: secrets carry no destination address, sending disabled.
var ErrNoDestination = errors.New("transport: destination address is empty")

// TimeoutError: the delivery command exceeded the configured timeout.
// Logged distinctly so operators can tell a hung client from a rejected send.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transport: delivery exceeded %s", e.Timeout)
}

// ExitError: the delivery command ran but exited non-zero.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("transport: delivery command exited %d: %s", e.Code, e.Stderr)
}
