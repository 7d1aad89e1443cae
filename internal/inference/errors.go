package inference

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
)

// Sentinel errors for upstream failures. Check with errors.Is().
var (
	// ErrTimeout indicates the upstream request exceeded the client timeout.
	ErrTimeout = errors.New("upstream request timed out")

	// ErrProtocol indicates the upstream response produced no valid frame.
	ErrProtocol = errors.New("upstream protocol error")

	// ErrUpstream indicates the upstream returned a non-success status.
	ErrUpstream = errors.New("upstream error")
)

// isTimeout reports whether err is a deadline/timeout class failure, covering
// both context deadlines and net-level timeouts (including http.Client.Timeout).
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// isRefused reports whether err is a connection-refused failure.
func isRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
