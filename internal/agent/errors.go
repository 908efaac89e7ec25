package agent

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound marks the one recovery-eligible failure: the backend
// reported the submitted session as unknown.
var ErrSessionNotFound = errors.New("agent session not found")

// ErrSessionCreate marks a failed session-creation call. Never silently
// retried; callers decide the next action.
var ErrSessionCreate = errors.New("failed to create agent session")

// remoteError carries the remote status and body alongside the cause so the
// surfaced message is a single composite string.
type remoteError struct {
	cause  error
	status int
	body   string
}

func (e *remoteError) Error() string {
	msg := e.cause.Error()
	if e.status > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.status)
	}
	if e.body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.body)
	}
	return msg
}

func (e *remoteError) Unwrap() error {
	return e.cause
}
