package usage

import "fmt"

// ErrorKind classifies poll failures. Every failure is terminal for that
// tick only; the next tick starts clean.
type ErrorKind string

const (
	// ErrUnconfigured means no credentials are present. The poller treats
	// this as "do not even attempt the request".
	ErrUnconfigured ErrorKind = "unconfigured"
	// ErrNetwork means the request could not complete at the transport
	// level.
	ErrNetwork ErrorKind = "network"
	// ErrAPI means the server answered with a non-success status or a body
	// missing any of the three required limit objects.
	ErrAPI ErrorKind = "api"
	// ErrAuth means the session key was rejected (401/403). There is no
	// automatic remediation; the user must paste a fresh key in Settings.
	ErrAuth ErrorKind = "auth"
)

// PollError is the error type surfaced by the usage client and poller.
type PollError struct {
	Kind ErrorKind
	Err  error
}

func (e *PollError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PollError) Unwrap() error {
	return e.Err
}

// NewPollError wraps err with a kind.
func NewPollError(kind ErrorKind, err error) *PollError {
	return &PollError{Kind: kind, Err: err}
}
