package handshake

import "errors"

// Error kinds surfaced by Run. All four are fatal to the connection; the
// caller is expected to mark the corresponding Known Node record failed
// and let the external driver decide whether to retry.
var (
	// ErrTLS wraps a failed or aborted TLS handshake.
	ErrTLS = errors.New("handshake: tls error")
	// ErrInvalidData wraps a malformed or semantically invalid upgrade message.
	ErrInvalidData = errors.New("handshake: invalid data")
	// ErrIO wraps a failure of the underlying transport.
	ErrIO = errors.New("handshake: io error")
	// ErrTimedOut is used by driver-imposed deadlines; treated identically
	// to ErrIO by the Known Network registry.
	ErrTimedOut = errors.New("handshake: timed out")
)

// ErrSelfConnection is returned when a peer's advertised public key
// matches our own, i.e. we connected to ourselves.
var ErrSelfConnection = errors.New("handshake: self connection detected")

// Error carries the handshake state at which the failure occurred,
// alongside the underlying sentinel (ErrTLS, ErrInvalidData, ErrIO, or
// ErrTimedOut) and role, for logging and for the Known Network registry.
type Error struct {
	State State
	Role  Role
	Err   error
}

func (e *Error) Error() string {
	return "handshake: " + e.Role.String() + " failed at " + e.State.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(state State, role Role, kind error, detail string) *Error {
	var wrapped error
	if detail == "" {
		wrapped = kind
	} else {
		wrapped = &detailedError{kind: kind, detail: detail}
	}
	return &Error{State: state, Role: role, Err: wrapped}
}

// detailedError attaches a human-readable detail to a sentinel error
// while keeping errors.Is(err, kind) working via Unwrap.
type detailedError struct {
	kind   error
	detail string
}

func (d *detailedError) Error() string { return d.kind.Error() + ": " + d.detail }
func (d *detailedError) Unwrap() error { return d.kind }
