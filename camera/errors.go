package camera

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport wraps failures where no response was received: DNS,
	// connection, and timeout errors. These are never retried.
	ErrTransport = errors.New("camera: transport failure")

	ErrUnexpectedStatus       = errors.New("camera: unexpected status")
	ErrChallengeUnparseable   = errors.New("camera: authentication challenge unparseable")
	ErrAuthenticationRejected = errors.New("camera: authentication rejected")

	ErrInvalidRequest = errors.New("camera: invalid request")
	ErrInvalidHeader  = errors.New("camera: invalid header")
)

// Kind classifies a final response that was not a success.
type Kind int

const (
	UnexpectedStatus Kind = iota
	ChallengeUnparseable
	AuthenticationRejected
)

func (k Kind) String() string {
	switch k {
	case UnexpectedStatus:
		return "unexpected status"
	case ChallengeUnparseable:
		return "challenge unparseable"
	case AuthenticationRejected:
		return "authentication rejected"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case ChallengeUnparseable:
		return ErrChallengeUnparseable
	case AuthenticationRejected:
		return ErrAuthenticationRejected
	default:
		return ErrUnexpectedStatus
	}
}

// StatusError is returned when the camera answered with a status outside
// [200, 300). It carries the raw outcome.
type StatusError struct {
	Kind    Kind
	Outcome *Outcome
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v (status %d)", e.Kind.sentinel(), e.Outcome.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.Kind.sentinel()
}

func transportError(err error) error {
	if errors.Is(err, ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}
