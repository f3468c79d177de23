package jwtverify

import (
	"errors"
	"fmt"
)

// Reason says why a request was not admitted. It is used for logs and
// metrics only and never reaches the client.
type Reason int

const (
	ReasonAbsent Reason = iota + 1
	ReasonMalformed
	ReasonInvalidSignature
	ReasonExpired
)

func (r Reason) String() string {
	switch r {
	case ReasonAbsent:
		return "absent"
	case ReasonMalformed:
		return "malformed"
	case ReasonInvalidSignature:
		return "invalid_signature"
	case ReasonExpired:
		return "expired"
	default:
		return "unknown"
	}
}

type VerifyError struct {
	Reason Reason
	Err    error
}

func (e *VerifyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Reason, e.Err)
	}
	return "token " + e.Reason.String()
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}

// Is matches on Reason so callers can test against the sentinels below.
func (e *VerifyError) Is(target error) bool {
	t, ok := target.(*VerifyError)
	return ok && t.Reason == e.Reason
}

var (
	ErrAbsent           = &VerifyError{Reason: ReasonAbsent}
	ErrMalformed        = &VerifyError{Reason: ReasonMalformed}
	ErrInvalidSignature = &VerifyError{Reason: ReasonInvalidSignature}
	ErrExpired          = &VerifyError{Reason: ReasonExpired}
)

// ReasonOf extracts the failure reason, defaulting to ReasonMalformed for
// errors that did not come from the codec.
func ReasonOf(err error) Reason {
	var ve *VerifyError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ReasonMalformed
}
