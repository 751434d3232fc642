// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package checker

import (
	"errors"
	"fmt"

	x509chain "github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/chain"
)

// Reason classifies why a chain failed verification.
type Reason int

const (
	// ReasonNotLoaded: the chain is empty or an entry failed to parse.
	ReasonNotLoaded Reason = iota + 1
	// ReasonNotWellFormed: a precertificate chain lacks the required shape.
	ReasonNotWellFormed
	// ReasonBadLink: an entry is not signed by the entry after it.
	ReasonBadLink
	// ReasonUntrustedRoot: the last entry neither is nor was issued by a trusted certificate.
	ReasonUntrustedRoot
	// ReasonBadPrecertLink: the precertificate is not signed by its signing certificate.
	ReasonBadPrecertLink
)

// String returns a human-readable representation of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonNotLoaded:
		return "not loaded"
	case ReasonNotWellFormed:
		return "not well formed"
	case ReasonBadLink:
		return "bad link"
	case ReasonUntrustedRoot:
		return "untrusted root"
	case ReasonBadPrecertLink:
		return "bad precertificate link"
	default:
		return fmt.Sprintf("unknown reason (%d)", int(r))
	}
}

// Sentinel errors matched by [ValidationError] through errors.Is.
var (
	ErrNotLoaded      = errors.New("checker: chain not loaded")
	ErrNotWellFormed  = errors.New("checker: precertificate chain not well formed")
	ErrBadLink        = errors.New("checker: certificate not signed by its successor")
	ErrUntrustedRoot  = errors.New("checker: chain does not reach a trusted certificate")
	ErrBadPrecertLink = errors.New("checker: precertificate not signed by its signing certificate")
)

func (r Reason) sentinel() error {
	switch r {
	case ReasonNotLoaded:
		return ErrNotLoaded
	case ReasonNotWellFormed:
		return ErrNotWellFormed
	case ReasonBadLink:
		return ErrBadLink
	case ReasonUntrustedRoot:
		return ErrUntrustedRoot
	case ReasonBadPrecertLink:
		return ErrBadPrecertLink
	default:
		return nil
	}
}

// ValidationError reports a failed chain verification.
//
// Index is the chain position the failure concerns: the unparsed entry, the
// child of a broken link, or the last entry for an untrusted root. It is -1
// when the failure concerns the chain as a whole. Err carries the underlying
// cause and is reachable through errors.Unwrap.
type ValidationError struct {
	Reason Reason
	Index  int
	Err    error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := "checker: " + e.Reason.String()
	if e.Index >= 0 {
		msg += fmt.Sprintf(" at index %d", e.Index)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel error for e.Reason.
func (e *ValidationError) Is(target error) bool {
	s := e.Reason.sentinel()
	return s != nil && target == s
}

// Status converts the outcome of a verification of a chain of n entries into
// per-index notes for the chain renderers.
//
// A nil err marks every entry [x509chain.StatusOK]. A link failure marks the
// entries before the failing index as ok and the failing index with the
// reason. Failures concerning the whole chain mark nothing but index 0.
func Status(n int, err error) x509chain.Status {
	status := make(x509chain.Status, n)
	if err == nil {
		for i := range n {
			status[i] = x509chain.StatusOK
		}
		return status
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		if n > 0 {
			status[0] = err.Error()
		}
		return status
	}

	switch {
	case verr.Index < 0:
		if n > 0 {
			status[0] = verr.Reason.String()
		}
	case verr.Reason == ReasonNotLoaded:
		status[verr.Index] = verr.Reason.String()
	default:
		for i := 0; i < verr.Index && i < n; i++ {
			status[i] = x509chain.StatusOK
		}
		if verr.Index < n {
			status[verr.Index] = verr.Reason.String()
		}
	}
	return status
}
