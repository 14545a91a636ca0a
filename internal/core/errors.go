package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a package is not found.
var ErrNotFound = errors.New("not found")

// ErrUnsupported is returned when no adapter is registered for an ecosystem.
var ErrUnsupported = errors.New("unsupported ecosystem")

// NotFoundError wraps ErrNotFound with additional context.
type NotFoundError struct {
	Ecosystem Ecosystem
	Name      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: package %s not found", e.Ecosystem, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ValidationError reports a malformed identifier. It is raised before any
// network use and scored as UNKNOWN without aborting the scan.
type ValidationError struct {
	Ecosystem Ecosystem
	Name      string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid package name %q: %s", e.Ecosystem, e.Name, e.Reason)
}

// OutcomeFor classifies a fetch error into a Metadata outcome. A nil error is
// OutcomeOK. Anything unrecognized (DNS failure, timeout, parse error) is a
// transport error: errors degrade to a worst-case outcome, they never leak.
func OutcomeFor(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	if errors.Is(err, ErrNotFound) {
		return OutcomeNotFound
	}
	if errors.Is(err, ErrUnsupported) {
		return OutcomeUnsupported
	}

	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		return OutcomeRateLimited
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.IsNotFound() {
		return OutcomeNotFound
	}

	return OutcomeTransportError
}
