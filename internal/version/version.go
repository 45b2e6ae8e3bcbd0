// Package version extracts the API version embedded in a request path and
// compares it against the minimum an endpoint declares.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// DefaultMinimum is the minimum version of an endpoint that declares none.
const DefaultMinimum = 1

type Reason string

const (
	ReasonTooLow     Reason = "VERSION_TOO_LOW"
	ReasonUnparsable Reason = "VERSION_UNPARSABLE"
)

var (
	ErrTooLow     = errors.New("api version below endpoint minimum")
	ErrUnparsable = errors.New("no api version in request path")
)

// The first "v<digits>/" anywhere in the path wins, even when it is not the
// segment the route meant as its version.
var prefixPattern = regexp.MustCompile(`v(\d+)/`)

// RejectionError is returned for a call that must not reach its handler.
type RejectionError struct {
	Reason    Reason
	Path      string
	Requested int
	Minimum   int
}

func (e *RejectionError) Error() string {
	if e.Reason == ReasonUnparsable {
		return fmt.Sprintf("%s: path %q carries no v<N>/ segment", e.Reason, e.Path)
	}
	return fmt.Sprintf("%s: requested v%d, minimum v%d", e.Reason, e.Requested, e.Minimum)
}

func (e *RejectionError) Unwrap() error {
	if e.Reason == ReasonUnparsable {
		return ErrUnparsable
	}
	return ErrTooLow
}

// Parse returns the version from the first v<N>/ occurrence in path.
func Parse(path string) (int, error) {
	match := prefixPattern.FindStringSubmatch(path)
	if match == nil {
		return 0, ErrUnparsable
	}

	v, err := strconv.Atoi(match[1])
	if err != nil {
		// digit run overflows int
		return 0, ErrUnparsable
	}

	return v, nil
}

// Check parses path and returns the requested version when it is at least
// minimum. Otherwise it returns a *RejectionError. Equal versions pass and
// there is no upper bound.
func Check(path string, minimum int) (int, error) {
	requested, err := Parse(path)
	if err != nil {
		return 0, &RejectionError{Reason: ReasonUnparsable, Path: path, Minimum: minimum}
	}

	if requested-minimum < 0 {
		return requested, &RejectionError{Reason: ReasonTooLow, Path: path, Requested: requested, Minimum: minimum}
	}

	return requested, nil
}
