package results

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPageCount is returned for page counts that are not a whole number in range
var ErrInvalidPageCount = errors.New("invalid page count")

// PageCountError describes why a page count was rejected
type PageCountError struct {
	Input  string
	Max    int
	Reason string
}

func (e *PageCountError) Error() string {
	return fmt.Sprintf("invalid page count %q: %s", e.Input, e.Reason)
}

func (e *PageCountError) Unwrap() error {
	return ErrInvalidPageCount
}

// ParsePageCount validates raw user input as a page count in [1, max]
func ParsePageCount(raw string, max int) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &PageCountError{Input: raw, Max: max, Reason: "empty"}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &PageCountError{Input: raw, Max: max, Reason: "not a whole number"}
	}
	if n < 1 {
		return 0, &PageCountError{Input: raw, Max: max, Reason: "must be at least 1"}
	}
	if n > max {
		return 0, &PageCountError{Input: raw, Max: max, Reason: fmt.Sprintf("must be at most %d", max)}
	}

	return n, nil
}
