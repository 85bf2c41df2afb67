package review

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedRating marks a rating that is not an integer in 1..5
var ErrMalformedRating = errors.New("malformed rating")

// ParseRating parses a 1..5 rating. Blank input is no rating and no error.
func ParseRating(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrMalformedRating, raw)
	}
	if n < 1 || n > 5 {
		return nil, fmt.Errorf("%w: %d is outside 1..5", ErrMalformedRating, n)
	}
	return &n, nil
}
