package github

import (
	"errors"
	"fmt"
)

const headerRateRemaining = "X-RateLimit-Remaining"

// FetchError is returned for any non-2xx listing response.
type FetchError struct {
	Status int
	// RateLimited is set when the response reports no remaining quota.
	RateLimited bool
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("GitHub API request failed: %d", e.Status)
	if e.RateLimited {
		msg += " (rate limit hit, try again later)"
	}
	return msg
}

// ParseError describes a 2xx body that could not be decoded. ListRepos logs it
// and returns an empty listing instead.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parsing repository listing: " + e.Reason
}

func IsRateLimited(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr) && fetchErr.RateLimited
}
