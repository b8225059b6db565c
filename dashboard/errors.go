package dashboard

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken is returned when the cluster rejects a bearer token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingTokenStore is returned by New without a token store.
	ErrMissingTokenStore = errors.New("token store required")
)

// StatusError reports an unexpected API response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("%d: %s", e.Code, e.Body)
}
