package erlc

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrNoServerKey means the guild has no deployment key on file.
	ErrNoServerKey = errors.New("erlc: guild has no server key")
)

// ResponseFailure is any non-2xx answer from the server API. Callers treat it
// as "skip this guild for this cycle".
type ResponseFailure struct {
	Status int
	Body   string
}

func (e *ResponseFailure) Error() string {
	return fmt.Sprintf("erlc api status %d: %s", e.Status, e.Body)
}
