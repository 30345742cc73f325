package apiclient

import (
	"errors"
	"fmt"
)

const (
	genericMessage = "Something went wrong. Please try again."
	networkMessage = "Unable to reach the server. Please check your connection."
)

// ErrNetwork marks calls that produced no response at all.
var ErrNetwork = errors.New("network failure")

// APIError is a non-2xx reply, or a 2xx reply with success=false.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Message converts any error returned by the client into user-facing text.
func Message(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrNetwork):
		return networkMessage
	default:
		return genericMessage
	}
}
