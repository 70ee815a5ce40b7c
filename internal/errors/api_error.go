package errors

// APIError is the JSON error body returned by every HTTP endpoint.
// Details carries free-form context such as a relayed upstream body.
type APIError struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// NewAPIError creates a new APIError with the given message and optional details.
func NewAPIError(message string, details any) *APIError {
	return &APIError{
		Error:   message,
		Details: details,
	}
}
