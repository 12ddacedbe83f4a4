// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for generic 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Response is the wire shape of a typed domain error. The PDA client keys
// its behaviour on ErrorCode and stops prompting when CanRetry is false.
type Response struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	CanRetry  bool   `json:"can_retry"`
}

// ToResponse converts a domain error into its wire envelope.
func ToResponse(e *Error) Response {
	return Response{ErrorCode: e.Code, Message: e.Message, CanRetry: e.CanRetry}
}
