package dto

// APIError is the JSON error envelope shared by every endpoint. The
// code is stable for programmatic handling; the message is for humans.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned by the reconciliation API.
const (
	ErrCodeRunNotFound   = "run_not_found"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeInternalError = "internal_error"
	ErrCodeValidation    = "validation_error"
)

// NewAPIError builds an error envelope from a code and message.
func NewAPIError(code, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

// RunNotFoundError reports an unknown run ID.
func RunNotFoundError(runID string) APIError {
	return NewAPIError(ErrCodeRunNotFound, "run "+runID+" not found")
}

// BadRequestError reports a malformed request.
func BadRequestError(message string) APIError {
	return NewAPIError(ErrCodeBadRequest, message)
}

// InternalError reports a server-side failure without leaking detail.
func InternalError() APIError {
	return NewAPIError(ErrCodeInternalError, "an internal error occurred")
}

// ValidationError reports input datasets that fail reconciliation
// preconditions.
func ValidationError(message string) APIError {
	return NewAPIError(ErrCodeValidation, message)
}
