package model

// Stable machine-readable error codes exposed by the gateway.
const (
	CodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	CodeNoFileProvided      = "NO_FILE_PROVIDED"
	CodeFileTooLarge        = "FILE_TOO_LARGE"
	CodeUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeResultNotFound      = "RESULT_NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
)

// ErrorResponse is the gateway's uniform error envelope.
// Error carries a machine code from the constants above; Message is safe for
// end users and never leaks backend internals.
type ErrorResponse struct {
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}
