package service

import (
	"errors"
	"fmt"

	"acsgateway/internal/model"
)

// Failure is a typed, client-facing error. Every failed gateway operation
// returns one, so handlers translate to HTTP without inspecting error
// strings. Status is the HTTP status the public contract assigns; rate-limit
// and size failures are deliberately 400, not 429/413.
type Failure struct {
	Code    string
	Message string
	Status  int
	Details map[string]any
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// AsFailure extracts a Failure from err, if it carries one.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func rateLimitedFailure() *Failure {
	return &Failure{
		Code:    model.CodeRateLimitExceeded,
		Message: "Too many extraction requests. Please try again later.",
		Status:  400,
	}
}

func noFileFailure() *Failure {
	return &Failure{
		Code:    model.CodeNoFileProvided,
		Message: "No file was provided. Attach at least one file in the 'files' field.",
		Status:  400,
	}
}

func fileTooLargeFailure(filename string, size, limit int64) *Failure {
	return &Failure{
		Code:    model.CodeFileTooLarge,
		Message: fmt.Sprintf("File %q exceeds the maximum allowed size.", filename),
		Status:  400,
		Details: map[string]any{"filename": filename, "size": size, "max_size": limit},
	}
}

func unsupportedTypeFailure(filename, mime string) *Failure {
	return &Failure{
		Code:    model.CodeUnsupportedFileType,
		Message: fmt.Sprintf("File %q has an unsupported type. Accepted types are PDF, JPEG and PNG.", filename),
		Status:  400,
		Details: map[string]any{"filename": filename, "content_type": mime},
	}
}

func validationFailure(detail string) *Failure {
	return &Failure{
		Code:    model.CodeValidationError,
		Message: detail,
		Status:  400,
	}
}

func notFoundFailure(id string) *Failure {
	return &Failure{
		Code:    model.CodeResultNotFound,
		Message: "The requested report was not found.",
		Status:  404,
		Details: map[string]any{"resource_id": id},
	}
}

// internalFailure hides backend internals from clients while keeping the
// failure kind visible to operators via details.error_type.
func internalFailure(errorType string) *Failure {
	return &Failure{
		Code:    model.CodeInternalError,
		Message: "An internal error occurred while processing the request.",
		Status:  500,
		Details: map[string]any{"error_type": errorType},
	}
}
