package bagel

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnknownSchema   = errors.New("unknown schema")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrUnknownOperator = errors.New("unknown session operator")
	ErrInvalidDataURL  = errors.New("invalid data URL")
)

// ValidationError reports a problem with the content of an uploaded file. Its message is meant for the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

const genericUploadError = "Something went wrong while processing this file."

// UserMessage turns an upload error into the message displayed by the dashboard.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	msg := genericUploadError

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		msg = vErr.Message
	}

	return "Error: " + msg + " Please try again."
}
