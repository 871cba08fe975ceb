package failure

import (
	"errors"
	"net/http"
)

// Failure is an error the HTTP layer can answer directly. Code is the response status.
type Failure struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

func (e *Failure) Error() string {
	return e.Message
}

func newFailure(code int, message string) error {
	return &Failure{Code: code, Message: message}
}

// BadRequest turns a validation error into a 400. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusBadRequest, err.Error())
}

func BadRequestFromString(msg string) error {
	return newFailure(http.StatusBadRequest, msg)
}

func Unauthorized(msg string) error {
	return newFailure(http.StatusUnauthorized, msg)
}

func Forbidden(msg string) error {
	return newFailure(http.StatusForbidden, msg)
}

func NotFound(msg string) error {
	return newFailure(http.StatusNotFound, msg)
}

// Conflict reports a state the request cannot move past, such as an illegal status
// transition. Retrying the same request will fail again.
func Conflict(msg string) error {
	return newFailure(http.StatusConflict, msg)
}

// ConflictRetry reports a lost race. The caller may re-read state and retry.
func ConflictRetry(msg string) error {
	return &Failure{Code: http.StatusConflict, Message: msg, Retryable: true}
}

// GetCode returns the status carried by err, or 500 when err carries none.
func GetCode(err error) int {
	if fail, ok := as(err); ok {
		return fail.Code
	}

	return http.StatusInternalServerError
}

func IsRetryable(err error) bool {
	fail, ok := as(err)

	return ok && fail.Retryable
}

func as(err error) (*Failure, bool) {
	var fail *Failure
	ok := errors.As(err, &fail)

	return fail, ok
}
