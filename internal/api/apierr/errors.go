package apierr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/courseroster/internal/model"
)

// ErrorResponse is the failure envelope shared by every endpoint
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error codes
const (
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeUsernameRequired   = "USERNAME_REQUIRED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeStudentNotFound    = "STUDENT_NOT_FOUND"
	CodeAlreadyEnrolled    = "ALREADY_ENROLLED"
	CodeCourseNotEnrolled  = "COURSE_NOT_ENROLLED"
	CodeCourseIDRequired   = "COURSE_ID_REQUIRED"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeStorageError       = "STORAGE_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with a response body
type httpError struct {
	status int
	code   string
	msg    string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.msg
}

// WriteError writes an error response to the response writer.
// Server-side failures are logged with their cause; the client only sees a
// fixed message.
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	var direct *httpError
	if he.status >= http.StatusInternalServerError && !errors.As(err, &direct) {
		slog.Default().Error("request failed",
			slog.String("code", he.code),
			slog.String("error", err.Error()),
		)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Message: he.msg,
		Code:    he.code,
	})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Storage failures first: a malformed document can wrap other sentinels
	if model.IsStorageError(err) {
		return &httpError{http.StatusInternalServerError, CodeStorageError, "Storage error"}
	}

	switch {
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusBadRequest, CodeUsernameTaken, "Username already taken"}
	case errors.Is(err, model.ErrUsernameRequired):
		return &httpError{http.StatusBadRequest, CodeUsernameRequired, "Username is required"}
	case errors.Is(err, model.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, CodeInvalidCredentials, "Invalid username or password"}
	case errors.Is(err, model.ErrStudentNotFound):
		return &httpError{http.StatusNotFound, CodeStudentNotFound, "Student not found"}
	case errors.Is(err, model.ErrAlreadyEnrolled):
		return &httpError{http.StatusBadRequest, CodeAlreadyEnrolled, "Already enrolled in this course"}
	case errors.Is(err, model.ErrCourseNotEnrolled):
		return &httpError{http.StatusBadRequest, CodeCourseNotEnrolled, "Course not found in enrollment"}
	case errors.Is(err, model.ErrCourseIDRequired):
		return &httpError{http.StatusBadRequest, CodeCourseIDRequired, "Course id is required"}
	default:
		return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, CodeInvalidRequest, message}
}

// NewInternalError creates an internal server error carrying message
func NewInternalError(message string) error {
	return &httpError{http.StatusInternalServerError, CodeInternalError, message}
}
