package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Registration errors
	ErrUsernameTaken    = errors.New("username already taken")
	ErrUsernameRequired = errors.New("username is required")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Student errors
	ErrStudentNotFound = errors.New("student not found")

	// Enrollment errors
	ErrAlreadyEnrolled   = errors.New("already enrolled in this course")
	ErrCourseNotEnrolled = errors.New("course not found in enrollment")
	ErrCourseIDRequired  = errors.New("course id is required")

	// Storage errors
	ErrMalformedCollection = errors.New("persisted student collection is malformed")
	ErrConcurrentUpdate    = errors.New("student collection changed during update")
)

// StorageError reports a failure to read or write the persisted collection.
// It is a per-request failure: the caller reports it and carries on.
type StorageError struct {
	Op      string // "load" or "save"
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s (%s): %v", e.Op, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is, or wraps, a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
