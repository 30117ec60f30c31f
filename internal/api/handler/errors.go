package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/courseroster/internal/api/apierr"
	"github.com/mcoot/courseroster/internal/model"
)

// maxBodyBytes bounds every request body read by the handlers
const maxBodyBytes = 1 << 20

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeJSON reads a JSON object from the request body into v
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return NewInvalidRequestError("Invalid JSON body")
	}
	return nil
}

// decodeCourse reads a course snapshot from the request body.
// A body without a course id maps to model.ErrCourseIDRequired.
func decodeCourse(r *http.Request) (model.Course, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, NewInvalidRequestError("Invalid JSON body")
	}
	course, err := model.CourseFromJSON(data)
	if err != nil {
		if errors.Is(err, model.ErrCourseIDRequired) {
			return nil, err
		}
		return nil, NewInvalidRequestError("Invalid JSON body")
	}
	return course, nil
}

// studentID extracts the {id} path variable. The route pattern only admits
// digits, so a failure here means the value overflowed.
func studentID(r *http.Request) (model.StudentID, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, NewInvalidRequestError(fmt.Sprintf("invalid student id %q", raw))
	}
	return model.StudentID(id), nil
}
