package handler

import (
	"net/http"

	"github.com/mcoot/courseroster/internal/api/response"
	"github.com/mcoot/courseroster/internal/services/enrollment"
)

// EnrollmentHandler handles a student's course list
type EnrollmentHandler struct {
	enrollment *enrollment.Service
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollmentService *enrollment.Service) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollment: enrollmentService,
	}
}

// List handles GET /student_courses/{id}
func (h *EnrollmentHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := studentID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	courses, err := h.enrollment.ListEnrollments(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, courses)
}

// Enroll handles POST /enroll/{id}
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	id, err := studentID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	course, err := decodeCourse(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.enrollment.Enroll(r.Context(), id, course); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK("Course enrolled successfully"))
}

// Drop handles POST /drop/{id}
func (h *EnrollmentHandler) Drop(w http.ResponseWriter, r *http.Request) {
	id, err := studentID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	course, err := decodeCourse(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.enrollment.Drop(r.Context(), id, course); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK("Course dropped successfully"))
}
