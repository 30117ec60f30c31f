package handler

import (
	"net/http"

	"github.com/mcoot/courseroster/internal/api/request"
	"github.com/mcoot/courseroster/internal/api/response"
	"github.com/mcoot/courseroster/internal/services/auth"
	"github.com/mcoot/courseroster/internal/services/registrar"
)

// StudentHandler handles account endpoints
type StudentHandler struct {
	registrar *registrar.Service
	auth      *auth.Service
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(registrarService *registrar.Service, authService *auth.Service) *StudentHandler {
	return &StudentHandler{
		registrar: registrarService,
		auth:      authService,
	}
}

// Register handles POST /register
func (h *StudentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	student, err := h.registrar.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StudentResult{
		Success: true,
		Message: "Registration successful",
		Student: student.Public(),
	})
}

// Login handles POST /login
func (h *StudentHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	view, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StudentResult{
		Success: true,
		Message: "Login successful",
		Student: view,
	})
}
