package handler

import (
	"net/http"

	"github.com/mcoot/courseroster/internal/api/apierr"
	"github.com/mcoot/courseroster/internal/api/response"
	"github.com/mcoot/courseroster/internal/services/catalog"
)

// CatalogHandler serves the course catalog and testimonials
type CatalogHandler struct {
	catalog *catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalogService,
	}
}

// Courses handles GET /courses
func (h *CatalogHandler) Courses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.catalog.Courses(r.Context())
	if err != nil {
		WriteError(w, apierr.NewInternalError(err.Error()))
		return
	}
	response.JSON(w, http.StatusOK, courses)
}

// Testimonials handles GET /testimonials
func (h *CatalogHandler) Testimonials(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.catalog.Testimonials(r.Context()))
}
