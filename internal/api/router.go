package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/courseroster/internal/api/handler"
	apimiddleware "github.com/mcoot/courseroster/internal/api/middleware"
	"github.com/mcoot/courseroster/internal/api/response"
	"github.com/mcoot/courseroster/internal/metrics"
	"github.com/mcoot/courseroster/internal/middleware"
	"github.com/mcoot/courseroster/internal/services/auth"
	"github.com/mcoot/courseroster/internal/services/catalog"
	"github.com/mcoot/courseroster/internal/services/enrollment"
	"github.com/mcoot/courseroster/internal/services/registrar"
)

// Banner is the body of GET /
const Banner = "LMS Flask Backend is running!"

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	Registrar         *registrar.Service
	AuthService       *auth.Service
	EnrollmentService *enrollment.Service
	CatalogService    *catalog.Service
	Metrics           *metrics.Metrics
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	studentHandler := handler.NewStudentHandler(cfg.Registrar, cfg.AuthService)
	enrollmentHandler := handler.NewEnrollmentHandler(cfg.EnrollmentService)
	catalogHandler := handler.NewCatalogHandler(cfg.CatalogService)

	// Middleware, outermost first
	r.Use(middleware.RequestID)
	r.Use(apimiddleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))

	// Accounts
	r.HandleFunc("/register", studentHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", studentHandler.Login).Methods(http.MethodPost)

	// Enrollments; non-numeric ids fall through to 404
	r.HandleFunc("/student_courses/{id:[0-9]+}", enrollmentHandler.List).Methods(http.MethodGet)
	r.HandleFunc("/enroll/{id:[0-9]+}", enrollmentHandler.Enroll).Methods(http.MethodPost)
	r.HandleFunc("/drop/{id:[0-9]+}", enrollmentHandler.Drop).Methods(http.MethodPost)

	// Catalog
	r.HandleFunc("/courses", catalogHandler.Courses).Methods(http.MethodGet)
	r.HandleFunc("/testimonials", catalogHandler.Testimonials).Methods(http.MethodGet)

	r.HandleFunc("/", bannerHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return middleware.CORS(cfg.AllowedOrigins)(r)
}

func bannerHandler(w http.ResponseWriter, _ *http.Request) {
	response.Text(w, http.StatusOK, Banner)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
