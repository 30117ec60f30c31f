// Package metrics exposes Prometheus instrumentation for the roster.
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mcoot/courseroster/internal/model"
)

// Operation names used as the "operation" label
const (
	OpRegister        = "register"
	OpLogin           = "login"
	OpListEnrollments = "list_enrollments"
	OpEnroll          = "enroll"
	OpDrop            = "drop"
)

// Metrics holds the roster's collectors
type Metrics struct {
	Operations         *prometheus.CounterVec
	StudentsRegistered prometheus.Counter
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// Pass prometheus.NewRegistry() in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_operations_total",
			Help: "Roster operations by name and outcome",
		}, []string{"operation", "outcome"}),
		StudentsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "roster_students_registered_total",
			Help: "Total number of student accounts created",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		}, []string{"route", "method", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roster_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route"}),
	}
}

// RecordOperation counts one operation, classifying err into an outcome label.
func (m *Metrics) RecordOperation(op string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, Outcome(err)).Inc()
}

// IncrementStudentsRegistered records a successful registration.
func (m *Metrics) IncrementStudentsRegistered() {
	if m == nil {
		return
	}
	m.StudentsRegistered.Inc()
}

// ObserveHTTP records one served request.
// Call with time.Now() taken at the start of the request.
func (m *Metrics) ObserveHTTP(route, method string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

// Outcome maps an operation result onto a small, fixed set of label values.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case model.IsStorageError(err):
		return "storage_error"
	case errors.Is(err, model.ErrStudentNotFound):
		return "not_found"
	case errors.Is(err, model.ErrInvalidCredentials):
		return "unauthorized"
	case errors.Is(err, model.ErrUsernameTaken),
		errors.Is(err, model.ErrAlreadyEnrolled),
		errors.Is(err, model.ErrCourseNotEnrolled):
		return "conflict"
	case errors.Is(err, model.ErrUsernameRequired),
		errors.Is(err, model.ErrCourseIDRequired):
		return "invalid"
	default:
		return "error"
	}
}
