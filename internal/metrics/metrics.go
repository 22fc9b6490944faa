// Package metrics declares the portal's Prometheus collectors.
package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// QuizSubmissions counts graded attempts by outcome: submitted, failed, refused.
	QuizSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Quiz attempt submissions by outcome",
		},
		[]string{"outcome"},
	)

	// AssessmentSaves counts assessments written upstream by mode: create, edit.
	AssessmentSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_saves_total",
			Help: "Assessments saved from authoring drafts",
		},
		[]string{"mode"},
	)
)

var once sync.Once

// Init registers all collectors with the default registry. Safe to call twice.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(RequestCounter, RequestDuration, QuizSubmissions, AssessmentSaves)
	})
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
