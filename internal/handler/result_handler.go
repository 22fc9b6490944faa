package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/edusync/edusync-portal/internal/response"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const keepAliveInterval = 30 * time.Second

// ResultHandler serves learner results, instructor reports and the live feed.
type ResultHandler struct {
	results *service.ResultService
	log     zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(results *service.ResultService, log zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		results: results,
		log:     log.With().Str("component", "result_handler").Logger(),
	}
}

// MyResults godoc
// GET /api/v1/results/me
func (h *ResultHandler) MyResults(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	results, err := h.results.MyResults(c.Request.Context(), sc)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// MySubmissions godoc
// GET /api/v1/submissions/me?page=&per_page=
// Lists the portal's own ledger, including submissions the backend refused.
func (h *ResultHandler) MySubmissions(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(service.DefaultLedgerPageSize)))

	p, err := h.results.MySubmissions(c.Request.Context(), sc, page, perPage)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"submissions": p.Entries}, &response.Pagination{
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalItems: p.Total,
		TotalPages: (p.Total + p.PerPage - 1) / p.PerPage,
	})
}

// AssessmentResults godoc
// GET /api/v1/courses/:id/assessments/:aid/results
func (h *ResultHandler) AssessmentResults(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	res, err := h.results.AssessmentResults(c.Request.Context(), sc, c.Param("id"), c.Param("aid"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Performance godoc
// GET /api/v1/instructor/performance?courseId=&assessmentId=
func (h *ResultHandler) Performance(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	courseID, assessmentID := c.Query("courseId"), c.Query("assessmentId")
	if courseID == "" || assessmentID == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"courseId":     "courseId is required",
			"assessmentId": "assessmentId is required",
		})
		return
	}
	sum, err := h.results.Performance(c.Request.Context(), sc, courseID, assessmentID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, sum)
}

// StreamResults godoc
// GET /api/v1/courses/:id/assessments/:aid/results/stream
// Server-sent events: one "result" event per stored submission, pings in between.
func (h *ResultHandler) StreamResults(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	assessmentID := c.Param("aid")
	reqCtx := c.Request.Context()

	pubsub, err := h.results.Subscribe(reqCtx, sc, c.Param("id"), assessmentID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	defer pubsub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	ch := pubsub.Channel()
	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	h.log.Info().Str("assessment_id", assessmentID).Msg("Instructor attached to results feed")
	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("assessment_id", assessmentID).Msg("Instructor detached from results feed")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Payload is already a JSON ResultEvent.
			writeSSE(c, "result", []byte(msg.Payload))

		case <-keepAlive.C:
			writeSSE(c, "ping", pingPayload)
		}
	}
}

func writeSSE(c *gin.Context, event string, data []byte) {
	_, _ = c.Writer.Write([]byte("event: " + event + "\ndata: "))
	_, _ = c.Writer.Write(data)
	_, _ = c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}
