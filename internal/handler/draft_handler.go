package handler

import (
	"net/http"

	"github.com/edusync/edusync-portal/internal/model"
	"github.com/edusync/edusync-portal/internal/response"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/edusync/edusync-portal/internal/session"
	"github.com/edusync/edusync-portal/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DraftHandler exposes the question-set builder over authoring drafts.
type DraftHandler struct {
	authoring *service.AuthoringService
	log       zerolog.Logger
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(authoring *service.AuthoringService, log zerolog.Logger) *DraftHandler {
	return &DraftHandler{
		authoring: authoring,
		log:       log.With().Str("component", "draft_handler").Logger(),
	}
}

// draftResult writes a draft view or the error that prevented it.
func (h *DraftHandler) draftResult(c *gin.Context, status int, v *model.DraftView, err error) {
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, status, v)
}

// withQuestion resolves the session and :q before running fn.
func (h *DraftHandler) withQuestion(c *gin.Context, fn func(sc *session.Context, q int) (*model.DraftView, error)) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	q, ok := indexParam(c, "q")
	if !ok {
		return
	}
	v, err := fn(sc, q)
	h.draftResult(c, http.StatusOK, v, err)
}

// ─── Draft lifecycle ─────────────────────────────────────────────────────────

// Create godoc
// POST /api/v1/courses/:id/drafts
// Starts a new assessment with one default question.
func (h *DraftHandler) Create(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	v, err := h.authoring.NewDraft(c.Request.Context(), sc, c.Param("id"))
	h.draftResult(c, http.StatusCreated, v, err)
}

// Edit godoc
// POST /api/v1/assessments/:id/drafts
// Opens an existing assessment for editing.
func (h *DraftHandler) Edit(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	v, err := h.authoring.EditDraft(c.Request.Context(), sc, c.Param("id"))
	h.draftResult(c, http.StatusCreated, v, err)
}

// Get godoc
// GET /api/v1/drafts/:id
func (h *DraftHandler) Get(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	v, err := h.authoring.GetDraft(c.Request.Context(), sc, c.Param("id"))
	h.draftResult(c, http.StatusOK, v, err)
}

// Discard godoc
// DELETE /api/v1/drafts/:id
func (h *DraftHandler) Discard(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	if err := h.authoring.DiscardDraft(c.Request.Context(), sc, c.Param("id")); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// SetTitle godoc
// PUT /api/v1/drafts/:id/title
func (h *DraftHandler) SetTitle(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	var req model.DraftTitleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	v, err := h.authoring.SetTitle(c.Request.Context(), sc, c.Param("id"), req.Title)
	h.draftResult(c, http.StatusOK, v, err)
}

// Submit godoc
// POST /api/v1/drafts/:id/submit
// Validates, then creates or updates the assessment and discards the draft.
func (h *DraftHandler) Submit(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	out, err := h.authoring.Submit(c.Request.Context(), sc, c.Param("id"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	status := http.StatusOK
	if out.Mode == model.DraftModeCreate {
		status = http.StatusCreated
	}
	response.Success(c, status, out)
}

// DeleteAssessment godoc
// DELETE /api/v1/assessments/:id?confirm=true
func (h *DraftHandler) DeleteAssessment(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	if err := h.authoring.DeleteAssessment(c.Request.Context(), sc, c.Param("id"), confirmed(c)); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ─── Questions ───────────────────────────────────────────────────────────────

// AddQuestion godoc
// POST /api/v1/drafts/:id/questions
func (h *DraftHandler) AddQuestion(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	v, err := h.authoring.AddQuestion(c.Request.Context(), sc, c.Param("id"))
	h.draftResult(c, http.StatusCreated, v, err)
}

// RemoveQuestion godoc
// DELETE /api/v1/drafts/:id/questions/:q
func (h *DraftHandler) RemoveQuestion(c *gin.Context) {
	h.withQuestion(c, func(sc *session.Context, q int) (*model.DraftView, error) {
		return h.authoring.RemoveQuestion(c.Request.Context(), sc, c.Param("id"), q)
	})
}

// UpdateQuestion godoc
// PATCH /api/v1/drafts/:id/questions/:q
func (h *DraftHandler) UpdateQuestion(c *gin.Context) {
	var req model.QuestionPatchRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.withQuestion(c, func(sc *session.Context, q int) (*model.DraftView, error) {
		return h.authoring.UpdateQuestion(c.Request.Context(), sc, c.Param("id"), q, req)
	})
}

// ChangeType godoc
// PUT /api/v1/drafts/:id/questions/:q/type
// Resets the options to the defaults of the new type and clears the answer.
func (h *DraftHandler) ChangeType(c *gin.Context) {
	var req model.QuestionTypeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.withQuestion(c, func(sc *session.Context, q int) (*model.DraftView, error) {
		return h.authoring.ChangeType(c.Request.Context(), sc, c.Param("id"), q, req.Type)
	})
}

// SelectCorrect godoc
// PUT /api/v1/drafts/:id/questions/:q/correct
func (h *DraftHandler) SelectCorrect(c *gin.Context) {
	var req model.CorrectAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.withQuestion(c, func(sc *session.Context, q int) (*model.DraftView, error) {
		return h.authoring.SelectCorrect(c.Request.Context(), sc, c.Param("id"), q, req.Value)
	})
}

// ─── Options ─────────────────────────────────────────────────────────────────

// AddOption godoc
// POST /api/v1/drafts/:id/questions/:q/options
func (h *DraftHandler) AddOption(c *gin.Context) {
	h.withQuestion(c, func(sc *session.Context, q int) (*model.DraftView, error) {
		return h.authoring.AddOption(c.Request.Context(), sc, c.Param("id"), q)
	})
}

// RemoveOption godoc
// DELETE /api/v1/drafts/:id/questions/:q/options/:o
func (h *DraftHandler) RemoveOption(c *gin.Context) {
	o, ok := indexParam(c, "o")
	if !ok {
		return
	}
	h.withQuestion(c, func(sc *session.Context, q int) (*model.DraftView, error) {
		return h.authoring.RemoveOption(c.Request.Context(), sc, c.Param("id"), q, o)
	})
}

// SetOptionText godoc
// PUT /api/v1/drafts/:id/questions/:q/options/:o
func (h *DraftHandler) SetOptionText(c *gin.Context) {
	o, ok := indexParam(c, "o")
	if !ok {
		return
	}
	var req model.OptionTextRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.withQuestion(c, func(sc *session.Context, q int) (*model.DraftView, error) {
		return h.authoring.SetOptionText(c.Request.Context(), sc, c.Param("id"), q, o, req.Text)
	})
}
