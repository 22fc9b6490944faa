package handler

import (
	"net/http"

	"github.com/edusync/edusync-portal/internal/model"
	"github.com/edusync/edusync-portal/internal/response"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/edusync/edusync-portal/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CourseHandler handles course endpoints.
type CourseHandler struct {
	courseService  *service.CourseService
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService, maxUploadBytes int64, log zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courseService:  courseService,
		maxUploadBytes: maxUploadBytes,
		log:            log.With().Str("component", "course_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	courses, err := h.courseService.List(c.Request.Context(), sc)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// ListOwned godoc
// GET /api/v1/instructor/courses
func (h *CourseHandler) ListOwned(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	courses, err := h.courseService.ListOwned(c.Request.Context(), sc)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// Get godoc
// GET /api/v1/courses/:id
// Returns the course followed by its assessments.
func (h *CourseHandler) Get(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	detail, err := h.courseService.Detail(c.Request.Context(), sc, c.Param("id"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// Create godoc
// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	var req model.CourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), sc, req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, course)
}

// Update godoc
// PUT /api/v1/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	var req model.CourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.courseService.Update(c.Request.Context(), sc, c.Param("id"), req); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Delete godoc
// DELETE /api/v1/courses/:id?confirm=true
func (h *CourseHandler) Delete(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), sc, c.Param("id"), confirmed(c)); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// AttachMedia godoc
// POST /api/v1/courses/:id/media
// Uploads multipart field "file" and stores its blob name on the course.
func (h *CourseHandler) AttachMedia(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	file, header, ok := formFile(c, h.maxUploadBytes)
	if !ok {
		return
	}
	defer file.Close()

	up, err := h.courseService.AttachMedia(c.Request.Context(), sc, c.Param("id"), header.Filename, file)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, up)
}
