package handler

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/edusync/edusync-portal/internal/quiz"
	"github.com/edusync/edusync-portal/internal/repository"
	"github.com/edusync/edusync-portal/internal/response"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/gin-gonic/gin"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    response.ErrCode
		message string
	}{
		{"validation", &quiz.ValidationError{Message: "All questions must have text."}, 422, response.ErrInvalidQuestion, "All questions must have text."},
		{"last question", quiz.ErrLastQuestion, 409, response.ErrLastQuestion, ""},
		{"too many options", fmt.Errorf("add: %w", quiz.ErrTooManyOptions), 409, response.ErrOptionLimit, "add: question already has the maximum number of options"},
		{"fixed options", quiz.ErrOptionsFixed, 409, response.ErrOptionsFixed, ""},
		{"unknown key", fmt.Errorf("%w: q9", quiz.ErrUnknownKey), 400, response.ErrUnknownQuestionKey, ""},
		{"closed attempt", quiz.ErrNotAnswering, 409, response.ErrAttemptClosed, ""},
		{"draft missing", repository.ErrDraftNotFound, 404, response.ErrDraftNotFound, ""},
		{"draft race", repository.ErrConcurrentUpdate, 409, response.ErrDraftConflict, ""},
		{"not owner", service.ErrNotOwner, 403, response.ErrNotCourseOwner, ""},
		{"instructor only", service.ErrInstructorOnly, 403, response.ErrInstructorOnly, ""},
		{"bad credentials", fmt.Errorf("%w: upstream", service.ErrInvalidCredentials), 401, response.ErrInvalidCredentials, ""},
		{"submit lock", service.ErrSubmitInProgress, 409, response.ErrSubmitInProgress, ""},
		{"corrupt assessment", fmt.Errorf("%w: %v", service.ErrCorruptAssessment, quiz.ErrUnknownType), 502, response.ErrUpstream, "The server returned an unreadable assessment."},
		{"upstream transport", &edusync.APIError{Op: "list courses", Message: "Network error. Please check your connection."}, 502, response.ErrUpstreamUnavailable, "Network error. Please check your connection."},
		{"upstream 404", &edusync.APIError{Op: "get course", StatusCode: 404, Message: "Course not found."}, 404, response.ErrNotFound, "Course not found."},
		{"upstream 500", &edusync.APIError{Op: "submit result", StatusCode: 500, Message: "Failed to submit result."}, 502, response.ErrUpstream, "Failed to submit result."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := classify(tt.err)
			if !ok {
				t.Fatal("not classified")
			}
			if f.status != tt.status || f.code != tt.code || f.message != tt.message {
				t.Fatalf("got %d %s %q, want %d %s %q", f.status, f.code, f.message, tt.status, tt.code, tt.message)
			}
		})
	}

	if _, ok := classify(errors.New("boom")); ok {
		t.Fatal("unknown error classified")
	}
}

func TestFormFileLimits(t *testing.T) {
	gin.SetMode(gin.TestMode)

	build := func(size int) *http.Request {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, _ := mw.CreateFormFile("file", "notes.txt")
		_, _ = fw.Write(bytes.Repeat([]byte("x"), size))
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/upload", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	tests := []struct {
		name   string
		req    *http.Request
		limit  int64
		ok     bool
		status int
	}{
		{"within limit", build(10), 4096, true, http.StatusOK},
		{"too large", build(8192), 1024, false, http.StatusRequestEntityTooLarge},
		{"missing field", httptest.NewRequest(http.MethodPost, "/upload", nil), 1024, false, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = tt.req

			file, header, ok := formFile(c, tt.limit)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok {
				defer file.Close()
				if header.Filename != "notes.txt" {
					t.Fatalf("filename = %q", header.Filename)
				}
				return
			}
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestIndexParamAndConfirm(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/x?confirm=true", nil)
	c.Params = gin.Params{{Key: "q", Value: "2"}, {Key: "o", Value: "-1"}}

	if i, ok := indexParam(c, "q"); !ok || i != 2 {
		t.Fatalf("q = %d, %v", i, ok)
	}
	if !confirmed(c) {
		t.Fatal("confirm=true not recognised")
	}
	if _, ok := indexParam(c, "o"); ok {
		t.Fatal("negative index accepted")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
