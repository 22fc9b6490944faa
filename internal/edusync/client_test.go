package edusync_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *edusync.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return edusync.NewClient(srv.URL+"/", 5*time.Second, zerolog.Nop())
}

func TestLoginSendsCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var in edusync.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Email != "ada@example.com" || in.Password != "secret" {
			t.Errorf("body = %+v", in)
		}
		_ = json.NewEncoder(w).Encode(edusync.User{UserID: "u1", Name: "Ada", Role: "Instructor", Token: "tok"})
	})

	u, err := c.Login(context.Background(), edusync.LoginRequest{Email: "ada@example.com", Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if u.UserID != "u1" || u.Role != edusync.RoleInstructor || u.Token != "tok" {
		t.Fatalf("user = %+v", u)
	}
}

func TestWithTokenSetsBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("Authorization = %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.WithToken("abc").DeleteCourse(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}
}

func TestRequestIDForwarded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(edusync.HeaderRequestID); got != "req-42" {
			t.Errorf("%s = %q", edusync.HeaderRequestID, got)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := edusync.WithRequestID(context.Background(), "req-42")
	if err := c.DeleteCourse(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	if edusync.RequestID(context.Background()) != "" {
		t.Fatal("bare context carries a request id")
	}
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name   string
		status int
		ctype  string
		body   string
		want   string
	}{
		{"structured message", 400, "application/json", `{"message":"Email already registered."}`, "Email already registered."},
		{"problem title", 400, "application/problem+json", `{"title":"One or more validation errors occurred.","status":400}`, "One or more validation errors occurred."},
		{"short plain text", 400, "text/plain", "Invalid credentials", "Invalid credentials"},
		{"json string", 401, "application/json", `"Invalid credentials"`, "Invalid credentials"},
		{"empty body", 500, "text/plain", "", "Failed to create course. Please try again."},
		{"html page", 502, "text/html", "<html><body>Bad gateway</body></html>", "Failed to create course. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.ctype)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.CreateCourse(context.Background(), edusync.CourseInput{Title: "x"})
			var apiErr *edusync.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Message != tt.want {
				t.Fatalf("got %d %q, want %d %q", apiErr.StatusCode, apiErr.Message, tt.status, tt.want)
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := edusync.NewClient(url, time.Second, zerolog.Nop())
	_, err := c.ListCourses(context.Background())
	var apiErr *edusync.APIError
	if !errors.As(err, &apiErr) || !apiErr.Transport() {
		t.Fatalf("err = %v, want transport APIError", err)
	}
	if apiErr.Message != "Failed to fetch courses. Please try again." {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestContextCancellation(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetAssessment(ctx, "a1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := c.GetCourse(context.Background(), "missing")
	if !edusync.IsNotFound(err) {
		t.Fatalf("err = %v, want 404", err)
	}
}

func TestAssessmentRoundTrip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/courses/c1/assessments":
			_ = json.NewEncoder(w).Encode([]edusync.Assessment{{AssessmentID: "a1", CourseID: "c1", Title: "Quiz", Questions: "[]", MaxScore: 0}})
		case r.Method == http.MethodPut && r.URL.Path == "/api/assessments/a1":
			var in edusync.UpdateAssessmentRequest
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in.MaxScore != 25 || in.Title != "Quiz 2" {
				t.Errorf("update body = %+v", in)
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	})

	list, err := c.ListAssessments(context.Background(), "c1")
	if err != nil || len(list) != 1 || list[0].Questions != "[]" {
		t.Fatalf("list = %+v, %v", list, err)
	}
	if err := c.UpdateAssessment(context.Background(), "a1", edusync.UpdateAssessmentRequest{Title: "Quiz 2", Questions: "[]", MaxScore: 25}); err != nil {
		t.Fatal(err)
	}
}

func TestUploadFileMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "notes.pdf" || string(data) != "%PDF-1.4" {
			t.Errorf("got %s %q", hdr.Filename, data)
		}
		_ = json.NewEncoder(w).Encode(edusync.UploadResult{URL: "https://blob/x", BlobName: "abc_notes.pdf"})
	})

	res, err := c.UploadFile(context.Background(), "notes.pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatal(err)
	}
	if res.BlobName != "abc_notes.pdf" {
		t.Fatalf("result = %+v", res)
	}
}

func TestDownload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/files/download/dir/my file.txt" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Disposition", `attachment; filename="my file.txt"`)
		_, _ = io.WriteString(w, "hello")
	})

	if got := c.DownloadURL(""); got != "" {
		t.Fatalf("DownloadURL(\"\") = %q", got)
	}
	d, err := c.Download(context.Background(), "dir/my file.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Body.Close()
	body, _ := io.ReadAll(d.Body)
	if string(body) != "hello" || d.ContentDisposition == "" {
		t.Fatalf("body=%q disposition=%q", body, d.ContentDisposition)
	}
}
