package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/edusync/edusync-portal/internal/model"
	"github.com/edusync/edusync-portal/internal/repository"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/edusync/edusync-portal/internal/session"
	"github.com/rs/zerolog"
)

// ─── Upstream ────────────────────────────────────────────────────────────────

// fakeAPI is an in-memory EduSync backend. Every call is recorded by name.
type fakeAPI struct {
	mu          sync.Mutex
	calls       []string
	tokens      []string
	courses     map[string]*edusync.Course
	assessments map[string]*edusync.Assessment
	results     []edusync.Result
	submitted   []edusync.SubmitResultRequest
	submitErr   error
	loginUser   *edusync.User
	loginErr    error
	nextID      int

	// When set, CreateAssessment signals entered and waits for release.
	entered chan struct{}
	release chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		courses:     map[string]*edusync.Course{},
		assessments: map[string]*edusync.Assessment{},
	}
}

func (f *fakeAPI) As(token string) service.EduSyncAPI {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	return f
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func notFound(op string) error {
	return &edusync.APIError{Op: op, StatusCode: 404, Message: "Not found."}
}

func (f *fakeAPI) Login(_ context.Context, in edusync.LoginRequest) (*edusync.User, error) {
	f.record("Login")
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginUser, nil
}

func (f *fakeAPI) Register(_ context.Context, in edusync.RegisterRequest) (*edusync.User, error) {
	f.record("Register")
	return &edusync.User{UserID: "new", Name: in.Name, Email: in.Email, Role: in.Role}, nil
}

func (f *fakeAPI) ForgotPassword(context.Context, edusync.ForgotPasswordRequest) (*edusync.MessageResponse, error) {
	f.record("ForgotPassword")
	return &edusync.MessageResponse{Message: "sent"}, nil
}

func (f *fakeAPI) ResetPassword(context.Context, edusync.ResetPasswordRequest) (*edusync.MessageResponse, error) {
	f.record("ResetPassword")
	return &edusync.MessageResponse{Message: "reset"}, nil
}

func (f *fakeAPI) ListCourses(context.Context) ([]edusync.Course, error) {
	f.record("ListCourses")
	var out []edusync.Course
	for _, c := range f.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeAPI) GetCourse(_ context.Context, id string) (*edusync.Course, error) {
	f.record("GetCourse")
	c, ok := f.courses[id]
	if !ok {
		return nil, notFound("get course")
	}
	cp := *c
	return &cp, nil
}

func (f *fakeAPI) CreateCourse(_ context.Context, in edusync.CourseInput) (*edusync.Course, error) {
	f.record("CreateCourse")
	f.nextID++
	c := &edusync.Course{CourseID: "c-new", Title: in.Title, Description: in.Description, InstructorID: in.InstructorID, MediaURL: in.MediaURL}
	f.courses[c.CourseID] = c
	return c, nil
}

func (f *fakeAPI) UpdateCourse(_ context.Context, id string, in edusync.CourseInput) error {
	f.record("UpdateCourse")
	c, ok := f.courses[id]
	if !ok {
		return notFound("update course")
	}
	c.Title, c.Description, c.MediaURL = in.Title, in.Description, in.MediaURL
	return nil
}

func (f *fakeAPI) DeleteCourse(_ context.Context, id string) error {
	f.record("DeleteCourse")
	delete(f.courses, id)
	return nil
}

func (f *fakeAPI) ListAssessments(_ context.Context, courseID string) ([]edusync.Assessment, error) {
	f.record("ListAssessments")
	var out []edusync.Assessment
	for _, a := range f.assessments {
		if a.CourseID == courseID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAPI) GetAssessment(_ context.Context, id string) (*edusync.Assessment, error) {
	f.record("GetAssessment")
	a, ok := f.assessments[id]
	if !ok {
		return nil, notFound("get assessment")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAPI) CreateAssessment(_ context.Context, in edusync.CreateAssessmentRequest) (*edusync.Assessment, error) {
	f.record("CreateAssessment")
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a := &edusync.Assessment{AssessmentID: "a-new", CourseID: in.CourseID, Title: in.Title, Questions: in.Questions, MaxScore: in.MaxScore}
	f.assessments[a.AssessmentID] = a
	return a, nil
}

func (f *fakeAPI) UpdateAssessment(_ context.Context, id string, in edusync.UpdateAssessmentRequest) error {
	f.record("UpdateAssessment")
	a, ok := f.assessments[id]
	if !ok {
		return notFound("update assessment")
	}
	a.Title, a.Questions, a.MaxScore = in.Title, in.Questions, in.MaxScore
	return nil
}

func (f *fakeAPI) DeleteAssessment(_ context.Context, id string) error {
	f.record("DeleteAssessment")
	delete(f.assessments, id)
	return nil
}

func (f *fakeAPI) SubmitResult(_ context.Context, in edusync.SubmitResultRequest) (*edusync.Result, error) {
	f.record("SubmitResult")
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, in)
	return &edusync.Result{AssessmentID: in.AssessmentID, UserID: in.UserID, Score: in.Score}, nil
}

func (f *fakeAPI) ResultsForUser(_ context.Context, userID string) ([]edusync.Result, error) {
	f.record("ResultsForUser")
	var out []edusync.Result
	for _, r := range f.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAPI) ResultsForAssessment(_ context.Context, id string) ([]edusync.Result, error) {
	f.record("ResultsForAssessment")
	var out []edusync.Result
	for _, r := range f.results {
		if r.AssessmentID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAPI) UploadFile(_ context.Context, filename string, r io.Reader) (*edusync.UploadResult, error) {
	f.record("UploadFile")
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	return &edusync.UploadResult{URL: "https://blob/" + filename, BlobName: "blob-" + filename}, nil
}

func (f *fakeAPI) DownloadURL(blob string) string {
	if blob == "" {
		return ""
	}
	return "https://api/files/download/" + blob
}

func (f *fakeAPI) Download(context.Context, string) (*edusync.Download, error) {
	f.record("Download")
	return &edusync.Download{}, nil
}

// ─── Stores ──────────────────────────────────────────────────────────────────

type memSessions struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemSessions() *memSessions { return &memSessions{data: map[string][]byte{}} }

func (m *memSessions) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	if !ok {
		return nil, session.ErrNotFound
	}
	return d, nil
}

func (m *memSessions) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func (m *memSessions) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// jsonStore round-trips records through JSON so tests see what Redis would.
type jsonStore[T any] struct {
	mu     sync.Mutex
	data   map[string][]byte
	locked map[string]bool
	notFnd error
	idOf   func(*T) string

	// guarded refuses Update while the record is locked.
	guarded bool
	// updateErrs are returned by successive Update calls; nil lets a call through.
	updateErrs []error
}

func (s *jsonStore[T]) Create(_ context.Context, v *T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[s.idOf(v)] = raw
	return nil
}

func (s *jsonStore[T]) Get(_ context.Context, id string) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[id]
	if !ok {
		return nil, s.notFnd
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *jsonStore[T]) Update(_ context.Context, id string, fn func(*T) error) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[id]
	if !ok {
		return nil, s.notFnd
	}
	if s.guarded && s.locked[id] {
		return nil, repository.ErrLocked
	}
	if len(s.updateErrs) > 0 {
		err := s.updateErrs[0]
		s.updateErrs = s.updateErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if err := fn(&v); err != nil {
		return nil, err
	}
	next, err := json.Marshal(&v)
	if err != nil {
		return nil, err
	}
	s.data[id] = next
	return &v, nil
}

func (s *jsonStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

func (s *jsonStore[T]) Lock(_ context.Context, id string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked[id] {
		return repository.ErrLocked
	}
	s.locked[id] = true
	return nil
}

func (s *jsonStore[T]) Unlock(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locked, id)
	return nil
}

func newDraftStore() *jsonStore[model.Draft] {
	return &jsonStore[model.Draft]{
		data:    map[string][]byte{},
		locked:  map[string]bool{},
		notFnd:  repository.ErrDraftNotFound,
		idOf:    func(d *model.Draft) string { return d.ID },
		guarded: true,
	}
}

func newAttemptStore() *jsonStore[model.AttemptRecord] {
	return &jsonStore[model.AttemptRecord]{
		data:   map[string][]byte{},
		locked: map[string]bool{},
		notFnd: repository.ErrAttemptNotFound,
		idOf:   func(a *model.AttemptRecord) string { return a.ID },
	}
}

type memFeed struct {
	mu     sync.Mutex
	events []model.ResultEvent
	ledger []model.LedgerEntry
	pubErr error
}

func (f *memFeed) Publish(_ context.Context, ev model.ResultEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pubErr != nil {
		return f.pubErr
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *memFeed) EnqueueLedger(_ context.Context, e model.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ledger = append(f.ledger, e)
	return nil
}

func (f *memFeed) ListByUser(_ context.Context, userID string, limit, offset int) ([]model.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.LedgerEntry
	seen := 0
	for _, e := range f.ledger {
		if e.UserID != userID {
			continue
		}
		if seen >= offset && len(out) < limit {
			out = append(out, e)
		}
		seen++
	}
	return out, nil
}

func (f *memFeed) CountByUser(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.ledger {
		if e.UserID == userID {
			n++
		}
	}
	return n, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

var (
	instructor = session.User{UserID: "i1", Name: "Ines", Role: edusync.RoleInstructor, Token: "tok-i1"}
	otherInst  = session.User{UserID: "i2", Name: "Omar", Role: edusync.RoleInstructor, Token: "tok-i2"}
	student    = session.User{UserID: "s1", Name: "Sam", Role: edusync.RoleStudent, Token: "tok-s1"}
)

// loggedIn returns a session context holding u.
func loggedIn(t *testing.T, u session.User) *session.Context {
	t.Helper()
	sc := session.NewContext(newMemSessions(), "test", zerolog.Nop())
	if err := sc.Login(context.Background(), u); err != nil {
		t.Fatalf("login: %v", err)
	}
	return sc
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("err = %v, want %v", err, target)
	}
}
