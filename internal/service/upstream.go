package service

import (
	"context"
	"io"

	"github.com/edusync/edusync-portal/internal/edusync"
)

// EduSyncAPI is the part of the EduSync client the services use.
type EduSyncAPI interface {
	Login(ctx context.Context, in edusync.LoginRequest) (*edusync.User, error)
	Register(ctx context.Context, in edusync.RegisterRequest) (*edusync.User, error)
	ForgotPassword(ctx context.Context, in edusync.ForgotPasswordRequest) (*edusync.MessageResponse, error)
	ResetPassword(ctx context.Context, in edusync.ResetPasswordRequest) (*edusync.MessageResponse, error)

	ListCourses(ctx context.Context) ([]edusync.Course, error)
	GetCourse(ctx context.Context, courseID string) (*edusync.Course, error)
	CreateCourse(ctx context.Context, in edusync.CourseInput) (*edusync.Course, error)
	UpdateCourse(ctx context.Context, courseID string, in edusync.CourseInput) error
	DeleteCourse(ctx context.Context, courseID string) error

	ListAssessments(ctx context.Context, courseID string) ([]edusync.Assessment, error)
	GetAssessment(ctx context.Context, assessmentID string) (*edusync.Assessment, error)
	CreateAssessment(ctx context.Context, in edusync.CreateAssessmentRequest) (*edusync.Assessment, error)
	UpdateAssessment(ctx context.Context, assessmentID string, in edusync.UpdateAssessmentRequest) error
	DeleteAssessment(ctx context.Context, assessmentID string) error

	SubmitResult(ctx context.Context, in edusync.SubmitResultRequest) (*edusync.Result, error)
	ResultsForUser(ctx context.Context, userID string) ([]edusync.Result, error)
	ResultsForAssessment(ctx context.Context, assessmentID string) ([]edusync.Result, error)

	UploadFile(ctx context.Context, filename string, r io.Reader) (*edusync.UploadResult, error)
	DownloadURL(blobName string) string
	Download(ctx context.Context, blobName string) (*edusync.Download, error)
}

// Upstream hands out API handles bound to a caller's EduSync token.
type Upstream interface {
	As(token string) EduSyncAPI
}

type clientUpstream struct {
	client *edusync.Client
}

// NewUpstream wraps a shared client.
func NewUpstream(client *edusync.Client) Upstream {
	return clientUpstream{client: client}
}

func (u clientUpstream) As(token string) EduSyncAPI {
	return u.client.WithToken(token)
}
