package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/edusync/edusync-portal/internal/model"
	"github.com/edusync/edusync-portal/internal/session"
	"github.com/rs/zerolog"
)

// CourseService coordinates course reads and instructor-only course changes.
type CourseService struct {
	api Upstream
	log zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(api Upstream, log zerolog.Logger) *CourseService {
	return &CourseService{api: api, log: log.With().Str("component", "course_service").Logger()}
}

// List returns every course.
func (s *CourseService) List(ctx context.Context, sc *session.Context) ([]edusync.Course, error) {
	courses, err := clientFor(s.api, sc).ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []edusync.Course{}
	}
	return courses, nil
}

// ListOwned returns the caller's own courses.
func (s *CourseService) ListOwned(ctx context.Context, sc *session.Context) ([]edusync.Course, error) {
	if !sc.IsInstructor() {
		return nil, ErrInstructorOnly
	}
	all, err := s.List(ctx, sc)
	if err != nil {
		return nil, err
	}
	owned := make([]edusync.Course, 0, len(all))
	for _, c := range all {
		if sc.Owns(c.InstructorID) {
			owned = append(owned, c)
		}
	}
	return owned, nil
}

// Detail fetches a course and then its assessments. The second call is only
// made once the first succeeded; a cancelled ctx stops the chain.
func (s *CourseService) Detail(ctx context.Context, sc *session.Context, courseID string) (*model.CourseDetail, error) {
	api := clientFor(s.api, sc)
	course, err := api.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	assessments, err := api.ListAssessments(ctx, course.CourseID)
	if err != nil {
		return nil, err
	}
	if assessments == nil {
		assessments = []edusync.Assessment{}
	}

	detail := &model.CourseDetail{
		Course:      *course,
		Assessments: assessments,
		CanEdit:     sc.IsInstructor() && sc.Owns(course.InstructorID),
	}
	if isBlobName(course.MediaURL) {
		detail.MediaDownloadURL = api.DownloadURL(course.MediaURL)
	}
	return detail, nil
}

// Create makes the caller the instructor of a new course.
func (s *CourseService) Create(ctx context.Context, sc *session.Context, req model.CourseRequest) (*edusync.Course, error) {
	u, err := requireInstructor(sc)
	if err != nil {
		return nil, err
	}
	course, err := clientFor(s.api, sc).CreateCourse(ctx, edusync.CourseInput{
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: u.UserID,
		MediaURL:     req.MediaURL,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("course_id", course.CourseID).Str("instructor_id", u.UserID).Msg("Course created")
	return course, nil
}

// Update changes an owned course.
func (s *CourseService) Update(ctx context.Context, sc *session.Context, courseID string, req model.CourseRequest) error {
	course, err := s.OwnedCourse(ctx, sc, courseID)
	if err != nil {
		return err
	}
	return clientFor(s.api, sc).UpdateCourse(ctx, courseID, edusync.CourseInput{
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: course.InstructorID,
		MediaURL:     req.MediaURL,
	})
}

// Delete removes an owned course. It refuses unless confirmed.
func (s *CourseService) Delete(ctx context.Context, sc *session.Context, courseID string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if _, err := s.OwnedCourse(ctx, sc, courseID); err != nil {
		return err
	}
	if err := clientFor(s.api, sc).DeleteCourse(ctx, courseID); err != nil {
		return err
	}
	s.log.Info().Str("course_id", courseID).Msg("Course deleted")
	return nil
}

// AttachMedia uploads a file and records its blob name on an owned course.
func (s *CourseService) AttachMedia(ctx context.Context, sc *session.Context, courseID, filename string, r io.Reader) (*model.UploadResponse, error) {
	course, err := s.OwnedCourse(ctx, sc, courseID)
	if err != nil {
		return nil, err
	}
	api := clientFor(s.api, sc)
	up, err := api.UploadFile(ctx, filename, r)
	if err != nil {
		return nil, err
	}
	err = api.UpdateCourse(ctx, courseID, edusync.CourseInput{
		Title:        course.Title,
		Description:  course.Description,
		InstructorID: course.InstructorID,
		MediaURL:     up.BlobName,
	})
	if err != nil {
		return nil, fmt.Errorf("attach media: %w", err)
	}
	return &model.UploadResponse{URL: up.URL, BlobName: up.BlobName, DownloadURL: api.DownloadURL(up.BlobName)}, nil
}

// OwnedCourse fetches a course and checks the caller is its instructor.
func (s *CourseService) OwnedCourse(ctx context.Context, sc *session.Context, courseID string) (*edusync.Course, error) {
	return ownedCourse(ctx, clientFor(s.api, sc), sc, courseID)
}

func ownedCourse(ctx context.Context, api EduSyncAPI, sc *session.Context, courseID string) (*edusync.Course, error) {
	if _, err := requireInstructor(sc); err != nil {
		return nil, err
	}
	course, err := api.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !sc.Owns(course.InstructorID) {
		return nil, ErrNotOwner
	}
	return course, nil
}

func requireInstructor(sc *session.Context) (session.User, error) {
	u, ok := sc.Current()
	if !ok {
		return session.User{}, ErrAccessDenied
	}
	if u.Role != edusync.RoleInstructor {
		return session.User{}, ErrInstructorOnly
	}
	return u, nil
}

// clientFor binds the API to the session's upstream token.
func clientFor(api Upstream, sc *session.Context) EduSyncAPI {
	u, _ := sc.Current()
	return api.As(u.Token)
}

// isBlobName reports whether a media reference is a stored blob rather than
// an external link.
func isBlobName(ref string) bool {
	if ref == "" {
		return false
	}
	lower := strings.ToLower(ref)
	return !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://")
}
