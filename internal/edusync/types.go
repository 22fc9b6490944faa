package edusync

import "time"

// Roles known to the EduSync API.
const (
	RoleStudent    = "Student"
	RoleInstructor = "Instructor"
)

// User is the record returned by a successful login.
type User struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	Token  string `json:"token,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// MessageResponse is the generic acknowledgement body. Token is only filled
// by development backends answering a forgot-password request.
type MessageResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type Course struct {
	CourseID       string `json:"courseId"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	InstructorID   string `json:"instructorId"`
	InstructorName string `json:"instructorName,omitempty"`
	MediaURL       string `json:"mediaUrl,omitempty"`
}

// CourseInput is the body for both create and update.
type CourseInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	InstructorID string `json:"instructorId"`
	MediaURL     string `json:"mediaUrl,omitempty"`
}

// Assessment as stored by the API. Questions is the encoded question array,
// kept as an opaque string by the backend.
type Assessment struct {
	AssessmentID string `json:"assessmentId"`
	CourseID     string `json:"courseId"`
	Title        string `json:"title"`
	Questions    string `json:"questions"`
	MaxScore     int    `json:"maxScore"`
}

type CreateAssessmentRequest struct {
	CourseID  string `json:"courseId"`
	Title     string `json:"title"`
	Questions string `json:"questions"`
	MaxScore  int    `json:"maxScore"`
}

type UpdateAssessmentRequest struct {
	Title     string `json:"title"`
	Questions string `json:"questions"`
	MaxScore  int    `json:"maxScore"`
}

type SubmitResultRequest struct {
	AssessmentID string `json:"assessmentId"`
	UserID       string `json:"userId"`
	Score        int    `json:"score"`
}

type Result struct {
	ResultID        string    `json:"resultId"`
	AssessmentID    string    `json:"assessmentId"`
	AssessmentTitle string    `json:"assessmentTitle,omitempty"`
	UserID          string    `json:"userId"`
	UserName        string    `json:"userName,omitempty"`
	Score           int       `json:"score"`
	AttemptDate     time.Time `json:"attemptDate"`
}

type UploadResult struct {
	URL      string `json:"url"`
	BlobName string `json:"blobName"`
}
