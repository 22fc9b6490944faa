package model

import "github.com/edusync/edusync-portal/internal/edusync"

// CourseRequest is the payload for creating or updating a course. The
// instructor is always the caller.
type CourseRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=200"`
	Description string `json:"description" binding:"max=4000"`
	MediaURL    string `json:"mediaUrl" binding:"omitempty,max=2048"`
}

// CourseDetail is a course with its assessments, fetched in sequence.
type CourseDetail struct {
	edusync.Course
	MediaDownloadURL string               `json:"mediaDownloadUrl,omitempty"`
	Assessments      []edusync.Assessment `json:"assessments"`
	CanEdit          bool                 `json:"canEdit"`
}
