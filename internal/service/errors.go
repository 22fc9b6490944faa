package service

import "errors"

// Authorization and workflow errors, detected from data the portal already
// fetched.
var (
	ErrAccessDenied         = errors.New("access denied")
	ErrInstructorOnly       = errors.New("instructor role required")
	ErrNotOwner             = errors.New("you do not own this course")
	ErrAssessmentMismatch   = errors.New("assessment does not belong to course")
	ErrConfirmationRequired = errors.New("destructive action needs confirmation")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionInvalidated   = errors.New("session invalidated")
	ErrSubmitInProgress     = errors.New("submission already in progress")
	ErrCorruptAssessment    = errors.New("stored assessment questions are unreadable")
)
