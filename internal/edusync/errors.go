package edusync

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"
)

// maxPlainMessage is the longest plain-text body surfaced verbatim.
const maxPlainMessage = 200

// APIError is a failed call to the EduSync API. StatusCode is zero when no
// response arrived at all. Message is always safe to show to a user.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// Transport reports whether the request never got a response.
func (e *APIError) Transport() bool { return e.StatusCode == 0 }

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsNotFound reports whether the API answered 404.
func IsNotFound(err error) bool { return IsStatus(err, http.StatusNotFound) }

// problem covers both the API's own {message} bodies and RFC 7807 payloads.
type problem struct {
	Message string `json:"message"`
	Title   string `json:"title"`
}

// messageFromBody picks the most useful text out of an error body: a
// structured message, then a problem title, then a short plain body, and
// finally the caller's fallback.
func messageFromBody(body []byte, fallback string) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fallback
	}

	var p problem
	if err := json.Unmarshal(body, &p); err == nil {
		if p.Message != "" {
			return p.Message
		}
		if p.Title != "" {
			return p.Title
		}
		return fallback
	}

	// A bare JSON string is still plain text to the user.
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		trimmed = s
	}
	if trimmed != "" && utf8.RuneCountInString(trimmed) < maxPlainMessage && !strings.HasPrefix(trimmed, "<") {
		return trimmed
	}
	return fallback
}
