package websocket

import "github.com/edusync/edusync-portal/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload is every client message. QuestionKey and Value are only
// read for ActionAnswer.
type RequestPayload struct {
	Action      Action `json:"action"`
	QuestionKey string `json:"question_key,omitempty"`
	Value       string `json:"value,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError        Event = "error"
	EventAnswered     Event = "answered"
	EventSubmitted    Event = "submitted"
	EventSubmitFailed Event = "submit_failed"
	EventPong         Event = "pong"
)

// AttemptResponse carries the attempt after an answer or a submission. Error
// is set on EventSubmitFailed; the attempt then still holds the score.
type AttemptResponse struct {
	Event   Event              `json:"event"`
	Attempt *model.AttemptView `json:"attempt"`
	Error   string             `json:"error,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
