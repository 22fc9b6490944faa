package quiz

import (
	"encoding/json"
	"fmt"
	"math"
)

// wireQuestion is the JSON shape shared with the EduSync API. The backend
// stores the encoded array opaquely.
type wireQuestion struct {
	ID                 string   `json:"id,omitempty"`
	QuestionText       string   `json:"questionText"`
	Type               string   `json:"type"`
	Options            []Option `json:"options"`
	CorrectAnswerValue string   `json:"correctAnswerValue"`
	Points             *float64 `json:"points"`
}

// MarshalJSON keeps client ids; use Encode for the id-free wire payload.
func (q Question) MarshalJSON() ([]byte, error) {
	points := float64(q.Points)
	opts := q.Options()
	if opts == nil {
		opts = []Option{}
	}
	return json.Marshal(wireQuestion{
		ID:                 q.ID,
		QuestionText:       q.Text,
		Type:               string(q.Type()),
		Options:            opts,
		CorrectAnswerValue: q.Correct,
		Points:             &points,
	})
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var w wireQuestion
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t, err := ParseType(w.Type)
	if err != nil {
		return err
	}
	points, err := wirePoints(w.Points)
	if err != nil {
		return fmt.Errorf("question %q: %w", w.QuestionText, err)
	}

	*q = Question{
		ID:      w.ID,
		Text:    w.QuestionText,
		Points:  points,
		Correct: w.CorrectAnswerValue,
	}
	switch t {
	case TypeTrueFalse:
		tf := &TrueFalse{}
		for _, o := range w.Options {
			switch o.Value {
			case ValueTrue:
				tf.TrueID = o.ID
			case ValueFalse:
				tf.FalseID = o.ID
			}
		}
		q.Body = tf
	default:
		choices := make([]Option, len(w.Options))
		copy(choices, w.Options)
		q.Body = &MultipleChoice{Choices: choices}
	}
	return nil
}

// wirePoints treats a missing or NaN value as 0 and rejects fractions.
// Stored points must fit the ledger's int4 columns.
func wirePoints(p *float64) (int, error) {
	if p == nil || math.IsNaN(*p) {
		return 0, nil
	}
	if math.IsInf(*p, 0) || *p != math.Trunc(*p) {
		return 0, fmt.Errorf("points %v is not an integer", *p)
	}
	if *p < 0 || *p > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v", ErrPointsRange, *p)
	}
	return int(*p), nil
}

// Encode strips client ids from questions and options and returns the JSON
// array as a single string, ready for the assessment's questions field.
func Encode(questions []Question) (string, error) {
	stripped := make([]Question, len(questions))
	for i, q := range questions {
		q = q.Clone()
		q.ID = ""
		switch b := q.Body.(type) {
		case *MultipleChoice:
			for j := range b.Choices {
				b.Choices[j].ID = ""
			}
		case *TrueFalse:
			b.TrueID, b.FalseID = "", ""
		}
		stripped[i] = q
	}
	raw, err := json.Marshal(stripped)
	if err != nil {
		return "", fmt.Errorf("encode questions: %w", err)
	}
	return string(raw), nil
}

// Decode parses an assessment's questions field. Ids are kept when present
// and left empty otherwise; LoadQuestionSet fills them in for editing.
func Decode(raw string) ([]Question, error) {
	if raw == "" {
		return []Question{}, nil
	}
	var questions []Question
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if questions == nil {
		questions = []Question{}
	}
	return questions, nil
}
