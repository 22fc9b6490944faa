package quiz

import "fmt"

// Type identifies the shape of a question's answer options.
type Type string

const (
	TypeMultipleChoice Type = "multiple-choice"
	TypeTrueFalse      Type = "true-false"
)

// Option bounds and defaults for authored questions.
const (
	MinChoices     = 2
	MaxChoices     = 6
	DefaultChoices = 4
	DefaultPoints  = 10
)

// Fixed values used by true/false questions.
const (
	ValueTrue  = "true"
	ValueFalse = "false"
)

// ParseType validates a wire type string.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeMultipleChoice, TypeTrueFalse:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// Option is one selectable answer. ID is a client-local handle and never
// leaves the portal in an encoded assessment.
type Option struct {
	ID    string `json:"id,omitempty"`
	Text  string `json:"text"`
	Value string `json:"value"`
}

// Body is the type-specific part of a question.
type Body interface {
	Type() Type
	Options() []Option
	clone() Body
}

// MultipleChoice holds an ordered list of lettered choices.
type MultipleChoice struct {
	Choices []Option
}

func (m *MultipleChoice) Type() Type { return TypeMultipleChoice }

func (m *MultipleChoice) Options() []Option {
	out := make([]Option, len(m.Choices))
	copy(out, m.Choices)
	return out
}

func (m *MultipleChoice) clone() Body {
	return &MultipleChoice{Choices: m.Options()}
}

// revalue reassigns letters so values stay contiguous from A in display order.
func (m *MultipleChoice) revalue() {
	for i := range m.Choices {
		m.Choices[i].Value = Letter(i)
	}
}

// TrueFalse always exposes exactly the True and False options.
type TrueFalse struct {
	TrueID  string
	FalseID string
}

func (t *TrueFalse) Type() Type { return TypeTrueFalse }

func (t *TrueFalse) Options() []Option {
	return []Option{
		{ID: t.TrueID, Text: "True", Value: ValueTrue},
		{ID: t.FalseID, Text: "False", Value: ValueFalse},
	}
}

func (t *TrueFalse) clone() Body {
	c := *t
	return &c
}

// Question is one graded item.
type Question struct {
	ID      string
	Text    string
	Points  int
	Correct string
	Body    Body
}

// Type returns the question type, defaulting to multiple-choice for a zero body.
func (q Question) Type() Type {
	if q.Body == nil {
		return TypeMultipleChoice
	}
	return q.Body.Type()
}

// Options returns a copy of the question's options in display order.
func (q Question) Options() []Option {
	if q.Body == nil {
		return nil
	}
	return q.Body.Options()
}

// HasValue reports whether some option carries the given value.
func (q Question) HasValue(v string) bool {
	for _, o := range q.Options() {
		if o.Value == v {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (q Question) Clone() Question {
	if q.Body != nil {
		q.Body = q.Body.clone()
	}
	return q
}

// Letter maps a zero-based position to its option letter (0 → "A").
func Letter(i int) string {
	return string(rune('A' + i))
}
