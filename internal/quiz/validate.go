package quiz

import (
	"fmt"
	"strings"
)

// Validate checks an assessment immediately before it is submitted. It stops
// at the first violation, checking in this order: title and question count,
// question text, option counts per type, choice text, answer key, points.
func Validate(title string, questions []Question) error {
	if strings.TrimSpace(title) == "" || len(questions) == 0 {
		return invalid("Title and at least one question are required.")
	}

	for _, q := range questions {
		label := q.Text
		if strings.TrimSpace(label) == "" {
			return invalid("All questions must have text.")
		}

		opts := q.Options()
		switch q.Type() {
		case TypeMultipleChoice:
			if len(opts) < MinChoices {
				return invalid(fmt.Sprintf("Question %q (multiple-choice) must have at least two options.", label))
			}
		case TypeTrueFalse:
			if len(opts) != 2 {
				return invalid(fmt.Sprintf("Question %q (true/false) must have exactly two options.", label))
			}
		}

		if q.Type() == TypeMultipleChoice {
			for _, o := range opts {
				if strings.TrimSpace(o.Text) == "" {
					return invalid(fmt.Sprintf("All options for multiple-choice question %q must have text.", label))
				}
			}
		}

		if q.Correct == "" {
			return invalid(fmt.Sprintf("A correct answer must be selected for question %q.", label))
		}

		if q.Points < 0 {
			return invalid(fmt.Sprintf("Points for question %q must be a non-negative number.", label))
		}
	}
	return nil
}
