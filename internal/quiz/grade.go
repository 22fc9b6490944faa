package quiz

import "strconv"

// Answers maps a question key to the value of the option the learner picked.
// A missing key means the question is unanswered.
type Answers map[string]string

// QuestionKey identifies a question inside an attempt: its id when it has one,
// otherwise its position.
func QuestionKey(i int, q Question) string {
	if q.ID != "" {
		return q.ID
	}
	return "question-" + strconv.Itoa(i)
}

// Unanswered lists the keys of questions with no selected value, in order.
func Unanswered(questions []Question, answers Answers) []string {
	var missing []string
	for i, q := range questions {
		if v, ok := answers[QuestionKey(i, q)]; !ok || v == "" {
			missing = append(missing, QuestionKey(i, q))
		}
	}
	return missing
}

// Score awards a question's points when the selected value equals its answer
// key exactly. There is no normalization and no partial credit.
func Score(questions []Question, answers Answers) int {
	total := 0
	for i, q := range questions {
		if v, ok := answers[QuestionKey(i, q)]; ok && v != "" && v == q.Correct {
			total += q.Points
		}
	}
	return total
}
