package quiz

// QuestionSet is the in-memory model behind both the create and edit flows.
// Every operation either applies completely or returns an error and leaves
// the set untouched, so readers never see a question whose type and options
// disagree.
type QuestionSet struct {
	questions []Question
	ids       IDGenerator
}

// QuestionPatch carries the scalar fields of a question that may change.
// Nil fields are left as they are.
type QuestionPatch struct {
	Text   *string
	Points *int
}

// NewQuestionSet starts an authoring session with one default question.
func NewQuestionSet(ids IDGenerator) *QuestionSet {
	s := &QuestionSet{ids: ids}
	s.questions = []Question{s.defaultQuestion()}
	return s
}

// LoadQuestionSet rebuilds a set from previously persisted questions. Any
// question or option without an id gets a fresh one, since the wire format
// does not carry them.
func LoadQuestionSet(ids IDGenerator, questions []Question) *QuestionSet {
	s := &QuestionSet{ids: ids, questions: make([]Question, 0, len(questions))}
	for _, q := range questions {
		q = q.Clone()
		if q.ID == "" {
			q.ID = ids.NewID()
		}
		switch b := q.Body.(type) {
		case *MultipleChoice:
			for i := range b.Choices {
				if b.Choices[i].ID == "" {
					b.Choices[i].ID = ids.NewID()
				}
			}
		case *TrueFalse:
			if b.TrueID == "" {
				b.TrueID = ids.NewID()
			}
			if b.FalseID == "" {
				b.FalseID = ids.NewID()
			}
		case nil:
			q.Body = s.newMultipleChoice()
		}
		s.questions = append(s.questions, q)
	}
	return s
}

// Questions returns a deep copy of the current list.
func (s *QuestionSet) Questions() []Question {
	out := make([]Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.Clone()
	}
	return out
}

// Len returns the number of questions.
func (s *QuestionSet) Len() int { return len(s.questions) }

// MaxScore sums the points of every question. It is recomputed on each call
// and is never stored.
func (s *QuestionSet) MaxScore() int {
	return MaxScore(s.questions)
}

// AddQuestion appends a default multiple-choice question and returns it.
func (s *QuestionSet) AddQuestion() Question {
	q := s.defaultQuestion()
	s.questions = append(s.questions, q)
	return q.Clone()
}

// RemoveQuestion deletes the question at i. The last question cannot be removed.
func (s *QuestionSet) RemoveQuestion(i int) error {
	if err := s.checkQuestion(i); err != nil {
		return err
	}
	if len(s.questions) == 1 {
		return ErrLastQuestion
	}
	s.questions = append(s.questions[:i:i], s.questions[i+1:]...)
	return nil
}

// UpdateQuestion applies scalar field changes to one question.
func (s *QuestionSet) UpdateQuestion(i int, p QuestionPatch) error {
	if err := s.checkQuestion(i); err != nil {
		return err
	}
	q := &s.questions[i]
	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Points != nil {
		q.Points = *p.Points
	}
	return nil
}

// ChangeType replaces the question's options with the template for t and
// clears the selected answer.
func (s *QuestionSet) ChangeType(i int, t Type) error {
	if err := s.checkQuestion(i); err != nil {
		return err
	}
	var body Body
	switch t {
	case TypeMultipleChoice:
		body = s.newMultipleChoice()
	case TypeTrueFalse:
		body = &TrueFalse{TrueID: s.ids.NewID(), FalseID: s.ids.NewID()}
	default:
		return ErrUnknownType
	}
	s.questions[i].Body = body
	s.questions[i].Correct = ""
	return nil
}

// AddOption appends a blank choice lettered by its position.
func (s *QuestionSet) AddOption(qi int) error {
	mc, err := s.multipleChoice(qi)
	if err != nil {
		return err
	}
	if len(mc.Choices) >= MaxChoices {
		return ErrTooManyOptions
	}
	mc.Choices = append(mc.Choices, Option{ID: s.ids.NewID(), Value: Letter(len(mc.Choices))})
	return nil
}

// RemoveOption deletes a choice, re-letters the remaining ones from A, and
// resets a selected answer to the first choice when its value no longer
// exists. An unset answer stays unset. The answer is tracked by letter, not
// by choice: removing the selected C of A-D leaves the answer at C, which now
// names the old D.
func (s *QuestionSet) RemoveOption(qi, oi int) error {
	mc, err := s.multipleChoice(qi)
	if err != nil {
		return err
	}
	if oi < 0 || oi >= len(mc.Choices) {
		return ErrIndexOutOfRange
	}
	if len(mc.Choices) <= MinChoices {
		return ErrTooFewOptions
	}
	mc.Choices = append(mc.Choices[:oi:oi], mc.Choices[oi+1:]...)
	mc.revalue()

	q := &s.questions[qi]
	if q.Correct != "" && !q.HasValue(q.Correct) {
		q.Correct = mc.Choices[0].Value
	}
	return nil
}

// SetOptionText changes a choice's label without touching its value.
func (s *QuestionSet) SetOptionText(qi, oi int, text string) error {
	mc, err := s.multipleChoice(qi)
	if err != nil {
		return err
	}
	if oi < 0 || oi >= len(mc.Choices) {
		return ErrIndexOutOfRange
	}
	mc.Choices[oi].Text = text
	return nil
}

// SelectCorrect records the answer key for a question. Callers pass values
// taken from the question's current options; membership is not checked here.
func (s *QuestionSet) SelectCorrect(qi int, value string) error {
	if err := s.checkQuestion(qi); err != nil {
		return err
	}
	s.questions[qi].Correct = value
	return nil
}

// Validate runs the pre-submission checks against this set.
func (s *QuestionSet) Validate(title string) error {
	return Validate(title, s.questions)
}

// Encode serializes the set for transmission, without client ids.
func (s *QuestionSet) Encode() (string, error) {
	return Encode(s.questions)
}

func (s *QuestionSet) checkQuestion(i int) error {
	if i < 0 || i >= len(s.questions) {
		return ErrIndexOutOfRange
	}
	return nil
}

func (s *QuestionSet) multipleChoice(qi int) (*MultipleChoice, error) {
	if err := s.checkQuestion(qi); err != nil {
		return nil, err
	}
	mc, ok := s.questions[qi].Body.(*MultipleChoice)
	if !ok {
		return nil, ErrOptionsFixed
	}
	return mc, nil
}

func (s *QuestionSet) defaultQuestion() Question {
	return Question{
		ID:     s.ids.NewID(),
		Points: DefaultPoints,
		Body:   s.newMultipleChoice(),
	}
}

func (s *QuestionSet) newMultipleChoice() *MultipleChoice {
	mc := &MultipleChoice{Choices: make([]Option, DefaultChoices)}
	for i := range mc.Choices {
		mc.Choices[i] = Option{ID: s.ids.NewID(), Value: Letter(i)}
	}
	return mc
}

// MaxScore sums points over a question list.
func MaxScore(questions []Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}
