package player

import "anniversary-timeline/internal/models"

// QuizState is the progress of the quiz on the slide being shown
type QuizState int

const (
	Unanswered QuizState = iota
	Answered
)

func (s QuizState) String() string {
	if s == Answered {
		return "answered"
	}
	return "unanswered"
}

// Outcome is the single recorded pick of a quiz visit
type Outcome struct {
	AnswerID string `json:"answerId"`
	Correct  bool   `json:"correct"`
	// Message is only set for a correct pick
	Message string `json:"message,omitempty"`
}

// QuizEngine records one irreversible answer per slide visit
type QuizEngine struct {
	slideID string
	quiz    *models.Quiz
	state   QuizState
	outcome Outcome
}

// Reset binds the engine to a freshly displayed slide
func (e *QuizEngine) Reset(slideID string, quiz *models.Quiz) {
	e.slideID = slideID
	e.quiz = quiz.Clone()
	e.state = Unanswered
	e.outcome = Outcome{}
}

// SlideID is the slide the engine is bound to
func (e *QuizEngine) SlideID() string {
	return e.slideID
}

func (e *QuizEngine) State() QuizState {
	return e.state
}

// Select records the pick. Once answered, further picks are ignored and
// the first outcome is returned with false.
func (e *QuizEngine) Select(answerID string) (Outcome, bool) {
	if e.quiz == nil || e.state == Answered {
		return e.outcome, false
	}

	// an unknown id counts as a wrong pick
	answer, _ := e.quiz.FindAnswer(answerID)
	e.outcome = Outcome{AnswerID: answerID, Correct: answer.IsCorrect}
	if answer.IsCorrect {
		e.outcome.Message = e.quiz.Message()
	}
	e.state = Answered
	return e.outcome, true
}

// Outcome returns the recorded pick, if any
func (e *QuizEngine) Outcome() (Outcome, bool) {
	return e.outcome, e.state == Answered
}
