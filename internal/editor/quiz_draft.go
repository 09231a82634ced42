package editor

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"anniversary-timeline/internal/apperr"
	"anniversary-timeline/internal/models"
)

const (
	MinAnswers              = 2
	MaxAnswers              = 4
	MaxPhraseLength         = 200
	MaxQuestionLength       = 200
	MaxAnswerLength         = 100
	MaxCorrectMessageLength = 100
)

// QuizDraft is a quiz being edited. Nothing it holds reaches a slide until
// Build succeeds.
type QuizDraft struct {
	Question       string
	CorrectMessage string
	Answers        []models.Answer
}

// NewQuizDraft starts a draft with four empty answers
func NewQuizDraft() *QuizDraft {
	d := &QuizDraft{CorrectMessage: models.DefaultCorrectMessage}
	for i := 1; i <= MaxAnswers; i++ {
		d.Answers = append(d.Answers, models.Answer{ID: strconv.Itoa(i)})
	}
	return d
}

// DraftFromQuiz starts a draft from an existing quiz
func DraftFromQuiz(q *models.Quiz) *QuizDraft {
	if q == nil {
		return NewQuizDraft()
	}
	return &QuizDraft{
		Question:       q.Question,
		CorrectMessage: q.Message(),
		Answers:        append([]models.Answer(nil), q.Answers...),
	}
}

// AddAnswer appends an empty answer unless the draft is full
func (d *QuizDraft) AddAnswer() (models.Answer, bool) {
	if len(d.Answers) >= MaxAnswers {
		return models.Answer{}, false
	}
	a := models.Answer{ID: uuid.NewString()}
	d.Answers = append(d.Answers, a)
	return a, true
}

// RemoveAnswer drops an answer while more than the minimum remain
func (d *QuizDraft) RemoveAnswer(id string) bool {
	if len(d.Answers) <= MinAnswers {
		return false
	}
	for i, a := range d.Answers {
		if a.ID == id {
			d.Answers = append(d.Answers[:i], d.Answers[i+1:]...)
			return true
		}
	}
	return false
}

// SetAnswerText replaces the text of one answer
func (d *QuizDraft) SetAnswerText(id, text string) bool {
	for i := range d.Answers {
		if d.Answers[i].ID == id {
			d.Answers[i].Text = text
			return true
		}
	}
	return false
}

// SetCorrect marks one answer correct and clears the flag on all others
func (d *QuizDraft) SetCorrect(id string) bool {
	if _, ok := d.find(id); !ok {
		return false
	}
	for i := range d.Answers {
		d.Answers[i].IsCorrect = d.Answers[i].ID == id
	}
	return true
}

func (d *QuizDraft) find(id string) (int, bool) {
	for i, a := range d.Answers {
		if a.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Build validates the draft and returns the quiz to attach. Only answers
// with text survive; answers without an id get a fresh one.
func (d *QuizDraft) Build() (*models.Quiz, error) {
	if strings.TrimSpace(d.Question) == "" {
		return nil, apperr.NewValidationError("question", "Please enter a question")
	}

	var filled []models.Answer
	seen := make(map[string]struct{}, len(d.Answers))
	for _, a := range d.Answers {
		if a.ID != "" {
			if _, dup := seen[a.ID]; dup {
				return nil, apperr.NewValidationError("answers", "Answer ids must be unique")
			}
			seen[a.ID] = struct{}{}
		}
		if strings.TrimSpace(a.Text) != "" {
			filled = append(filled, a)
		}
	}
	for i := range filled {
		if filled[i].ID == "" {
			filled[i].ID = uuid.NewString()
		}
	}
	if len(filled) < MinAnswers {
		return nil, apperr.NewValidationError("answers", "Please add at least 2 answers")
	}

	hasCorrect := false
	for _, a := range filled {
		if a.IsCorrect {
			hasCorrect = true
			break
		}
	}
	if !hasCorrect {
		return nil, apperr.NewValidationError("answers", "Please mark one answer as correct")
	}

	msg := d.CorrectMessage
	if msg == "" {
		msg = models.DefaultCorrectMessage
	}
	return &models.Quiz{
		Question:       d.Question,
		Answers:        filled,
		CorrectMessage: msg,
	}, nil
}
