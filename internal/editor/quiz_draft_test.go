package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anniversary-timeline/internal/apperr"
	"anniversary-timeline/internal/models"
)

func TestQuizDraft_AnswerLimits(t *testing.T) {
	d := NewQuizDraft()
	require.Len(t, d.Answers, MaxAnswers)

	_, ok := d.AddAnswer()
	assert.False(t, ok)

	assert.True(t, d.RemoveAnswer("4"))
	assert.True(t, d.RemoveAnswer("3"))
	assert.False(t, d.RemoveAnswer("2"), "must keep two answers")
	assert.Len(t, d.Answers, MinAnswers)

	a, ok := d.AddAnswer()
	require.True(t, ok)
	assert.NotEmpty(t, a.ID)
	assert.Len(t, d.Answers, 3)
}

func TestQuizDraft_SetCorrectIsExclusive(t *testing.T) {
	d := NewQuizDraft()
	require.True(t, d.SetCorrect("1"))
	require.True(t, d.SetCorrect("3"))

	var correct []string
	for _, a := range d.Answers {
		if a.IsCorrect {
			correct = append(correct, a.ID)
		}
	}
	assert.Equal(t, []string{"3"}, correct)
	assert.False(t, d.SetCorrect("nope"))
}

func TestQuizDraft_Build(t *testing.T) {
	testCases := []struct {
		name      string
		question  string
		texts     map[string]string
		correct   string
		wantField string
	}{
		{"empty question", "   ", map[string]string{"1": "a", "2": "b"}, "1", "question"},
		{"single answer", "q", map[string]string{"1": "a"}, "1", "answers"},
		{"whitespace answers do not count", "q", map[string]string{"1": "a", "2": "  "}, "1", "answers"},
		{"no correct answer", "q", map[string]string{"1": "a", "2": "b"}, "", "answers"},
		{"correct answer is empty", "q", map[string]string{"1": "a", "2": "b"}, "3", "answers"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewQuizDraft()
			d.Question = tc.question
			for id, text := range tc.texts {
				d.SetAnswerText(id, text)
			}
			if tc.correct != "" {
				d.SetCorrect(tc.correct)
			}

			quiz, err := d.Build()
			assert.Nil(t, quiz)
			require.ErrorIs(t, err, apperr.ErrValidationFailed)

			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.wantField)
		})
	}

	t.Run("valid draft keeps filled answers only", func(t *testing.T) {
		d := NewQuizDraft()
		d.Question = "Where did we meet?"
		d.CorrectMessage = ""
		d.SetAnswerText("1", "Paris")
		d.SetAnswerText("3", "Rome")
		d.SetCorrect("3")

		quiz, err := d.Build()
		require.NoError(t, err)
		assert.Equal(t, "Where did we meet?", quiz.Question)
		assert.Equal(t, models.DefaultCorrectMessage, quiz.CorrectMessage)
		require.Len(t, quiz.Answers, 2)
		assert.Equal(t, "Paris", quiz.Answers[0].Text)
		assert.True(t, quiz.Answers[1].IsCorrect)
	})
}

func TestQuizDraft_BuildAnswerIDs(t *testing.T) {
	t.Run("duplicate ids are rejected", func(t *testing.T) {
		d := &QuizDraft{
			Question: "Where did we meet?",
			Answers: []models.Answer{
				{ID: "2", Text: "Paris"},
				{ID: "2", Text: "Rome", IsCorrect: true},
			},
		}

		quiz, err := d.Build()
		assert.Nil(t, quiz)
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Answer ids must be unique", verr.Fields["answers"])
	})

	t.Run("blank ids get fresh values", func(t *testing.T) {
		d := &QuizDraft{
			Question: "Where did we meet?",
			Answers: []models.Answer{
				{ID: "2", Text: "Paris"},
				{Text: "Rome", IsCorrect: true},
				{Text: "Oslo"},
			},
		}

		quiz, err := d.Build()
		require.NoError(t, err)
		require.Len(t, quiz.Answers, 3)
		assert.Equal(t, "2", quiz.Answers[0].ID)
		assert.NotEmpty(t, quiz.Answers[1].ID)
		assert.NotEqual(t, "2", quiz.Answers[1].ID)
		assert.NotEqual(t, quiz.Answers[1].ID, quiz.Answers[2].ID)
		assert.Empty(t, d.Answers[1].ID, "draft is left untouched")

		rome, ok := quiz.FindAnswer(quiz.Answers[1].ID)
		require.True(t, ok)
		assert.True(t, rome.IsCorrect)
	})
}

func TestDraftFromQuiz(t *testing.T) {
	q := &models.Quiz{
		Question: "q",
		Answers:  []models.Answer{{ID: "a", Text: "x"}, {ID: "b", Text: "y", IsCorrect: true}},
	}
	d := DraftFromQuiz(q)
	d.SetAnswerText("a", "changed")

	assert.Equal(t, "x", q.Answers[0].Text)
	assert.Equal(t, models.DefaultCorrectMessage, d.CorrectMessage)
	assert.Len(t, DraftFromQuiz(nil).Answers, MaxAnswers)
}
