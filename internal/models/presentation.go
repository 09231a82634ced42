package models

import (
	"slices"
	"time"
)

// DefaultCorrectMessage is shown after a correct pick when the quiz has no message of its own.
const DefaultCorrectMessage = "✓ Correct!"

// Answer is one candidate answer of a quiz
type Answer struct {
	ID        string `json:"id" bson:"id"`
	Text      string `json:"text" bson:"text"`
	IsCorrect bool   `json:"isCorrect" bson:"isCorrect"`
}

// Quiz is the optional multiple-choice overlay of a slide
type Quiz struct {
	Question       string   `json:"question" bson:"question"`
	Answers        []Answer `json:"answers" bson:"answers"`
	CorrectMessage string   `json:"correctMessage,omitempty" bson:"correctMessage,omitempty"`
}

// Message returns the text revealed on a correct pick
func (q *Quiz) Message() string {
	if q == nil || q.CorrectMessage == "" {
		return DefaultCorrectMessage
	}
	return q.CorrectMessage
}

// FindAnswer looks up an answer by id
func (q *Quiz) FindAnswer(id string) (Answer, bool) {
	if q == nil {
		return Answer{}, false
	}
	for _, a := range q.Answers {
		if a.ID == id {
			return a, true
		}
	}
	return Answer{}, false
}

// Clone returns a deep copy of the quiz
func (q *Quiz) Clone() *Quiz {
	if q == nil {
		return nil
	}
	c := *q
	c.Answers = append([]Answer(nil), q.Answers...)
	return &c
}

// Equal reports whether both quizzes ask the same question with the same answers
func (q *Quiz) Equal(other *Quiz) bool {
	if q == nil || other == nil {
		return q == other
	}
	return q.Question == other.Question &&
		q.CorrectMessage == other.CorrectMessage &&
		slices.Equal(q.Answers, other.Answers)
}

// Slide is one photo and caption unit of a timeline.
// Its position in the containing sequence is its presentation order.
type Slide struct {
	ID     string `json:"id" bson:"id"`
	Image  string `json:"image" bson:"image"`
	Phrase string `json:"phrase" bson:"phrase"`
	Quiz   *Quiz  `json:"quiz,omitempty" bson:"quiz,omitempty"`
}

// HasQuiz reports whether a quiz is attached to the slide
func (s Slide) HasQuiz() bool {
	return s.Quiz != nil
}

// Clone returns a deep copy of the slide
func (s Slide) Clone() Slide {
	s.Quiz = s.Quiz.Clone()
	return s
}

// CloneSlides deep copies a slide sequence
func CloneSlides(slides []Slide) []Slide {
	out := make([]Slide, len(slides))
	for i, s := range slides {
		out[i] = s.Clone()
	}
	return out
}

// Presentation is a named, persisted bundle of slides
type Presentation struct {
	ID        string    `json:"id,omitempty" bson:"-"`
	Title     string    `json:"title" bson:"title"`
	Slides    []Slide   `json:"slides" bson:"slides"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
	UserID    string    `json:"userId,omitempty" bson:"userId,omitempty"`
}
