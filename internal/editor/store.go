// Package editor holds the in-memory slide sequence being authored and the
// presentation cursor that points into it. It performs no I/O.
package editor

import (
	"github.com/google/uuid"

	"anniversary-timeline/internal/models"
)

// SlidePatch carries the fields to merge into a slide. Nil fields are left alone.
type SlidePatch struct {
	Image  *string
	Phrase *string
}

// Store is the ordered slide collection under edit
type Store struct {
	slides []models.Slide
	cursor int
	newID  func() string
}

// NewStore returns an empty store that assigns UUID slide ids
func NewStore() *Store {
	return &Store{newID: uuid.NewString}
}

func (s *Store) index(id string) int {
	for i, sl := range s.slides {
		if sl.ID == id {
			return i
		}
	}
	return -1
}

// Add appends a blank slide and returns it
func (s *Store) Add() models.Slide {
	slide := models.Slide{ID: s.newID()}
	s.slides = append(s.slides, slide)
	return slide
}

// Update merges patch into the slide with id. Unknown ids are ignored.
func (s *Store) Update(id string, patch SlidePatch) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	if patch.Image != nil {
		s.slides[i].Image = *patch.Image
	}
	if patch.Phrase != nil {
		s.slides[i].Phrase = *patch.Phrase
	}
	return true
}

// SetQuiz validates the draft and attaches the result. On a validation
// error the slide keeps its previous quiz.
func (s *Store) SetQuiz(id string, draft *QuizDraft) (bool, error) {
	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	quiz, err := draft.Build()
	if err != nil {
		return true, err
	}
	s.slides[i].Quiz = quiz
	return true, nil
}

// RemoveQuiz detaches the quiz of a slide once the user confirmed
func (s *Store) RemoveQuiz(id string, d Decision) bool {
	if d != Confirmed {
		return false
	}
	i := s.index(id)
	if i < 0 || !s.slides[i].HasQuiz() {
		return false
	}
	s.slides[i].Quiz = nil
	return true
}

// Delete removes the slide with id. When the cursor ends up at or past the
// new end of the list it steps back by one, never below zero.
func (s *Store) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.slides = append(s.slides[:i], s.slides[i+1:]...)
	if s.cursor >= len(s.slides) && s.cursor > 0 {
		s.cursor--
	}
	return true
}

// Clear empties the sequence
func (s *Store) Clear() {
	s.slides = nil
	s.cursor = 0
}

// Replace swaps in a loaded sequence. Nothing is merged.
func (s *Store) Replace(slides []models.Slide) {
	s.slides = models.CloneSlides(slides)
	s.cursor = 0
}

// Slides returns a deep copy of the sequence
func (s *Store) Slides() []models.Slide {
	return models.CloneSlides(s.slides)
}

// Get returns a copy of the slide with id
func (s *Store) Get(id string) (models.Slide, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Slide{}, false
	}
	return s.slides[i].Clone(), true
}

func (s *Store) Len() int {
	return len(s.slides)
}

// At returns a copy of the slide at position i
func (s *Store) At(i int) (models.Slide, bool) {
	if i < 0 || i >= len(s.slides) {
		return models.Slide{}, false
	}
	return s.slides[i].Clone(), true
}

func (s *Store) Cursor() int {
	return s.cursor
}

// SetCursor moves the cursor to a valid position
func (s *Store) SetCursor(i int) bool {
	if i < 0 || i >= len(s.slides) {
		return false
	}
	s.cursor = i
	return true
}
