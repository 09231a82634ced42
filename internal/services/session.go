package services

import (
	"context"
	"slices"
	"strings"
	"sync"

	"anniversary-timeline/internal/apperr"
	"anniversary-timeline/internal/editor"
	"anniversary-timeline/internal/imaging"
	"anniversary-timeline/internal/logger"
	"anniversary-timeline/internal/models"
	"anniversary-timeline/internal/player"
)

// Session is the single editing session the server hosts: the slide
// sequence, the player over it and the gateway used to persist it. Every
// transition runs under one lock; store calls run outside it on snapshots.
type Session struct {
	mu      sync.Mutex
	slides  *editor.Store
	player  *player.Player
	service *PresentationService
	archive *ExportArchive
	log     *logger.Logger

	loadedID    string
	loadedTitle string

	listenersMu sync.RWMutex
	listeners   []func(player.View)
}

// NewSession creates an empty session. archive may be nil.
func NewSession(service *PresentationService, archive *ExportArchive, log *logger.Logger) *Session {
	if log == nil {
		log = logger.NewNop()
	}
	slides := editor.NewStore()
	return &Session{
		slides:  slides,
		player:  player.New(slides),
		service: service,
		archive: archive,
		log:     log,
	}
}

// OnChange registers fn to receive the player view after every change
func (s *Session) OnChange(fn func(player.View)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) notify(v player.View) {
	s.listenersMu.RLock()
	listeners := slices.Clone(s.listeners)
	s.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(v)
	}
}

// mutate runs fn under the lock, reconciles the player with the slide
// sequence and notifies listeners once the lock is released
func (s *Session) mutate(fn func()) player.View {
	s.mu.Lock()
	fn()
	s.player.Reconcile()
	v := s.player.View()
	s.mu.Unlock()

	s.notify(v)
	return v
}

// Slides

func (s *Session) Slides() []models.Slide {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slides.Slides()
}

func (s *Session) Slide(id string) (models.Slide, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slides.Get(id)
}

func (s *Session) AddSlide() models.Slide {
	var slide models.Slide
	s.mutate(func() { slide = s.slides.Add() })
	return slide
}

func (s *Session) UpdateSlide(id string, patch editor.SlidePatch) (models.Slide, bool) {
	var (
		slide models.Slide
		ok    bool
	)
	s.mutate(func() {
		if ok = s.slides.Update(id, patch); ok {
			slide, _ = s.slides.Get(id)
		}
	})
	return slide, ok
}

// SetQuiz attaches the quiz built from draft. On a validation error the
// slide keeps its previous quiz.
func (s *Session) SetQuiz(id string, draft *editor.QuizDraft) (models.Slide, bool, error) {
	var (
		slide models.Slide
		found bool
		err   error
	)
	s.mutate(func() {
		found, err = s.slides.SetQuiz(id, draft)
		if found && err == nil {
			slide, _ = s.slides.Get(id)
		}
	})
	return slide, found, err
}

func (s *Session) RemoveQuiz(id string, d editor.Decision) bool {
	var removed bool
	s.mutate(func() { removed = s.slides.RemoveQuiz(id, d) })
	return removed
}

func (s *Session) DeleteSlide(id string) bool {
	var deleted bool
	s.mutate(func() { deleted = s.slides.Delete(id) })
	return deleted
}

// ClearSlides empties the sequence and forgets the loaded presentation
func (s *Session) ClearSlides(d editor.Decision) bool {
	if d != editor.Confirmed {
		return false
	}
	s.mutate(func() {
		s.slides.Clear()
		s.loadedID, s.loadedTitle = "", ""
	})
	return true
}

// Loaded returns the id and title of the presentation last saved or loaded
func (s *Session) Loaded() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedID, s.loadedTitle
}

// Persistence

// Save stores the current slides as a new presentation
func (s *Session) Save(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.NewValidationError("title", "Please enter a name for your presentation")
	}

	s.mu.Lock()
	snapshot := s.slides.Slides()
	s.mu.Unlock()

	if len(snapshot) == 0 {
		return "", apperr.NewValidationError("slides", "Add at least one slide before saving")
	}

	id, err := s.service.Save(ctx, title, snapshot)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.loadedID, s.loadedTitle = id, title
	s.mu.Unlock()
	return id, nil
}

// UpdatePresentation overwrites presentation id with the current slides
func (s *Session) UpdatePresentation(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return apperr.NewValidationError("title", "Please enter a name for your presentation")
	}

	s.mu.Lock()
	snapshot := s.slides.Slides()
	s.mu.Unlock()

	if err := s.service.Update(ctx, id, title, snapshot); err != nil {
		return err
	}

	s.mu.Lock()
	s.loadedID, s.loadedTitle = id, title
	s.mu.Unlock()
	return nil
}

// Load replaces the slides with a stored presentation and resets the
// cursor. The bool is false when no presentation has that id.
func (s *Session) Load(ctx context.Context, id string) (*models.Presentation, bool, error) {
	p, found, err := s.service.GetByID(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}

	s.mutate(func() {
		s.player.Exit()
		s.slides.Replace(p.Slides)
		s.loadedID, s.loadedTitle = p.ID, p.Title
	})
	s.log.Info("presentation loaded", "id", p.ID, "title", p.Title, "slides", len(p.Slides))
	return p, true, nil
}

func (s *Session) ListPresentations(ctx context.Context) ([]models.Presentation, error) {
	return s.service.ListAll(ctx)
}

func (s *Session) GetPresentation(ctx context.Context, id string) (*models.Presentation, bool, error) {
	return s.service.GetByID(ctx, id)
}

// DeletePresentation removes a stored presentation once confirmed. It
// reports whether a delete was issued.
func (s *Session) DeletePresentation(ctx context.Context, id string, d editor.Decision) (bool, error) {
	if d != editor.Confirmed {
		return false, nil
	}
	if err := s.service.Delete(ctx, id); err != nil {
		return false, err
	}

	s.mu.Lock()
	if s.loadedID == id {
		s.loadedID, s.loadedTitle = "", ""
	}
	s.mu.Unlock()
	return true, nil
}

// Export renders a stored presentation as a JSON download and keeps a copy
// in the archive when one is configured
func (s *Session) Export(ctx context.Context, id string) (string, []byte, bool, error) {
	p, found, err := s.service.GetByID(ctx, id)
	if err != nil || !found {
		return "", nil, found, err
	}

	filename, data, err := s.service.Export(p)
	if err != nil {
		return "", nil, true, err
	}

	if s.archive != nil {
		if path, err := s.archive.Write(filename, data); err != nil {
			s.log.Warn("failed to archive export", "id", id, "error", err)
		} else {
			s.log.Debug("export archived", "id", id, "path", path)
		}
	}
	return filename, data, true, nil
}

// Player

func (s *Session) View() player.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.View()
}

// act runs a player transition and notifies only when it changed something
func (s *Session) act(fn func(p *player.Player) bool) (player.View, bool) {
	s.mu.Lock()
	changed := fn(s.player)
	v := s.player.View()
	s.mu.Unlock()

	if changed {
		s.notify(v)
	}
	return v, changed
}

func (s *Session) Present() (player.View, bool) {
	return s.act(func(p *player.Player) bool { return p.Present() })
}

func (s *Session) Advance() (player.View, bool) {
	return s.act(func(p *player.Player) bool { return p.Advance() })
}

func (s *Session) Retreat() (player.View, bool) {
	return s.act(func(p *player.Player) bool { return p.Retreat() })
}

func (s *Session) Exit() (player.View, bool) {
	return s.act(func(p *player.Player) bool { return p.Exit() })
}

func (s *Session) HandleKey(key string) (player.View, bool) {
	return s.act(func(p *player.Player) bool { return p.HandleKey(key) })
}

func (s *Session) HandleSwipe(sw player.Swipe) (player.View, bool) {
	return s.act(func(p *player.Player) bool { return p.HandleSwipe(sw) })
}

// Select answers the quiz on the current slide. Only the first pick counts.
func (s *Session) Select(answerID string) (player.View, bool) {
	return s.act(func(p *player.Player) bool {
		_, ok := p.Select(answerID)
		return ok
	})
}

// RenderCurrentSlide rasterizes the slide under the cursor
func (s *Session) RenderCurrentSlide(opts imaging.RenderOptions) (string, []byte, error) {
	s.mu.Lock()
	i := s.slides.Cursor()
	slide, ok := s.slides.At(i)
	s.mu.Unlock()

	if !ok {
		return "", nil, apperr.NewValidationError("slides", "Add at least one slide before downloading")
	}

	png, err := imaging.RenderSlidePNG(slide, opts)
	if err != nil {
		return "", nil, err
	}
	return imaging.SlideExportFilename(i + 1), png, nil
}
