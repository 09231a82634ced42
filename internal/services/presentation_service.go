package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"anniversary-timeline/internal/apperr"
	"anniversary-timeline/internal/event"
	"anniversary-timeline/internal/imaging"
	"anniversary-timeline/internal/logger"
	"anniversary-timeline/internal/models"
	"anniversary-timeline/internal/repository"
)

// StoreObserver is told about every document store call
type StoreObserver interface {
	ObserveStoreOp(op string, started time.Time, err error)
}

// ImageCompressor shrinks a data URI. It must return its input on failure.
type ImageCompressor interface {
	Compress(dataURI string) string
}

// PresentationService is the persistence gateway between the editor and the
// document store
type PresentationService struct {
	store       repository.DocumentStore
	unavailable error
	compressor  ImageCompressor
	publisher   event.Publisher
	observer    StoreObserver
	now         func() time.Time
	log         *logger.Logger
}

type Option func(*PresentationService)

func WithCompressor(c ImageCompressor) Option {
	return func(s *PresentationService) { s.compressor = c }
}

func WithPublisher(p event.Publisher) Option {
	return func(s *PresentationService) { s.publisher = p }
}

func WithObserver(o StoreObserver) Option {
	return func(s *PresentationService) { s.observer = o }
}

func WithClock(now func() time.Time) Option {
	return func(s *PresentationService) { s.now = now }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *PresentationService) { s.log = l }
}

// WithUnavailableReason records why no store handle exists. It is only
// consulted when the store is nil.
func WithUnavailableReason(err error) Option {
	return func(s *PresentationService) { s.unavailable = err }
}

// NewPresentationService builds the gateway. A nil store is accepted: every
// operation then fails with ErrStorageUnavailable.
func NewPresentationService(store repository.DocumentStore, opts ...Option) *PresentationService {
	s := &PresentationService{
		store:      store,
		compressor: imaging.NewCompressor(),
		now:        time.Now,
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether a store handle is configured
func (s *PresentationService) Available() bool {
	return s.store != nil
}

func (s *PresentationService) handle() (repository.DocumentStore, error) {
	if s.store == nil {
		return nil, apperr.Unavailable(s.unavailable)
	}
	return s.store, nil
}

// Save compresses every image, normalizes quizzes and inserts a new
// presentation. It returns the store-assigned id.
func (s *PresentationService) Save(ctx context.Context, title string, slides []models.Slide) (string, error) {
	store, err := s.handle()
	if err != nil {
		return "", err
	}

	prepared, err := s.prepareSlides(ctx, slides)
	if err != nil {
		return "", err
	}

	now := s.now()
	p := &models.Presentation{
		Title:     title,
		Slides:    prepared,
		CreatedAt: now,
		UpdatedAt: now,
	}

	started := time.Now()
	id, err := store.Insert(ctx, p)
	s.observe("insert", started, err)
	if err != nil {
		return "", apperr.Remote("save presentation", err)
	}

	s.log.Info("presentation saved", "id", id, "title", title, "slides", len(prepared))
	s.publish(event.PresentationSaved, map[string]interface{}{"id": id, "title": title, "slides": len(prepared)})
	return id, nil
}

// prepareSlides runs compression concurrently and joins before returning.
// Order is kept.
func (s *PresentationService) prepareSlides(ctx context.Context, slides []models.Slide) ([]models.Slide, error) {
	out := make([]models.Slide, len(slides))
	g, gctx := errgroup.WithContext(ctx)
	for i, slide := range slides {
		i, slide := i, slide
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			prepared := models.Slide{
				ID:     slide.ID,
				Phrase: slide.Phrase,
				Quiz:   coerceQuiz(slide.Quiz),
			}
			if slide.Image != "" {
				prepared.Image = s.compressor.Compress(slide.Image)
			}
			out[i] = prepared
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// coerceQuiz fills the defaults a stored quiz must carry
func coerceQuiz(q *models.Quiz) *models.Quiz {
	if q == nil {
		return nil
	}
	c := q.Clone()
	c.CorrectMessage = q.Message()
	if c.Answers == nil {
		c.Answers = []models.Answer{}
	}
	return c
}

// ListAll returns every stored presentation with its id
func (s *PresentationService) ListAll(ctx context.Context) ([]models.Presentation, error) {
	store, err := s.handle()
	if err != nil {
		return nil, err
	}

	started := time.Now()
	presentations, err := store.FindAll(ctx)
	s.observe("find_all", started, err)
	if err != nil {
		return nil, apperr.Remote("list presentations", err)
	}
	if presentations == nil {
		presentations = []models.Presentation{}
	}
	return presentations, nil
}

// GetByID scans the full listing for id. The bool is false when no
// presentation has that id.
func (s *PresentationService) GetByID(ctx context.Context, id string) (*models.Presentation, bool, error) {
	presentations, err := s.ListAll(ctx)
	if err != nil {
		return nil, false, err
	}
	for i := range presentations {
		if presentations[i].ID == id {
			return &presentations[i], true, nil
		}
	}
	return nil, false, nil
}

// Update overwrites title and slides of an existing presentation. Images are
// written as given.
func (s *PresentationService) Update(ctx context.Context, id, title string, slides []models.Slide) error {
	store, err := s.handle()
	if err != nil {
		return err
	}

	update := repository.PresentationUpdate{
		Title:     title,
		Slides:    models.CloneSlides(slides),
		UpdatedAt: s.now(),
	}

	started := time.Now()
	err = store.Update(ctx, id, update)
	s.observe("update", started, err)
	if err != nil {
		return apperr.Remote("update presentation", err)
	}

	s.log.Info("presentation updated", "id", id, "title", title)
	s.publish(event.PresentationUpdated, map[string]interface{}{"id": id, "title": title, "slides": len(slides)})
	return nil
}

// Delete removes a presentation. Deleting an unknown id succeeds.
func (s *PresentationService) Delete(ctx context.Context, id string) error {
	store, err := s.handle()
	if err != nil {
		return err
	}

	started := time.Now()
	err = store.Delete(ctx, id)
	s.observe("delete", started, err)
	if err != nil {
		return apperr.Remote("delete presentation", err)
	}

	s.log.Info("presentation deleted", "id", id)
	s.publish(event.PresentationDeleted, map[string]interface{}{"id": id})
	return nil
}

// IsNotFound reports whether err is the store's missing-document signal
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrDocumentNotFound)
}

func (s *PresentationService) observe(op string, started time.Time, err error) {
	if s.observer != nil {
		s.observer.ObserveStoreOp(op, started, err)
	}
}

func (s *PresentationService) publish(eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(eventType, payload); err != nil {
		s.log.Warn("failed to publish event", "type", eventType, "error", err)
	}
}
