package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"anniversary-timeline/internal/models"
)

// MemoryPresentationRepository is a process-local document store. It
// backs the "memory" backend and the service tests.
type MemoryPresentationRepository struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]models.Presentation
}

func NewMemoryPresentationRepository() *MemoryPresentationRepository {
	return &MemoryPresentationRepository{docs: make(map[string]models.Presentation)}
}

func (r *MemoryPresentationRepository) Insert(_ context.Context, p *models.Presentation) (string, error) {
	id := uuid.NewString()
	doc := *p
	doc.ID = id
	doc.Slides = models.CloneSlides(slidesOrEmpty(p.Slides))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[id] = doc
	r.order = append(r.order, id)
	return id, nil
}

func (r *MemoryPresentationRepository) FindAll(ctx context.Context) ([]models.Presentation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Presentation, 0, len(r.order))
	for _, id := range r.order {
		doc := r.docs[id]
		doc.Slides = models.CloneSlides(doc.Slides)
		out = append(out, doc)
	}
	return out, nil
}

func (r *MemoryPresentationRepository) Update(_ context.Context, id string, update PresentationUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return ErrDocumentNotFound
	}
	doc.Title = update.Title
	doc.Slides = models.CloneSlides(slidesOrEmpty(update.Slides))
	doc.UpdatedAt = update.UpdatedAt
	r.docs[id] = doc
	return nil
}

func (r *MemoryPresentationRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return nil
	}
	delete(r.docs, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
