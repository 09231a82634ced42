package repository

import (
	"context"
	"errors"
	"time"

	"anniversary-timeline/internal/models"
)

// PresentationsCollection is the collection (or table) holding presentation documents
const PresentationsCollection = "presentations"

// ErrDocumentNotFound is returned by Update when no document has the id
var ErrDocumentNotFound = errors.New("no document to update")

// PresentationUpdate is the set of fields an update overwrites
type PresentationUpdate struct {
	Title     string
	Slides    []models.Slide
	UpdatedAt time.Time
}

// DocumentStore is the remote collection of presentation documents.
// Delete of an unknown id is not an error.
type DocumentStore interface {
	Insert(ctx context.Context, p *models.Presentation) (string, error)
	FindAll(ctx context.Context) ([]models.Presentation, error)
	Update(ctx context.Context, id string, update PresentationUpdate) error
	Delete(ctx context.Context, id string) error
}
