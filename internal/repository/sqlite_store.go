package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"anniversary-timeline/internal/models"
)

// SQLitePresentationRepository keeps presentation documents in a local
// SQLite table, one row per document with the slides stored as JSON.
type SQLitePresentationRepository struct {
	database *sql.DB
	newID    func() string
}

func NewSQLitePresentationRepository(database *sql.DB) *SQLitePresentationRepository {
	return &SQLitePresentationRepository{
		database: database,
		newID:    uuid.NewString,
	}
}

func (r *SQLitePresentationRepository) Insert(ctx context.Context, p *models.Presentation) (string, error) {
	slides, err := json.Marshal(slidesOrEmpty(p.Slides))
	if err != nil {
		return "", fmt.Errorf("failed to marshal slides: %w", err)
	}

	id := r.newID()
	query := `INSERT INTO presentations
		(id, title, slides, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err = r.database.ExecContext(ctx, query, id, p.Title, string(slides), p.UserID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert presentation: %w", err)
	}
	return id, nil
}

func (r *SQLitePresentationRepository) FindAll(ctx context.Context) ([]models.Presentation, error) {
	query := `SELECT id, title, slides, user_id, created_at, updated_at
		FROM presentations ORDER BY created_at ASC`

	rows, err := r.database.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query presentations: %w", err)
	}
	defer rows.Close()

	var presentations []models.Presentation
	for rows.Next() {
		var (
			p      models.Presentation
			slides string
			userID sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Title, &slides, &userID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan presentation: %w", err)
		}
		if err := json.Unmarshal([]byte(slides), &p.Slides); err != nil {
			return nil, fmt.Errorf("failed to decode slides of %s: %w", p.ID, err)
		}
		p.Slides = slidesOrEmpty(p.Slides)
		p.UserID = userID.String
		presentations = append(presentations, p)
	}
	return presentations, rows.Err()
}

func (r *SQLitePresentationRepository) Update(ctx context.Context, id string, update PresentationUpdate) error {
	slides, err := json.Marshal(slidesOrEmpty(update.Slides))
	if err != nil {
		return fmt.Errorf("failed to marshal slides: %w", err)
	}

	query := `UPDATE presentations
		SET title = ?, slides = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.database.ExecContext(ctx, query, update.Title, string(slides), update.UpdatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update presentation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *SQLitePresentationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM presentations WHERE id = ?`
	if _, err := r.database.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete presentation: %w", err)
	}
	return nil
}

func slidesOrEmpty(slides []models.Slide) []models.Slide {
	if slides == nil {
		return []models.Slide{}
	}
	return slides
}
