package services

import (
	"encoding/json"
	"fmt"
	"time"

	"anniversary-timeline/internal/models"
)

// ExportFilename is the download name of a JSON export
func ExportFilename(title string, at time.Time) string {
	return fmt.Sprintf("%s-%d.json", title, at.UnixMilli())
}

// ExportJSON renders a presentation in its stored shape, pretty-printed
func ExportJSON(p *models.Presentation) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal presentation: %w", err)
	}
	return data, nil
}

// Export returns the download name and body for p
func (s *PresentationService) Export(p *models.Presentation) (string, []byte, error) {
	data, err := ExportJSON(p)
	if err != nil {
		return "", nil, err
	}
	return ExportFilename(p.Title, s.now()), data, nil
}
