package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/levelforge/server/internal/catalog"
)

// TemplateStorage handles chunk template storage and retrieval from the
// database.
type TemplateStorage struct {
	db *sql.DB
}

// NewTemplateStorage creates a new template storage instance
func NewTemplateStorage(db *sql.DB) *TemplateStorage {
	return &TemplateStorage{db: db}
}

// ListTemplates retrieves every stored template as catalog records.
func (s *TemplateStorage) ListTemplates() ([]catalog.Record, error) {
	query := `
		SELECT tag, width, height, weight, rotatable, contexts
		FROM templates
		ORDER BY tag
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer func() {
		_ = rows.Close() // Ignore close error - rows close errors are typically non-critical
	}()

	var records []catalog.Record
	for rows.Next() {
		var rec catalog.Record
		var contextsJSON []byte
		if err := rows.Scan(&rec.Tag, &rec.Width, &rec.Height, &rec.Weight, &rec.Rotatable, &contextsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan template row: %w", err)
		}
		if err := json.Unmarshal(contextsJSON, &rec.Contexts); err != nil {
			return nil, fmt.Errorf("failed to decode contexts for template %q: %w", rec.Tag, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate template rows: %w", err)
	}
	return records, nil
}

// SaveTemplate inserts a template record, replacing an existing row with
// the same tag.
func (s *TemplateStorage) SaveTemplate(rec catalog.Record) error {
	contextsJSON, err := json.Marshal(rec.Contexts)
	if err != nil {
		return fmt.Errorf("failed to encode contexts for template %q: %w", rec.Tag, err)
	}

	query := `
		INSERT INTO templates (tag, width, height, weight, rotatable, contexts)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tag)
		DO UPDATE SET
			width = EXCLUDED.width,
			height = EXCLUDED.height,
			weight = EXCLUDED.weight,
			rotatable = EXCLUDED.rotatable,
			contexts = EXCLUDED.contexts
	`
	if _, err := s.db.Exec(query, rec.Tag, rec.Width, rec.Height, rec.Weight, rec.Rotatable, contextsJSON); err != nil {
		return fmt.Errorf("failed to save template %q: %w", rec.Tag, err)
	}
	return nil
}

// SeedDefaults stores the built-in template set when the templates table
// is empty, so a fresh deployment can generate immediately.
func (s *TemplateStorage) SeedDefaults() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM templates`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count templates: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, tpl := range catalog.Default().Templates() {
		if err := s.SaveTemplate(catalog.ToRecord(tpl)); err != nil {
			return err
		}
	}
	return nil
}
