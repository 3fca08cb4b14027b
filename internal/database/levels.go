package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/levelforge/server/internal/geom"
	"github.com/levelforge/server/internal/level"
)

// LevelStorage handles generated level storage and retrieval from the
// database.
type LevelStorage struct {
	db *sql.DB
}

// NewLevelStorage creates a new level storage instance
func NewLevelStorage(db *sql.DB) *LevelStorage {
	return &LevelStorage{db: db}
}

// StoredLevel represents a generated level stored in the database
type StoredLevel struct {
	ID           int64
	Name         string
	Seed         int64
	ChunkCount   int
	TemplateTags []string
	Exhausted    bool
	CreatedAt    time.Time
	Chunks       []StoredChunk
}

// StoredChunk represents one placed chunk of a stored level
type StoredChunk struct {
	Tag      string          `json:"tag"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	W        float64         `json:"w"`
	H        float64         `json:"h"`
	Contexts []StoredContext `json:"contexts"`
}

// StoredContext represents one connection point of a stored chunk
type StoredContext struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Dir  string  `json:"dir"`
	Tag  string  `json:"tag,omitempty"`
	Open bool    `json:"open"`
}

// Snapshot flattens a generated 2D level for storage. Template tags
// record which catalog entries the run drew from.
func Snapshot(name string, seed int64, tags []string, exhausted bool, lvl *level.Level[geom.Rect]) *StoredLevel {
	stored := &StoredLevel{
		Name:         name,
		Seed:         seed,
		ChunkCount:   lvl.Len(),
		TemplateTags: tags,
		Exhausted:    exhausted,
	}
	for _, chunk := range lvl.Chunks() {
		shape := chunk.Shape()
		sc := StoredChunk{
			Tag: chunk.Tag,
			X:   shape.X,
			Y:   shape.Y,
			W:   shape.W,
			H:   shape.H,
		}
		for _, ctx := range chunk.Contexts() {
			sc.Contexts = append(sc.Contexts, StoredContext{
				X:    ctx.Position.X,
				Y:    ctx.Position.Y,
				Dir:  ctx.Dir.String(),
				Tag:  ctx.Tag,
				Open: ctx.Open(),
			})
		}
		stored.Chunks = append(stored.Chunks, sc)
	}
	return stored
}

// SaveLevel stores a level and its chunks in one transaction and returns
// the new level ID.
func (s *LevelStorage) SaveLevel(stored *StoredLevel) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // No-op once committed
	}()

	var levelID int64
	query := `
		INSERT INTO levels (name, seed, chunk_count, template_tags, exhausted)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = tx.QueryRow(query, stored.Name, stored.Seed, stored.ChunkCount,
		pq.Array(stored.TemplateTags), stored.Exhausted).Scan(&levelID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert level: %w", err)
	}

	for i, chunk := range stored.Chunks {
		contextsJSON, err := json.Marshal(chunk.Contexts)
		if err != nil {
			return 0, fmt.Errorf("failed to encode chunk contexts: %w", err)
		}
		_, err = tx.Exec(`
			INSERT INTO level_chunks (level_id, ord, tag, x, y, w, h, contexts)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, levelID, i, chunk.Tag, chunk.X, chunk.Y, chunk.W, chunk.H, contextsJSON)
		if err != nil {
			return 0, fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit level: %w", err)
	}
	return levelID, nil
}

// GetLevel retrieves a stored level with its chunks. Returns nil without
// error when the level does not exist.
func (s *LevelStorage) GetLevel(id int64) (*StoredLevel, error) {
	stored := &StoredLevel{ID: id}
	query := `
		SELECT name, seed, chunk_count, template_tags, exhausted, created_at
		FROM levels
		WHERE id = $1
	`
	err := s.db.QueryRow(query, id).Scan(
		&stored.Name,
		&stored.Seed,
		&stored.ChunkCount,
		pq.Array(&stored.TemplateTags),
		&stored.Exhausted,
		&stored.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query level: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT tag, x, y, w, h, contexts
		FROM level_chunks
		WHERE level_id = $1
		ORDER BY ord
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query level chunks: %w", err)
	}
	defer func() {
		_ = rows.Close() // Ignore close error - rows close errors are typically non-critical
	}()

	for rows.Next() {
		var chunk StoredChunk
		var contextsJSON []byte
		if err := rows.Scan(&chunk.Tag, &chunk.X, &chunk.Y, &chunk.W, &chunk.H, &contextsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		if err := json.Unmarshal(contextsJSON, &chunk.Contexts); err != nil {
			return nil, fmt.Errorf("failed to decode chunk contexts: %w", err)
		}
		stored.Chunks = append(stored.Chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunk rows: %w", err)
	}
	return stored, nil
}

// ListLevels retrieves summaries of all stored levels, newest first,
// without chunk payloads.
func (s *LevelStorage) ListLevels() ([]StoredLevel, error) {
	rows, err := s.db.Query(`
		SELECT id, name, seed, chunk_count, template_tags, exhausted, created_at
		FROM levels
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query levels: %w", err)
	}
	defer func() {
		_ = rows.Close() // Ignore close error - rows close errors are typically non-critical
	}()

	var levels []StoredLevel
	for rows.Next() {
		var stored StoredLevel
		if err := rows.Scan(&stored.ID, &stored.Name, &stored.Seed, &stored.ChunkCount,
			pq.Array(&stored.TemplateTags), &stored.Exhausted, &stored.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan level row: %w", err)
		}
		levels = append(levels, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate level rows: %w", err)
	}
	return levels, nil
}

// DeleteLevel removes a level and, via cascade, its chunks. Returns false
// without error when the level does not exist.
func (s *LevelStorage) DeleteLevel(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM levels WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete level: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}
