package api

import (
	"time"

	"github.com/levelforge/server/internal/database"
)

// CreateLevelRequest is the body of POST /api/levels.
type CreateLevelRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=128"`
	Seed         int64  `json:"seed"`
	TargetChunks int    `json:"target_chunks" validate:"omitempty,min=1"`
	RetryBudget  int    `json:"retry_budget" validate:"omitempty,min=1"`
	Backtrack    bool   `json:"backtrack"`
	CloseDeadEnds bool  `json:"close_dead_ends"`
	Select       string `json:"select" validate:"omitempty,oneof=oldest random"`
	// Post-processing policies applied in order after generation.
	Policies []string `json:"policies" validate:"omitempty,dive,oneof=discard_open_contexts discard_open_chunks"`
}

// ContextResponse describes one connection point of a placed chunk.
type ContextResponse struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Dir  string  `json:"dir"`
	Tag  string  `json:"tag,omitempty"`
	Open bool    `json:"open"`
}

// ChunkResponse describes one placed chunk.
type ChunkResponse struct {
	Tag      string            `json:"tag"`
	X        float64           `json:"x"`
	Y        float64           `json:"y"`
	W        float64           `json:"w"`
	H        float64           `json:"h"`
	Contexts []ContextResponse `json:"contexts"`
}

// LevelResponse is the full level representation returned by the API.
type LevelResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Seed         int64           `json:"seed"`
	ChunkCount   int             `json:"chunk_count"`
	TemplateTags []string        `json:"template_tags"`
	Exhausted    bool            `json:"exhausted"`
	CreatedAt    time.Time       `json:"created_at,omitempty"`
	Chunks       []ChunkResponse `json:"chunks,omitempty"`
}

// LevelSummary is the trimmed representation used by list responses.
type LevelSummary struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Seed       int64     `json:"seed"`
	ChunkCount int       `json:"chunk_count"`
	Exhausted  bool      `json:"exhausted"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

func levelResponseFromStored(stored *database.StoredLevel) LevelResponse {
	resp := LevelResponse{
		ID:           stored.ID,
		Name:         stored.Name,
		Seed:         stored.Seed,
		ChunkCount:   stored.ChunkCount,
		TemplateTags: stored.TemplateTags,
		Exhausted:    stored.Exhausted,
		CreatedAt:    stored.CreatedAt,
	}
	for _, chunk := range stored.Chunks {
		cr := ChunkResponse{
			Tag: chunk.Tag,
			X:   chunk.X,
			Y:   chunk.Y,
			W:   chunk.W,
			H:   chunk.H,
		}
		for _, ctx := range chunk.Contexts {
			cr.Contexts = append(cr.Contexts, ContextResponse{
				X:    ctx.X,
				Y:    ctx.Y,
				Dir:  ctx.Dir,
				Tag:  ctx.Tag,
				Open: ctx.Open,
			})
		}
		resp.Chunks = append(resp.Chunks, cr)
	}
	return resp
}
