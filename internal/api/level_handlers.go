package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/levelforge/server/internal/catalog"
	"github.com/levelforge/server/internal/config"
	"github.com/levelforge/server/internal/database"
	"github.com/levelforge/server/internal/geom"
	"github.com/levelforge/server/internal/level"
	"github.com/levelforge/server/internal/levelgen"
	"github.com/levelforge/server/internal/performance"
	"github.com/levelforge/server/internal/streaming"
)

// LevelStore is the persistence surface the handlers need.
// database.LevelStorage implements it; tests use an in-memory double.
type LevelStore interface {
	SaveLevel(stored *database.StoredLevel) (int64, error)
	GetLevel(id int64) (*database.StoredLevel, error)
	ListLevels() ([]database.StoredLevel, error)
	DeleteLevel(id int64) (bool, error)
}

// LevelHandlers handles level generation and retrieval HTTP requests.
type LevelHandlers struct {
	store     LevelStore
	catalog   *catalog.Memory[geom.Rect]
	config    *config.Config
	streams   *streaming.Manager
	profiler  *performance.Profiler
	validator *validator.Validate
}

// NewLevelHandlers creates a new instance of LevelHandlers.
func NewLevelHandlers(store LevelStore, cat *catalog.Memory[geom.Rect], cfg *config.Config, streams *streaming.Manager, profiler *performance.Profiler) *LevelHandlers {
	return &LevelHandlers{
		store:     store,
		catalog:   cat,
		config:    cfg,
		streams:   streams,
		profiler:  profiler,
		validator: validator.New(),
	}
}

// CreateLevel handles POST /api/levels: runs a generation pass against the
// catalog and persists the result.
func (h *LevelHandlers) CreateLevel(w http.ResponseWriter, r *http.Request) {
	var req CreateLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if req.TargetChunks > h.config.Generation.MaxChunks {
		respondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("target_chunks cannot exceed %d", h.config.Generation.MaxChunks))
		return
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	genCfg := h.generationConfig(req, seed)
	gen, err := levelgen.New[geom.Rect](h.catalog, rand.New(rand.NewSource(seed)), genCfg)
	if err != nil {
		if errors.Is(err, level.ErrInvalidArgument) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Failed to build generator: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to build generator")
		return
	}

	h.streams.Publish(streaming.Event{
		Type:    streaming.EventRunStarted,
		RunID:   req.Name,
		Message: fmt.Sprintf("generating level %q with seed %d", req.Name, seed),
	})

	op := h.profiler.Start("generation")
	lvl, err := gen.Generate()
	op.End()
	if err != nil {
		log.Printf("Generation failed for level %q: %v", req.Name, err)
		respondWithError(w, http.StatusInternalServerError, "Generation failed")
		return
	}

	for _, name := range req.Policies {
		policy, err := policyByName(name)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		op := h.profiler.Start("post_processing")
		err = policy.Process(gen, lvl)
		op.End()
		if err != nil {
			log.Printf("Policy %s failed for level %q: %v", name, req.Name, err)
			respondWithError(w, http.StatusInternalServerError, "Post-processing failed")
			return
		}
	}

	h.streams.Publish(streaming.Event{
		Type:    streaming.EventRunFinished,
		RunID:   req.Name,
		Message: fmt.Sprintf("level %q finished with %d chunks", req.Name, lvl.Len()),
	})

	stored := database.Snapshot(req.Name, seed, h.templateTags(), gen.Exhausted(), lvl)
	op = h.profiler.Start("persistence")
	id, err := h.store.SaveLevel(stored)
	op.End()
	if err != nil {
		log.Printf("Failed to save level %q: %v", req.Name, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to save level")
		return
	}
	stored.ID = id

	respondWithJSON(w, http.StatusCreated, levelResponseFromStored(stored))
}

// GetLevel handles GET /api/levels/{id}.
func (h *LevelHandlers) GetLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := levelIDFromPath(w, r)
	if !ok {
		return
	}

	stored, err := h.store.GetLevel(id)
	if err != nil {
		log.Printf("Failed to load level %d: %v", id, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load level")
		return
	}
	if stored == nil {
		respondWithError(w, http.StatusNotFound, "Level not found")
		return
	}

	respondWithJSON(w, http.StatusOK, levelResponseFromStored(stored))
}

// ListLevels handles GET /api/levels.
func (h *LevelHandlers) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.store.ListLevels()
	if err != nil {
		log.Printf("Failed to list levels: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to list levels")
		return
	}

	summaries := make([]LevelSummary, 0, len(levels))
	for _, stored := range levels {
		summaries = append(summaries, LevelSummary{
			ID:         stored.ID,
			Name:       stored.Name,
			Seed:       stored.Seed,
			ChunkCount: stored.ChunkCount,
			Exhausted:  stored.Exhausted,
			CreatedAt:  stored.CreatedAt,
		})
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"levels": summaries})
}

// DeleteLevel handles DELETE /api/levels/{id}.
func (h *LevelHandlers) DeleteLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := levelIDFromPath(w, r)
	if !ok {
		return
	}

	deleted, err := h.store.DeleteLevel(id)
	if err != nil {
		log.Printf("Failed to delete level %d: %v", id, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete level")
		return
	}
	if !deleted {
		respondWithError(w, http.StatusNotFound, "Level not found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HealthCheck handles GET /health.
func (h *LevelHandlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Stats handles GET /api/stats: timing metrics for generation phases.
func (h *LevelHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	report, err := h.profiler.JSONReport()
	if err != nil {
		log.Printf("Failed to build stats report: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to build stats report")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report); err != nil {
		log.Printf("Failed to write stats report: %v", err)
	}
}

func (h *LevelHandlers) generationConfig(req CreateLevelRequest, seed int64) levelgen.Config {
	cfg := levelgen.DefaultConfig()
	cfg.TargetChunks = h.config.Generation.TargetChunks
	cfg.RetryBudget = h.config.Generation.RetryBudget
	cfg.Backtrack = h.config.Generation.Backtrack
	cfg.CloseDeadEnds = h.config.Generation.CloseDeadEnds

	if req.TargetChunks > 0 {
		cfg.TargetChunks = req.TargetChunks
	}
	if req.RetryBudget > 0 {
		cfg.RetryBudget = req.RetryBudget
	}
	if req.Backtrack {
		cfg.Backtrack = true
	}
	if req.CloseDeadEnds {
		cfg.CloseDeadEnds = true
	}
	if req.Select != "" {
		cfg.Select = levelgen.SelectStrategy(req.Select)
	}
	cfg.Logger = streaming.NewLogger(h.streams, req.Name, nil)
	return cfg
}

func (h *LevelHandlers) templateTags() []string {
	tpls := h.catalog.Templates()
	tags := make([]string, 0, len(tpls))
	for _, tpl := range tpls {
		tags = append(tags, tpl.Tag)
	}
	return tags
}

func policyByName(name string) (levelgen.Policy[geom.Rect], error) {
	switch name {
	case "discard_open_contexts":
		return levelgen.DiscardOpenContexts[geom.Rect]{}, nil
	case "discard_open_chunks":
		return levelgen.DiscardOpenChunks[geom.Rect]{}, nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}

// levelIDFromPath extracts the numeric level ID from /api/levels/{id}.
func levelIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/levels"), "/")
	if path == "" {
		respondWithError(w, http.StatusBadRequest, "Level ID is required")
		return 0, false
	}

	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid level ID")
		return 0, false
	}
	return id, true
}

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		parts := make([]string, 0, len(ve))
		for _, fe := range ve {
			parts = append(parts, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
		return strings.Join(parts, "; ")
	}
	return "Validation failed"
}
