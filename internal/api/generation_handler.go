package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Sniplyy/VibeWall/internal/api/shared"
	"github.com/Sniplyy/VibeWall/internal/events"
	"github.com/Sniplyy/VibeWall/internal/platform/logger"
	"github.com/Sniplyy/VibeWall/internal/task"
	"github.com/google/uuid"
)

// GenerationHandler serves the /v1/generations endpoints.
type GenerationHandler struct {
	emitter events.Emitter
	store   task.TaskStore
	logger  *slog.Logger
}

// NewGenerationHandler creates a GenerationHandler. Requests are published
// on emitter and looked up in store.
func NewGenerationHandler(emitter events.Emitter, store task.TaskStore, logger *slog.Logger) *GenerationHandler {
	return &GenerationHandler{
		emitter: emitter,
		store:   store,
		logger:  logger.With("component", "generation_handler"),
	}
}

// CreateGeneration handles POST /v1/generations. It answers 202 with the
// task ID once the task is queued.
func (h *GenerationHandler) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateGenerationRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	genReq, err := req.ToGeneration()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	id := uuid.New()
	event, err := events.NewGenerationRequested(events.GenerationRequested{
		TaskID:  id,
		Request: genReq,
		Count:   req.Variations,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.emitter.EmitEvent(r.Context(), event); err != nil {
		h.handleError(w, r, err)
		return
	}

	log.Info("generation accepted",
		"task_id", id,
		"mode", genReq.Mode,
		"aspect_ratio", genReq.AspectRatio,
		"references", len(genReq.ReferenceImages))

	w.Header().Set("Location", statusPath(id.String()))
	shared.RespondWithJSON(w, r, http.StatusAccepted, GenerationAccepted{
		ID:        id.String(),
		Status:    string(task.TaskStatusPending),
		StatusURL: statusPath(id.String()),
	})
}

// GetGeneration handles GET /v1/generations/{id}. ?inline=true embeds
// media as data URLs.
func (h *GenerationHandler) GetGeneration(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	result, err := task.LookupGeneration(r.Context(), h.store, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, generationToResponse(result, wantsInline(r)))
}

// GetGenerationMedia handles GET /v1/generations/{id}/media/{index} and
// streams the raw bytes of one artifact.
func (h *GenerationHandler) GetGenerationMedia(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	index, err := getPathIndex(r, "index")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	result, err := task.LookupGeneration(r.Context(), h.store, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	for _, m := range result.Media {
		if m.Index != index {
			continue
		}
		w.Header().Set("Content-Type", m.MIMEType)
		w.Header().Set("Content-Length", strconv.Itoa(len(m.Data)))
		w.Header().Set("Cache-Control", "private, max-age=3600")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(m.Data); err != nil {
			logger.FromContextOrDefault(r.Context(), h.logger).
				Warn("failed to write media", "error", err, "task_id", id, "index", index)
		}
		return
	}

	h.handleError(w, r, ErrMediaMissing)
}

func (h *GenerationHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	var opts []shared.ResponseOption
	if status == http.StatusServiceUnavailable {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	if errors.Is(err, task.ErrQueueFull) {
		w.Header().Set("Retry-After", "10")
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}
