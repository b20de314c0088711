package mockapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/validate"
)

// PublishRequest is the body of POST /announcements.
type PublishRequest struct {
	LGU     string `json:"lgu" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// Handler serves the backend endpoints.
type Handler struct {
	logger  *slog.Logger
	backend *Backend
}

// NewHandler creates a handler over backend.
func NewHandler(logger *slog.Logger, backend *Backend) *Handler {
	return &Handler{logger: logger, backend: backend}
}

// GetMessages serves GET /messages/{number}.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	data, err := h.backend.Latest(number)
	if errors.Is(err, ErrNoMessages) {
		writeJSON(w, http.StatusOK, model.MessageEnvelope{Message: "No messages found"})
		return
	}

	writeJSON(w, http.StatusOK, model.MessageEnvelope{
		Message: "Latest message retrieved",
		Data:    &data,
	})
}

// MarkRead serves PATCH /messages/{number}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	var req model.MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	n := h.backend.MarkRead(number, req.MessageIDs)
	h.logger.Debug("messages marked read",
		slog.String("number", number),
		slog.Int("count", n),
	)
	writeJSON(w, http.StatusOK, map[string]any{"updated": n})
}

// CreateUser serves POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": validate.Describe(err)})
		return
	}

	status := http.StatusOK
	if h.backend.UpsertUser(req.Number, req.SubscribedLGUs) {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"number":          req.Number,
		"subscribed_lgus": req.SubscribedLGUs,
	})
}

// LGUNames serves GET /lgus/names.
func (h *Handler) LGUNames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.backend.LGUNames())
}

// Publish serves POST /announcements, a demo-only endpoint that delivers
// a message to every subscriber of an LGU.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": validate.Describe(err)})
		return
	}

	data, err := h.backend.Publish(req.LGU, req.Message)
	if errors.Is(err, ErrUnknownLGU) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown lgu " + req.LGU})
		return
	}

	h.logger.Info("announcement published",
		slog.String("lgu", req.LGU),
		slog.Int("recipients", len(data.SubscribedNumbers)),
	)
	writeJSON(w, http.StatusCreated, data)
}

// Health serves GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
