package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todomvc/internal/model"
	"github.com/BuzzLyutic/todomvc/internal/repo"
	"github.com/BuzzLyutic/todomvc/internal/service"
	"github.com/BuzzLyutic/todomvc/pkg/respond"
)

const acknowledged = "Acknowledged"

type EntryHandler struct {
	service *service.EntryService
	logger  *zap.Logger
}

func NewEntryHandler(srv *service.EntryService, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.TaskRequest
	if err := respond.Decode(r, &req); err != nil {
		h.logger.Warn("failed to decode task request", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}

	entry, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleErrors(w, r, err, http.StatusInternalServerError)
		return
	}

	respond.Data(w, r, http.StatusOK, entry)
}

func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		h.handleErrors(w, r, err, http.StatusInternalServerError)
		return
	}
	respond.Data(w, r, http.StatusOK, entries)
}

func (h *EntryHandler) UpdateAll(w http.ResponseWriter, r *http.Request) {
	var entries []model.Entry
	if err := respond.Decode(r, &entries); err != nil {
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}

	if err := h.service.UpdateAll(r.Context(), entries); err != nil {
		h.handleErrors(w, r, err, http.StatusInternalServerError)
		return
	}
	respond.Data(w, r, http.StatusOK, acknowledged)
}

func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err, http.StatusNotFound)
		return
	}
	respond.Data(w, r, http.StatusOK, entry)
}

func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req model.Entry
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}

	if err := h.service.Update(r.Context(), id, req); err != nil {
		h.handleErrors(w, r, err, http.StatusNotFound)
		return
	}
	respond.Data(w, r, http.StatusOK, acknowledged)
}

func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		h.handleErrors(w, r, err, http.StatusNotFound)
		return
	}
	respond.Data(w, r, http.StatusOK, acknowledged)
}

func (h *EntryHandler) Health(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Count(r.Context())
	if err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		respond.JSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]interface{}{"status": "ok", "tasks": n})
}

func (h *EntryHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid id: %v", err))
		return uuid.Nil, false
	}
	return id, true
}

// handleErrors maps known errors to their status and everything else to
// fallback, which is 500 for collection endpoints and 404 for single-task
// lookups.
func (h *EntryHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	switch {
	case errors.Is(err, repo.ErrorNotFound), errors.Is(err, repo.ErrorTableEmpty):
		respond.Error(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, "validation error")
	default:
		h.logger.Error("request failed", zap.Error(err), zap.Int("status", fallback))
		respond.Error(w, r, fallback, err.Error())
	}
}
