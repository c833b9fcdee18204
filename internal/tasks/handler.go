package tasks

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Vovadm/exammath.ru/internal/models"
)

const (
	defaultPerPage = 20
	maxPerPage     = 50
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// List serves the paginated task bank with optional filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := models.TaskListRequest{
		Page:    intQueryParam(r, "page", 1),
		PerPage: intQueryParam(r, "per_page", defaultPerPage),
		Search:  strings.TrimSpace(r.URL.Query().Get("search")),
		Filter:  r.URL.Query().Get("filter"),
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > maxPerPage {
		req.PerPage = defaultPerPage
	}
	if raw := r.URL.Query().Get("task_type"); raw != "" {
		tt, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid task_type")
			return
		}
		req.TaskType = &tt
	}
	if req.Filter != "" && req.Filter != "untyped" && req.Filter != "no_answer" {
		writeError(w, http.StatusBadRequest, "unknown filter")
		return
	}

	resp, err := h.store.List(r.Context(), req)
	if err != nil {
		log.Printf("[tasks] list: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load tasks")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get serves a single task by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		log.Printf("[tasks] get %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load task")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func intQueryParam(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[tasks] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
