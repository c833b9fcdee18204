package variants

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

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Create builds a new variant from an ordered task list. Routed
// behind the teacher/admin role gate.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req models.VariantCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if len(req.TaskIDs) == 0 {
		writeError(w, http.StatusBadRequest, "task_ids must not be empty")
		return
	}

	v, err := h.store.Create(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrBadTaskList) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[variants] create: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create variant")
		return
	}

	writeJSON(w, http.StatusCreated, v)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		log.Printf("[variants] list: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load variants")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid variant id")
		return
	}

	v, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "variant not found")
			return
		}
		log.Printf("[variants] get %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load variant")
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// Delete removes a variant. Routed behind the teacher/admin role gate.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid variant id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "variant not found")
			return
		}
		log.Printf("[variants] delete %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete variant")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[variants] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
