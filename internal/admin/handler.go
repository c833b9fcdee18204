package admin

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Vovadm/exammath.ru/internal/models"
)

// Handler serves the admin API. All routes are behind the admin role
// gate; task editing is additionally open to teachers.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// UpdateTask applies a partial edit to a task.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var upd models.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if upd.Text == nil && upd.TaskType == nil && upd.Answer == nil && upd.Hint == nil {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	if upd.Text != nil && *upd.Text == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}

	if err := h.store.UpdateTask(r.Context(), id, upd); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		log.Printf("[admin] update task %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ListUsers returns every registered user.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("[admin] list users: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// SetUserRole changes a user's platform role.
func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !models.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "role must be student, teacher or admin")
		return
	}

	if err := h.store.SetUserRole(r.Context(), id, req.Role); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("[admin] set role for user %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Stats serves the platform totals for the admin dashboard.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.PlatformStats(r.Context())
	if err != nil {
		log.Printf("[admin] platform stats: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ImportTasks ingests a JSON task-bank dump.
func (h *Handler) ImportTasks(w http.ResponseWriter, r *http.Request) {
	var items []models.ImportTask
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(items) == 0 {
		writeError(w, http.StatusBadRequest, "no tasks to import")
		return
	}

	result, err := h.store.ImportTasks(r.Context(), items)
	if err != nil {
		log.Printf("[admin] import tasks: %v", err)
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}

	log.Printf("[admin] imported %d tasks, skipped %d", result.Imported, result.Skipped)
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[admin] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
