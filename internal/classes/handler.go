package classes

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

// Create adds a new class. Routed behind the admin role gate.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req models.ClassCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.store.Create(r.Context(), userID, req)
	if err != nil {
		log.Printf("[classes] create: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create class")
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

// List shows the classes the caller can see. The role gate stores the
// resolved role in the context.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	role, _ := r.Context().Value("user_role").(string)

	list, err := h.store.List(r.Context(), userID, role)
	if err != nil {
		log.Printf("[classes] list: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load classes")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid class id")
		return
	}

	c, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "class not found")
			return
		}
		log.Printf("[classes] get %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load class")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// AddMember enrolls a user into a class. Routed behind the admin role
// gate.
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	classID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid class id")
		return
	}

	var req models.ClassAddMember
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleStudent
	}
	if req.Role != models.RoleStudent && req.Role != models.RoleTeacher {
		writeError(w, http.StatusBadRequest, "role must be student or teacher")
		return
	}

	if err := h.store.AddMember(r.Context(), classID, req); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "class not found")
		case errors.Is(err, ErrDuplicateMember):
			writeError(w, http.StatusConflict, "user is already a member")
		default:
			log.Printf("[classes] add member: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to add member")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

// RemoveMember drops a user from a class. Routed behind the admin role
// gate.
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	classID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid class id")
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.store.RemoveMember(r.Context(), classID, userID); err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			writeError(w, http.StatusNotFound, "member not found")
			return
		}
		log.Printf("[classes] remove member: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to remove member")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// Delete removes a class. Routed behind the admin role gate.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid class id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "class not found")
			return
		}
		log.Printf("[classes] delete %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete class")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func pathID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[key], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[classes] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
