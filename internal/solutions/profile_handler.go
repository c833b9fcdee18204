package solutions

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Vovadm/exammath.ru/internal/models"
)

// ProfileHandler serves the statistics and history read paths, for the
// caller's own profile and, for staff, other users' profiles.
type ProfileHandler struct {
	service *Service
	db      *sql.DB
}

func NewProfileHandler(service *Service, db *sql.DB) *ProfileHandler {
	return &ProfileHandler{service: service, db: db}
}

// MyStats returns the caller's statistics summary.
func (h *ProfileHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	h.writeStats(w, r, userID)
}

// MyHistory returns the caller's recent attempts.
func (h *ProfileHandler) MyHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	h.writeHistory(w, r, userID)
}

// UserProfile returns another user's public profile. Visible to the
// user themselves and to teachers/admins.
func (h *ProfileHandler) UserProfile(w http.ResponseWriter, r *http.Request) {
	targetID, ok := h.authorizeTarget(w, r)
	if !ok {
		return
	}

	var profile struct {
		ID        int64     `json:"id"`
		Username  string    `json:"username"`
		Email     string    `json:"email"`
		Role      string    `json:"role"`
		CreatedAt time.Time `json:"created_at"`
	}
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, username, email, role, created_at
		FROM users WHERE id = $1`, targetID,
	).Scan(&profile.ID, &profile.Username, &profile.Email, &profile.Role, &profile.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		log.Printf("[profile] get user %d: %v", targetID, err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UserStats returns another user's statistics, staff or self only.
func (h *ProfileHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	targetID, ok := h.authorizeTarget(w, r)
	if !ok {
		return
	}
	h.writeStats(w, r, targetID)
}

// UserHistory returns another user's recent attempts, staff or self only.
func (h *ProfileHandler) UserHistory(w http.ResponseWriter, r *http.Request) {
	targetID, ok := h.authorizeTarget(w, r)
	if !ok {
		return
	}
	h.writeHistory(w, r, targetID)
}

// authorizeTarget resolves the {id} path var and allows the request
// when the caller is the target user or holds a staff role.
func (h *ProfileHandler) authorizeTarget(w http.ResponseWriter, r *http.Request) (int64, bool) {
	callerID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return 0, false
	}

	targetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}

	if callerID == targetID {
		return targetID, true
	}

	var role string
	err = h.db.QueryRowContext(r.Context(),
		`SELECT role FROM users WHERE id = $1`, callerID).Scan(&role)
	if err != nil {
		log.Printf("[profile] load caller role %d: %v", callerID, err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return 0, false
	}
	if role != models.RoleTeacher && role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "insufficient permissions")
		return 0, false
	}
	return targetID, true
}

func (h *ProfileHandler) writeStats(w http.ResponseWriter, r *http.Request, userID int64) {
	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		log.Printf("[profile] stats for user %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ProfileHandler) writeHistory(w http.ResponseWriter, r *http.Request, userID int64) {
	history, err := h.service.History(r.Context(), userID)
	if err != nil {
		log.Printf("[profile] history for user %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, history)
}
