package solutions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Vovadm/exammath.ru/internal/media"
	"github.com/Vovadm/exammath.ru/internal/models"
)

type Handler struct {
	service   *Service
	store     *SQLStore
	uploadDir string
}

func NewHandler(service *Service, store *SQLStore, uploadDir string) *Handler {
	return &Handler{service: service, store: store, uploadDir: uploadDir}
}

// CheckAnswer grades a submitted answer and updates the user's
// statistics.
func (h *Handler) CheckAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req models.CheckAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TaskID <= 0 {
		writeError(w, http.StatusBadRequest, "task_id is required")
		return
	}

	result, err := h.service.CheckAnswer(r.Context(), userID, req.TaskID, req.Answer)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		log.Printf("[solutions] check answer user=%d task=%d: %v", userID, req.TaskID, err)
		writeError(w, http.StatusInternalServerError, "failed to check answer")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SaveDraft creates or updates the user's working solution for a task.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req models.SolutionCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TaskID <= 0 {
		writeError(w, http.StatusBadRequest, "task_id is required")
		return
	}

	if _, err := h.store.GetTask(r.Context(), req.TaskID); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		log.Printf("[solutions] get task %d: %v", req.TaskID, err)
		writeError(w, http.StatusInternalServerError, "failed to save solution")
		return
	}

	sol, err := h.store.SaveDraft(r.Context(), userID, req)
	if err != nil {
		log.Printf("[solutions] save draft user=%d task=%d: %v", userID, req.TaskID, err)
		writeError(w, http.StatusInternalServerError, "failed to save solution")
		return
	}

	writeJSON(w, http.StatusCreated, sol)
}

// ListMine returns the caller's solutions for a task.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	taskID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	sols, err := h.store.ListForTask(r.Context(), userID, taskID)
	if err != nil {
		log.Printf("[solutions] list for task %d: %v", taskID, err)
		writeError(w, http.StatusInternalServerError, "failed to load solutions")
		return
	}

	writeJSON(w, http.StatusOK, sols)
}

// ListAll returns every user's solutions for a task. Routed behind the
// teacher/admin role gate.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	sols, err := h.store.ListAllForTask(r.Context(), taskID)
	if err != nil {
		log.Printf("[solutions] list all for task %d: %v", taskID, err)
		writeError(w, http.StatusInternalServerError, "failed to load solutions")
		return
	}

	writeJSON(w, http.StatusOK, sols)
}

// Upload attaches an image to one of the caller's solutions. The file
// is normalized and stored under a random name in the upload dir.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	solutionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid solution id")
		return
	}

	owner, err := h.store.GetSolutionOwner(r.Context(), solutionID)
	if err != nil {
		if errors.Is(err, ErrSolutionNotFound) {
			writeError(w, http.StatusNotFound, "solution not found")
			return
		}
		log.Printf("[solutions] solution owner %d: %v", solutionID, err)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	if owner != userID {
		writeError(w, http.StatusForbidden, "not your solution")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, media.MaxUploadSize+1024)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	compressed, ext, err := media.Compress(data, header.Filename)
	if err != nil {
		if errors.Is(err, media.ErrTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "unsupported or corrupt image")
		return
	}

	stored := uuid.NewString() + ext
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		log.Printf("[solutions] create upload dir: %v", err)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	if err := os.WriteFile(filepath.Join(h.uploadDir, stored), compressed, 0o644); err != nil {
		log.Printf("[solutions] write upload: %v", err)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	rec, err := h.store.AddFile(r.Context(), solutionID, header.Filename, stored, header.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("[solutions] record upload: %v", err)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	writeJSON(w, http.StatusCreated, models.UploadResponse{
		ID:       rec.ID,
		Filename: stored,
		Original: header.Filename,
	})
}

func pathID(r *http.Request, key string) (int64, error) {
	raw := mux.Vars(r)[key]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[solutions] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
