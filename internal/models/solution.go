package models

import (
	"encoding/json"
	"time"
)

// Solution is one user's submission against one task. IsCorrect is
// tri-state: nil means an ungraded draft (saved via the editor, never
// graded), true/false means the answer checker produced a verdict.
// Graded solutions are append-only; only ungraded drafts get updated.
type Solution struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	TaskID    int64           `json:"task_id"`
	Answer    *string         `json:"answer,omitempty"`
	IsCorrect *bool           `json:"is_correct"`
	Content   json.RawMessage `json:"content"`
	Files     []SolutionFile  `json:"files"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Username  string          `json:"username,omitempty"`
}

type SolutionFile struct {
	ID       int64   `json:"id"`
	Filename string  `json:"filename"`
	Filepath string  `json:"filepath"`
	FileType *string `json:"file_type,omitempty"`
}

type CheckAnswerRequest struct {
	TaskID int64  `json:"task_id"`
	Answer string `json:"answer"`
}

// CheckAnswerResponse reveals the canonical answer only on a wrong
// attempt against a gradable task.
type CheckAnswerResponse struct {
	Correct       bool    `json:"correct"`
	CorrectAnswer *string `json:"correct_answer,omitempty"`
}

type SolutionCreate struct {
	TaskID  int64           `json:"task_id"`
	Answer  *string         `json:"answer"`
	Content json.RawMessage `json:"content"`
}

type UploadResponse struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	Original string `json:"original"`
}
