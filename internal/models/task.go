package models

import (
	"encoding/json"
	"time"
)

// Task is a practice problem from the imported bank. TaskType is the
// exam category code (1..19); 0 or anything outside that range means
// the task has not been categorized yet. Answer is nil for tasks that
// cannot be auto-graded (essay-style, missing canonical answer).
type Task struct {
	ID           int64           `json:"id"`
	FipiID       string          `json:"fipi_id"`
	GUID         *string         `json:"guid,omitempty"`
	TaskType     int             `json:"task_type"`
	Text         string          `json:"text"`
	Hint         *string         `json:"hint,omitempty"`
	Answer       *string         `json:"answer,omitempty"`
	Images       json.RawMessage `json:"images"`
	InlineImages json.RawMessage `json:"inline_images"`
	Tables       json.RawMessage `json:"tables"`
	CreatedAt    time.Time       `json:"-"`
	UpdatedAt    time.Time       `json:"-"`
}

// HasAnswer reports whether the task carries a gradable canonical answer.
func (t *Task) HasAnswer() bool {
	return t.Answer != nil && *t.Answer != ""
}

type TaskListRequest struct {
	Page     int
	PerPage  int
	TaskType *int
	Search   string
	Filter   string // "", "untyped", "no_answer"
}

type TaskListResponse struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
}

type TaskUpdate struct {
	Text     *string `json:"text"`
	TaskType *int    `json:"task_type"`
	Answer   *string `json:"answer"`
	Hint     *string `json:"hint"`
}

// ImportTask is one entry of the scraped task-bank JSON dump.
type ImportTask struct {
	FipiID       string          `json:"id"`
	GUID         string          `json:"guid"`
	TaskType     int             `json:"type"`
	Text         string          `json:"text"`
	Hint         string          `json:"hint"`
	Answer       string          `json:"answer"`
	Images       json.RawMessage `json:"images"`
	InlineImages json.RawMessage `json:"inline_images"`
	Tables       json.RawMessage `json:"tables"`
}

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
