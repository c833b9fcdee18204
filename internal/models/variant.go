package models

import "time"

// Variant is an ordered exam-style set of tasks assembled by a teacher.
type Variant struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	Tasks       []Task    `json:"tasks"`
}

type VariantCreate struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	TaskIDs     []int64 `json:"task_ids"`
}
