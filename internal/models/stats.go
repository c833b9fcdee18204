package models

import "time"

// TypeStat is the per-category slice of a user's statistics, keyed in
// UserStats.StatsByType by the task type code as a decimal string
// (untyped tasks count under "0").
type TypeStat struct {
	Attempts int `json:"attempts"`
	Correct  int `json:"correct"`
}

// UserStats is the per-user statistics aggregate. Exactly one row per
// user, created at registration or lazily on the first answer check.
// Mutated only inside the answer checker's transaction.
type UserStats struct {
	UserID          int64               `json:"-"`
	TotalAttempts   int                 `json:"total_attempts"`
	CorrectAttempts int                 `json:"correct_attempts"`
	TasksSolved     int                 `json:"tasks_solved"`
	StreakCurrent   int                 `json:"streak_current"`
	StreakMax       int                 `json:"streak_max"`
	LastActivity    *time.Time          `json:"last_activity,omitempty"`
	StatsByType     map[string]TypeStat `json:"stats_by_type"`
}

// StatsResponse is UserStats plus the derived accuracy percentage,
// rounded to one decimal place (0.0 with no attempts).
type StatsResponse struct {
	TotalAttempts   int                 `json:"total_attempts"`
	CorrectAttempts int                 `json:"correct_attempts"`
	TasksSolved     int                 `json:"tasks_solved"`
	Accuracy        float64             `json:"accuracy"`
	StreakCurrent   int                 `json:"streak_current"`
	StreakMax       int                 `json:"streak_max"`
	LastActivity    *time.Time          `json:"last_activity,omitempty"`
	StatsByType     map[string]TypeStat `json:"stats_by_type"`
}

// HistoryEntry is the compact solution summary served by the profile
// history endpoints.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	Answer    *string   `json:"answer"`
	IsCorrect *bool     `json:"is_correct"`
	CreatedAt time.Time `json:"created_at"`
}
