package solutions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Vovadm/exammath.ru/internal/models"
)

var ErrTaskNotFound = errors.New("task not found")

// Store is what the answer-checking service needs from persistence.
// SQLStore is the production implementation; tests use an in-memory
// one with the same locking guarantees.
type Store interface {
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	// RecordCheck atomically appends the graded attempt and folds it
	// into the user's statistics. Either both land or neither does.
	RecordCheck(ctx context.Context, userID int64, task *models.Task, answer string, correct bool) error
	GetStats(ctx context.Context, userID int64) (*models.UserStats, error)
	History(ctx context.Context, userID int64, limit int) ([]models.HistoryEntry, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	var t models.Task
	err := s.db.QueryRowContext(ctx, `
		SELECT id, fipi_id, guid, task_type, text, hint, answer,
		       images, inline_images, tables, created_at, updated_at
		FROM tasks WHERE id = $1`, id,
	).Scan(&t.ID, &t.FipiID, &t.GUID, &t.TaskType, &t.Text, &t.Hint, &t.Answer,
		&t.Images, &t.InlineImages, &t.Tables, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

// RecordCheck runs the whole check bookkeeping in one transaction.
// The user_stats row is created lazily, then locked with FOR UPDATE so
// concurrent checks for the same user serialize instead of losing
// increments.
func (s *SQLStore) RecordCheck(ctx context.Context, userID int64, task *models.Task, answer string, correct bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_stats (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("ensure stats row: %w", err)
	}

	st, err := scanStatsRow(tx.QueryRowContext(ctx, `
		SELECT user_id, total_attempts, correct_attempts, tasks_solved,
		       streak_current, streak_max, last_activity, stats_by_type
		FROM user_stats WHERE user_id = $1 FOR UPDATE`, userID))
	if err != nil {
		return fmt.Errorf("lock stats row: %w", err)
	}

	firstSolve := false
	if correct {
		var solvedBefore bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM solutions
				WHERE user_id = $1 AND task_id = $2 AND is_correct = TRUE
			)`, userID, task.ID).Scan(&solvedBefore)
		if err != nil {
			return fmt.Errorf("check prior solve: %w", err)
		}
		firstSolve = !solvedBefore
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO solutions (user_id, task_id, answer, is_correct)
		VALUES ($1, $2, $3, $4)`, userID, task.ID, answer, correct)
	if err != nil {
		return fmt.Errorf("insert solution: %w", err)
	}

	ApplyCheck(st, task.TaskType, correct, firstSolve, time.Now().UTC())

	byType, err := json.Marshal(st.StatsByType)
	if err != nil {
		return fmt.Errorf("marshal stats_by_type: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE user_stats
		SET total_attempts = $2, correct_attempts = $3, tasks_solved = $4,
		    streak_current = $5, streak_max = $6, last_activity = $7,
		    stats_by_type = $8
		WHERE user_id = $1`,
		userID, st.TotalAttempts, st.CorrectAttempts, st.TasksSolved,
		st.StreakCurrent, st.StreakMax, st.LastActivity, byType)
	if err != nil {
		return fmt.Errorf("update stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *SQLStore) GetStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	st, err := scanStatsRow(s.db.QueryRowContext(ctx, `
		SELECT user_id, total_attempts, correct_attempts, tasks_solved,
		       streak_current, streak_max, last_activity, stats_by_type
		FROM user_stats WHERE user_id = $1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		// No row yet means the user simply has not practiced.
		return &models.UserStats{UserID: userID, StatsByType: map[string]models.TypeStat{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return st, nil
}

func (s *SQLStore) History(ctx context.Context, userID int64, limit int) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, answer, is_correct, created_at
		FROM solutions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.Answer, &e.IsCorrect, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStatsRow(row scanner) (*models.UserStats, error) {
	var st models.UserStats
	var byType []byte
	err := row.Scan(&st.UserID, &st.TotalAttempts, &st.CorrectAttempts,
		&st.TasksSolved, &st.StreakCurrent, &st.StreakMax, &st.LastActivity, &byType)
	if err != nil {
		return nil, err
	}
	st.StatsByType = map[string]models.TypeStat{}
	if len(byType) > 0 {
		if err := json.Unmarshal(byType, &st.StatsByType); err != nil {
			return nil, fmt.Errorf("unmarshal stats_by_type: %w", err)
		}
	}
	return &st, nil
}
