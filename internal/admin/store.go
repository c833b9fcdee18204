package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Vovadm/exammath.ru/internal/models"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrUserNotFound = errors.New("user not found")
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpdateTask applies a partial update. Only fields present in the
// request change; answer and hint may be set to empty strings to clear
// them.
func (s *Store) UpdateTask(ctx context.Context, id int64, upd models.TaskUpdate) error {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Text != nil {
		sets = append(sets, "text = "+arg(*upd.Text))
	}
	if upd.TaskType != nil {
		sets = append(sets, "task_type = "+arg(*upd.TaskType))
	}
	if upd.Answer != nil {
		sets = append(sets, "answer = NULLIF("+arg(*upd.Answer)+", '')")
	}
	if upd.Hint != nil {
		sets = append(sets, "hint = NULLIF("+arg(*upd.Hint)+", '')")
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = $1", args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, email, role, created_at
		FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) SetUserRole(ctx context.Context, userID int64, role string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET role = $2 WHERE id = $1`, userID, role)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// PlatformStats is the admin dashboard summary.
type PlatformStats struct {
	TotalUsers     int            `json:"total_users"`
	TotalTasks     int            `json:"total_tasks"`
	TotalSolutions int            `json:"total_solutions"`
	TasksByType    map[string]int `json:"tasks_by_type"`
}

func (s *Store) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	st := &PlatformStats{TasksByType: map[string]int{}}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&st.TotalUsers); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&st.TotalTasks); err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM solutions`).Scan(&st.TotalSolutions); err != nil {
		return nil, fmt.Errorf("count solutions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT task_type, COUNT(*) FROM tasks GROUP BY task_type ORDER BY task_type`)
	if err != nil {
		return nil, fmt.Errorf("count tasks by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskType, count int
		if err := rows.Scan(&taskType, &count); err != nil {
			return nil, fmt.Errorf("scan task type count: %w", err)
		}
		st.TasksByType[fmt.Sprintf("%d", taskType)] = count
	}
	return st, rows.Err()
}

// ImportTasks loads a scraped task-bank dump, skipping entries whose
// fipi_id is already present. The whole import is one transaction.
func (s *Store) ImportTasks(ctx context.Context, items []models.ImportTask) (*models.ImportResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result := &models.ImportResult{}
	for _, item := range items {
		if item.FipiID == "" || item.Text == "" {
			result.Skipped++
			continue
		}

		images := item.Images
		if len(images) == 0 {
			images = []byte("[]")
		}
		inline := item.InlineImages
		if len(inline) == 0 {
			inline = []byte("[]")
		}
		tables := item.Tables
		if len(tables) == 0 {
			tables = []byte("[]")
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (fipi_id, guid, task_type, text, hint, answer,
			                   images, inline_images, tables)
			VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), NULLIF($6, ''),
			        $7, $8, $9)
			ON CONFLICT (fipi_id) DO NOTHING`,
			item.FipiID, item.GUID, item.TaskType, item.Text, item.Hint,
			item.Answer, images, inline, tables)
		if err != nil {
			return nil, fmt.Errorf("insert task %s: %w", item.FipiID, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			result.Skipped++
		} else {
			result.Imported++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return result, nil
}
