package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Vovadm/exammath.ru/internal/models"
)

var ErrNotFound = errors.New("task not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const taskColumns = `id, fipi_id, guid, task_type, text, hint, answer,
	images, inline_images, tables, created_at, updated_at`

// List returns a page of tasks. Filters compose: a category filter,
// a free-text search on the statement, and the named maintenance
// filters "untyped" (category missing or out of range) and
// "no_answer" (auto-gradable categories with no canonical answer).
func (s *Store) List(ctx context.Context, req models.TaskListRequest) (*models.TaskListResponse, error) {
	where := []string{}
	args := []interface{}{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if req.TaskType != nil {
		where = append(where, "task_type = "+arg(*req.TaskType))
	}
	if req.Search != "" {
		where = append(where, "text ILIKE "+arg("%"+req.Search+"%"))
	}
	switch req.Filter {
	case "untyped":
		where = append(where, "(task_type = 0 OR task_type NOT BETWEEN 1 AND 19)")
	case "no_answer":
		where = append(where, "(task_type BETWEEN 1 AND 12 AND (answer IS NULL OR answer = ''))")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks"+clause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	limit := arg(req.PerPage)
	offset := arg((req.Page - 1) * req.PerPage)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks"+clause+" ORDER BY id LIMIT "+limit+" OFFSET "+offset,
		args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	list := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pages := (total + req.PerPage - 1) / req.PerPage
	return &models.TaskListResponse{Tasks: list, Total: total, Page: req.Page, Pages: pages}, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*models.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.FipiID, &t.GUID, &t.TaskType, &t.Text, &t.Hint,
		&t.Answer, &t.Images, &t.InlineImages, &t.Tables, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
