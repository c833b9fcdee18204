package variants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Vovadm/exammath.ru/internal/models"
)

var (
	ErrNotFound    = errors.New("variant not found")
	ErrBadTaskList = errors.New("unknown task id in variant")
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a variant with its ordered task list in one
// transaction. Every task id must exist.
func (s *Store) Create(ctx context.Context, createdBy int64, in models.VariantCreate) (*models.Variant, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, taskID := range in.TaskIDs {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, taskID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check task %d: %w", taskID, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %d", ErrBadTaskList, taskID)
		}
	}

	v := &models.Variant{Title: in.Title, Description: in.Description, CreatedBy: createdBy}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO variants (title, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		in.Title, in.Description, createdBy,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert variant: %w", err)
	}

	for i, taskID := range in.TaskIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO variant_items (variant_id, task_id, position)
			VALUES ($1, $2, $3)`, v.ID, taskID, i)
		if err != nil {
			return nil, fmt.Errorf("insert variant item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	v.Tasks = []models.Task{}
	return v, nil
}

// List returns all variants without their task bodies.
func (s *Store) List(ctx context.Context) ([]models.Variant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, created_by, created_at
		FROM variants ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	list := []models.Variant{}
	for rows.Next() {
		var v models.Variant
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.CreatedBy, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		v.Tasks = []models.Task{}
		list = append(list, v)
	}
	return list, rows.Err()
}

// Get returns one variant with its tasks in position order.
func (s *Store) Get(ctx context.Context, id int64) (*models.Variant, error) {
	var v models.Variant
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, created_by, created_at
		FROM variants WHERE id = $1`, id,
	).Scan(&v.ID, &v.Title, &v.Description, &v.CreatedBy, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get variant: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.fipi_id, t.guid, t.task_type, t.text, t.hint, t.answer,
		       t.images, t.inline_images, t.tables, t.created_at, t.updated_at
		FROM variant_items vi
		JOIN tasks t ON t.id = vi.task_id
		WHERE vi.variant_id = $1
		ORDER BY vi.position`, id)
	if err != nil {
		return nil, fmt.Errorf("query variant tasks: %w", err)
	}
	defer rows.Close()

	v.Tasks = []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.FipiID, &t.GUID, &t.TaskType, &t.Text, &t.Hint,
			&t.Answer, &t.Images, &t.InlineImages, &t.Tables, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan variant task: %w", err)
		}
		v.Tasks = append(v.Tasks, t)
	}
	return &v, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM variants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete variant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
