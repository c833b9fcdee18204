package solutions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Vovadm/exammath.ru/internal/models"
)

var ErrSolutionNotFound = errors.New("solution not found")

// SaveDraft upserts the user's working solution for a task: the latest
// ungraded draft gets updated in place, otherwise a new row is created.
// Graded attempts are never touched.
func (s *SQLStore) SaveDraft(ctx context.Context, userID int64, in models.SolutionCreate) (*models.Solution, error) {
	content := in.Content
	if len(content) == 0 {
		content = []byte("[]")
	}

	sol := &models.Solution{UserID: userID, TaskID: in.TaskID, Answer: in.Answer, Content: content}

	err := s.db.QueryRowContext(ctx, `
		UPDATE solutions
		SET answer = $3, content = $4, updated_at = NOW()
		WHERE id = (
			SELECT id FROM solutions
			WHERE user_id = $1 AND task_id = $2 AND is_correct IS NULL
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
		RETURNING id, created_at, updated_at`,
		userID, in.TaskID, in.Answer, content,
	).Scan(&sol.ID, &sol.CreatedAt, &sol.UpdatedAt)
	if err == nil {
		return sol, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update draft: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO solutions (user_id, task_id, answer, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		userID, in.TaskID, in.Answer, content,
	).Scan(&sol.ID, &sol.CreatedAt, &sol.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert draft: %w", err)
	}
	return sol, nil
}

// ListForTask returns one user's solutions for a task, newest first.
func (s *SQLStore) ListForTask(ctx context.Context, userID, taskID int64) ([]models.Solution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.task_id, s.answer, s.is_correct, s.content,
		       s.created_at, s.updated_at, u.username
		FROM solutions s
		JOIN users u ON u.id = s.user_id
		WHERE s.user_id = $1 AND s.task_id = $2
		ORDER BY s.created_at DESC, s.id DESC`, userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("query solutions: %w", err)
	}
	return s.collectSolutions(ctx, rows)
}

// ListAllForTask returns every user's solutions for a task, for
// teacher review.
func (s *SQLStore) ListAllForTask(ctx context.Context, taskID int64) ([]models.Solution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.task_id, s.answer, s.is_correct, s.content,
		       s.created_at, s.updated_at, u.username
		FROM solutions s
		JOIN users u ON u.id = s.user_id
		WHERE s.task_id = $1
		ORDER BY s.created_at DESC, s.id DESC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query solutions: %w", err)
	}
	return s.collectSolutions(ctx, rows)
}

func (s *SQLStore) collectSolutions(ctx context.Context, rows *sql.Rows) ([]models.Solution, error) {
	defer rows.Close()

	sols := []models.Solution{}
	for rows.Next() {
		var sol models.Solution
		if err := rows.Scan(&sol.ID, &sol.UserID, &sol.TaskID, &sol.Answer,
			&sol.IsCorrect, &sol.Content, &sol.CreatedAt, &sol.UpdatedAt, &sol.Username); err != nil {
			return nil, fmt.Errorf("scan solution: %w", err)
		}
		sol.Files = []models.SolutionFile{}
		sols = append(sols, sol)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sols {
		files, err := s.listFiles(ctx, sols[i].ID)
		if err != nil {
			return nil, err
		}
		sols[i].Files = files
	}
	return sols, nil
}

// GetSolutionOwner returns the owning user id, for upload access checks.
func (s *SQLStore) GetSolutionOwner(ctx context.Context, solutionID int64) (int64, error) {
	var owner int64
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id FROM solutions WHERE id = $1`, solutionID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSolutionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get solution owner: %w", err)
	}
	return owner, nil
}

func (s *SQLStore) AddFile(ctx context.Context, solutionID int64, filename, filepath, fileType string) (*models.SolutionFile, error) {
	f := &models.SolutionFile{Filename: filename, Filepath: filepath}
	if fileType != "" {
		f.FileType = &fileType
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO solution_files (solution_id, filename, filepath, file_type)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id`,
		solutionID, filename, filepath, fileType,
	).Scan(&f.ID)
	if err != nil {
		return nil, fmt.Errorf("insert solution file: %w", err)
	}
	return f, nil
}

func (s *SQLStore) listFiles(ctx context.Context, solutionID int64) ([]models.SolutionFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, filepath, file_type
		FROM solution_files WHERE solution_id = $1 ORDER BY id`, solutionID)
	if err != nil {
		return nil, fmt.Errorf("query solution files: %w", err)
	}
	defer rows.Close()

	files := []models.SolutionFile{}
	for rows.Next() {
		var f models.SolutionFile
		if err := rows.Scan(&f.ID, &f.Filename, &f.Filepath, &f.FileType); err != nil {
			return nil, fmt.Errorf("scan solution file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
