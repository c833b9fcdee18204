package classes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Vovadm/exammath.ru/internal/models"
)

var (
	ErrNotFound        = errors.New("class not found")
	ErrMemberNotFound  = errors.New("class member not found")
	ErrDuplicateMember = errors.New("user is already a member of this class")
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, createdBy int64, in models.ClassCreate) (*models.SchoolClass, error) {
	c := &models.SchoolClass{Name: in.Name, Description: in.Description, CreatedBy: createdBy}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO school_classes (name, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		in.Name, in.Description, createdBy,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert class: %w", err)
	}
	c.Members = []models.ClassMember{}
	return c, nil
}

// List returns the classes visible to the caller: admins see all,
// teachers the classes they teach in, students the classes they sit in.
func (s *Store) List(ctx context.Context, userID int64, role string) ([]models.SchoolClass, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch role {
	case models.RoleAdmin:
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, name, description, created_by, created_at
			FROM school_classes ORDER BY created_at DESC, id DESC`)
	case models.RoleTeacher:
		rows, err = s.db.QueryContext(ctx, `
			SELECT c.id, c.name, c.description, c.created_by, c.created_at
			FROM school_classes c
			JOIN class_members m ON m.class_id = c.id
			WHERE m.user_id = $1 AND m.role = 'teacher'
			ORDER BY c.created_at DESC, c.id DESC`, userID)
	default:
		rows, err = s.db.QueryContext(ctx, `
			SELECT c.id, c.name, c.description, c.created_by, c.created_at
			FROM school_classes c
			JOIN class_members m ON m.class_id = c.id
			WHERE m.user_id = $1
			ORDER BY c.created_at DESC, c.id DESC`, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("query classes: %w", err)
	}
	defer rows.Close()

	list := []models.SchoolClass{}
	for rows.Next() {
		var c models.SchoolClass
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		c.Members = []models.ClassMember{}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Get returns one class with its member roster.
func (s *Store) Get(ctx context.Context, id int64) (*models.SchoolClass, error) {
	var c models.SchoolClass
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_by, created_at
		FROM school_classes WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedBy, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.user_id, u.username, u.email, m.role
		FROM class_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.class_id = $1
		ORDER BY u.username`, id)
	if err != nil {
		return nil, fmt.Errorf("query class members: %w", err)
	}
	defer rows.Close()

	c.Members = []models.ClassMember{}
	for rows.Next() {
		var m models.ClassMember
		if err := rows.Scan(&m.ID, &m.UserID, &m.Username, &m.Email, &m.Role); err != nil {
			return nil, fmt.Errorf("scan class member: %w", err)
		}
		c.Members = append(c.Members, m)
	}
	return &c, rows.Err()
}

func (s *Store) AddMember(ctx context.Context, classID int64, in models.ClassAddMember) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM school_classes WHERE id = $1)`, classID).Scan(&exists); err != nil {
		return fmt.Errorf("check class: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO class_members (class_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (class_id, user_id) DO NOTHING`,
		classID, in.UserID, in.Role)
	if err != nil {
		return fmt.Errorf("insert class member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrDuplicateMember
	}
	return nil
}

func (s *Store) RemoveMember(ctx context.Context, classID, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM class_members WHERE class_id = $1 AND user_id = $2`, classID, userID)
	if err != nil {
		return fmt.Errorf("delete class member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM school_classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
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
