package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// Connect opens the Postgres pool using the standard PG* style env
// vars (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE).
func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	dbname := getEnv("DB_NAME", "exammath")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Printf("[database] connected to %s:%s/%s", host, port, dbname)
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Migrate creates the schema if it does not exist. Statements are
// idempotent so the server can run this on every start.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'student',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id BIGSERIAL PRIMARY KEY,
			fipi_id TEXT NOT NULL UNIQUE,
			guid TEXT,
			task_type INTEGER NOT NULL DEFAULT 0,
			text TEXT NOT NULL,
			hint TEXT,
			answer TEXT,
			images JSONB NOT NULL DEFAULT '[]',
			inline_images JSONB NOT NULL DEFAULT '[]',
			tables JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_task_type ON tasks(task_type)`,
		`CREATE TABLE IF NOT EXISTS solutions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			answer TEXT,
			is_correct BOOLEAN,
			content JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_solutions_user_id ON solutions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_solutions_user_task ON solutions(user_id, task_id)`,
		`CREATE TABLE IF NOT EXISTS solution_files (
			id BIGSERIAL PRIMARY KEY,
			solution_id BIGINT NOT NULL REFERENCES solutions(id) ON DELETE CASCADE,
			filename TEXT NOT NULL,
			filepath TEXT NOT NULL,
			file_type TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			total_attempts INTEGER NOT NULL DEFAULT 0,
			correct_attempts INTEGER NOT NULL DEFAULT 0,
			tasks_solved INTEGER NOT NULL DEFAULT 0,
			streak_current INTEGER NOT NULL DEFAULT 0,
			streak_max INTEGER NOT NULL DEFAULT 0,
			last_activity TIMESTAMPTZ,
			stats_by_type JSONB NOT NULL DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS variants (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			created_by BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS variant_items (
			id BIGSERIAL PRIMARY KEY,
			variant_id BIGINT NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
			task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			position INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_variant_items_variant ON variant_items(variant_id)`,
		`CREATE TABLE IF NOT EXISTS school_classes (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			created_by BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS class_members (
			id BIGSERIAL PRIMARY KEY,
			class_id BIGINT NOT NULL REFERENCES school_classes(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role TEXT NOT NULL DEFAULT 'student',
			UNIQUE (class_id, user_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	log.Println("[database] migrations applied")
	return nil
}
