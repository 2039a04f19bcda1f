package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/NaufalAlfiR/task-management-system/internal/apperrors"
	"github.com/NaufalAlfiR/task-management-system/internal/models"
)

// PostgresStore implements UserStore and TaskStore on top of database/sql.
// It exists to prove the storage abstraction: handlers are wired against the
// interfaces and never see which backend is behind them.
type PostgresStore struct {
	db *sql.DB
}

func OpenPostgres(host string, port int, user, pass, dbname string) (*PostgresStore, error) {
	psqlconn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, pass, dbname)
	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *PostgresStore) CreateTablesIfNotExist(ctx context.Context) error {
	query := `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    username VARCHAR(255) NOT NULL UNIQUE,
    email VARCHAR(255) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_login_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
    id SERIAL PRIMARY KEY,
    user_id INT NOT NULL REFERENCES users (id),
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    priority VARCHAR(16) NOT NULL,
    category VARCHAR(16) NOT NULL,
    due_date TIMESTAMP,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    tags TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		user.Username, user.Email, user.PasswordHash, user.Active, now,
	).Scan(&user.ID)
	if err != nil {
		return mapUserConstraint(err)
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// mapUserConstraint turns a unique violation into the matching sentinel.
func mapUserConstraint(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if strings.Contains(pqErr.Constraint, "email") {
			return apperrors.ErrDuplicateEmail
		}
		return apperrors.ErrDuplicateUsername
	}
	return err
}

const userColumns = "id, username, email, password, active, created_at, updated_at, last_login_at"

func (s *PostgresStore) scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	var lastLogin sql.NullTime
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Active, &user.CreatedAt, &user.UpdatedAt, &lastLogin)
	if err == sql.ErrNoRows {
		return models.User{}, apperrors.ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if lastLogin.Valid {
		user.LastLoginAt = &lastLogin.Time
	}
	return user, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id int) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username))
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE LOWER(email) = LOWER($1)", email))
}

func (s *PostgresStore) RecordLogin(ctx context.Context, id int, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET last_login_at = $1, updated_at = $1 WHERE id = $2", at, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// Tasks returns the TaskStore view of the same database.
func (s *PostgresStore) Tasks() *PostgresTaskStore { return &PostgresTaskStore{db: s.db} }

type PostgresTaskStore struct {
	db *sql.DB
}

const taskColumns = "id, user_id, title, description, priority, category, due_date, completed, tags, created_at, updated_at"

func scanTask(row interface{ Scan(...interface{}) error }) (models.Task, error) {
	var task models.Task
	var due sql.NullTime
	var tags pq.StringArray
	err := row.Scan(&task.ID, &task.UserID, &task.Title, &task.Description,
		&task.Priority, &task.Category, &due, &task.Completed, &tags,
		&task.CreatedAt, &task.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Task{}, apperrors.ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	if due.Valid {
		task.DueDate = &due.Time
	}
	task.Tags = []string(tags)
	return task, nil
}

func (s *PostgresTaskStore) Create(ctx context.Context, task *models.Task) error {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" || !task.Priority.Valid() || !task.Category.Valid() {
		return apperrors.ErrInvalidTask
	}
	task.Tags = models.NormalizeTags(task.Tags)

	now := time.Now()
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tasks (user_id, title, description, priority, category, due_date, completed, tags, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING id`,
		task.UserID, task.Title, task.Description, task.Priority, task.Category,
		task.DueDate, task.Completed, pq.Array(task.Tags), now,
	).Scan(&task.ID)
	if err != nil {
		return err
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (s *PostgresTaskStore) Get(ctx context.Context, id, ownerID int) (models.Task, error) {
	return scanTask(s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1 AND user_id = $2", id, ownerID))
}

// Update reads the row under a lock, applies the patch in Go, and writes it
// back, so patch semantics stay identical to the in-memory store.
func (s *PostgresTaskStore) Update(ctx context.Context, id, ownerID int, patch TaskPatch) (models.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Task{}, err
	}
	defer tx.Rollback()

	task, err := scanTask(tx.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1 AND user_id = $2 FOR UPDATE", id, ownerID))
	if err != nil {
		return models.Task{}, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.Task{}, apperrors.ErrInvalidTask
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return models.Task{}, apperrors.ErrInvalidTask
		}
		task.Priority = *patch.Priority
	}
	if patch.Category != nil {
		if !patch.Category.Valid() {
			return models.Task{}, apperrors.ErrInvalidTask
		}
		task.Category = *patch.Category
	}
	if patch.ClearDueDate {
		task.DueDate = nil
	} else if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if patch.Tags != nil {
		task.Tags = models.NormalizeTags(*patch.Tags)
	}
	task.UpdatedAt = time.Now()

	_, err = tx.ExecContext(ctx,
		`UPDATE tasks SET title = $1, description = $2, priority = $3, category = $4,
		 due_date = $5, completed = $6, tags = $7, updated_at = $8 WHERE id = $9`,
		task.Title, task.Description, task.Priority, task.Category,
		task.DueDate, task.Completed, pq.Array(task.Tags), task.UpdatedAt, id)
	if err != nil {
		return models.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *PostgresTaskStore) Delete(ctx context.Context, id, ownerID int) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = $1 AND user_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *PostgresTaskStore) ListByOwner(ctx context.Context, ownerID int) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = $1 ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *PostgresTaskStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count)
	return count, err
}
