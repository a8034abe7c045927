// Package tasks provides the PostgreSQL-backed repository for task
// persistence and the per-owner dashboard aggregates.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// PostgresRepository implements task storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Task, error) {
	query := `SELECT id, owner_id, title, description, due_date, status, created_at, updated_at FROM tasks
		 WHERE owner_id = $1
		 ORDER BY created_at
		 `
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		item, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT id, owner_id, title, description, due_date, status, created_at, updated_at FROM tasks
		 WHERE id = $1
		 `
	task := &models.Task{}
	var dueDate sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID, &task.OwnerID, &task.Title, &task.Description, &dueDate,
		&task.Status, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	return task, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, task *models.Task) error {
	query := `INSERT INTO tasks (id, owner_id, title, description, due_date, status)
         VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at
		 `
	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.OwnerID, task.Title, task.Description, nullTime(task.DueDate), task.Status).
		Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateByID(ctx context.Context, task *models.Task) error {
	query := `UPDATE tasks
		 SET title = $2, description = $3, due_date = $4, status = $5, updated_at = now()
		 WHERE id = $1
		 `
	res, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, nullTime(task.DueDate), task.Status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	query := `DELETE FROM tasks WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) CountByOwner(ctx context.Context, ownerID string) (*models.TaskCounts, error) {
	query := `SELECT COUNT(*),
		 COUNT(*) FILTER (WHERE status = 'completed'),
		 COUNT(*) FILTER (WHERE status = 'pending')
		 FROM tasks
		 WHERE owner_id = $1
		 `
	counts := &models.TaskCounts{}
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&counts.Total, &counts.Completed, &counts.Pending)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var dueDate sql.NullTime
	if err := row.Scan(
		&task.ID, &task.OwnerID, &task.Title, &task.Description, &dueDate,
		&task.Status, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	return task, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// requireOneRow maps "no row touched" onto ErrNotFound so callers can treat
// a vanished task the same way as one that never existed.
func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
