// Package tasks contains the task CRUD business logic. All operations are
// already scoped to an owner by the caller; the ownership decision itself is
// made at the web layer against the live record.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	tasksrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
)

const dueDateLayout = "2006-01-02"

// Form carries the task fields as submitted, before validation.
type Form struct {
	Title       string
	Description string
	DueDate     string // "2006-01-02" or empty
	Status      string // "pending", "completed" or empty (defaults to pending)
}

// Service provides owner-scoped task operations.
type Service struct {
	repo tasksrepo.Repository
}

// NewService constructs a Service over the task store.
func NewService(repo tasksrepo.Repository) *Service {
	return &Service{repo: repo}
}

// List returns all tasks owned by ownerID.
func (s *Service) List(ctx context.Context, ownerID string) ([]*models.Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns the task with the given id, or common.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates the form and inserts a new task for ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, f Form) (*models.Task, error) {
	title, description, dueDate, status, err := s.parseForm(f)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Status:      status,
	}
	if err := s.repo.Insert(ctx, task); err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return task, nil
}

// Update validates the form and overwrites the task's fields. The caller has
// already established ownership of the task.
func (s *Service) Update(ctx context.Context, task *models.Task, f Form) error {
	title, description, dueDate, status, err := s.parseForm(f)
	if err != nil {
		return err
	}

	task.Title = title
	task.Description = description
	task.DueDate = dueDate
	task.Status = status
	return s.repo.UpdateByID(ctx, task)
}

// Delete removes the task with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

// ToggleStatus switches the task between pending and completed. Applying it
// twice restores the original status.
func (s *Service) ToggleStatus(ctx context.Context, task *models.Task) error {
	if task.Status == models.TaskStatusPending {
		task.Status = models.TaskStatusCompleted
	} else {
		task.Status = models.TaskStatusPending
	}
	return s.repo.UpdateByID(ctx, task)
}

// Counts returns the dashboard aggregates for ownerID.
func (s *Service) Counts(ctx context.Context, ownerID string) (*models.TaskCounts, error) {
	return s.repo.CountByOwner(ctx, ownerID)
}

func (s *Service) parseForm(f Form) (title, description string, dueDate *time.Time, status string, err error) {
	title = strings.TrimSpace(f.Title)
	if title == "" {
		return "", "", nil, "", fmt.Errorf("%w: title is required", common.ErrValidation)
	}

	status = f.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	if status != models.TaskStatusPending && status != models.TaskStatusCompleted {
		return "", "", nil, "", fmt.Errorf("%w: unknown status %q", common.ErrValidation, f.Status)
	}

	if f.DueDate != "" {
		parsed, perr := time.Parse(dueDateLayout, f.DueDate)
		if perr != nil {
			return "", "", nil, "", fmt.Errorf("%w: invalid due date", common.ErrValidation)
		}
		dueDate = &parsed
	}

	return title, f.Description, dueDate, status, nil
}
