package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository is the task store contract. It performs no authorization:
// ownership is checked by the web layer against the requesting session.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Task, error)
	FindByID(ctx context.Context, id string) (*models.Task, error)
	Insert(ctx context.Context, task *models.Task) error
	UpdateByID(ctx context.Context, task *models.Task) error
	DeleteByID(ctx context.Context, id string) error
	CountByOwner(ctx context.Context, ownerID string) (*models.TaskCounts, error)
}
