package models

import "time"

// Task statuses. ToggleStatus switches between the two.
const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)

// Task is a to-do item owned by exactly one user. OwnerID holds the hex
// form of the owner's user ID.
type Task struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	DueDate     *time.Time
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskCounts aggregates a user's tasks for the dashboard.
type TaskCounts struct {
	Total     int64
	Completed int64
	Pending   int64
}
