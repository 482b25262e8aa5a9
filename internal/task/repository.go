package task

import "context"

type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, t *Task) error
	ListByProject(ctx context.Context, projectID string) ([]*Task, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, a *Assignment) error
	ListByTask(ctx context.Context, taskID string) ([]*Assignment, error)
	ListByUser(ctx context.Context, userID int64) ([]*Assignment, error)
}
