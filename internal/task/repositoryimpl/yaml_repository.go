package repositoryimpl

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/taskline/taskline/internal/task"
	"github.com/taskline/taskline/pkg/cerr"
	"github.com/taskline/taskline/pkg/storage"
)

const (
	tasksPrefix       = "tasks"
	assignmentsPrefix = "assignments"
)

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func taskPath(id string) string {
	return fmt.Sprintf("%s/%s.yaml", tasksPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, t *task.Task) error {
	exists, err := r.storage.Exists(ctx, taskPath(t.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "task already exists", nil)
	}
	return r.write(ctx, t)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	data, err := r.storage.Read(ctx, taskPath(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("task", err)
	}
	var t task.Task
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal task: %w", err))
	}
	return &t, nil
}

func (r *YAMLRepository) Update(ctx context.Context, t *task.Task) error {
	exists, err := r.storage.Exists(ctx, taskPath(t.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return r.write(ctx, t)
}

func (r *YAMLRepository) ListByProject(ctx context.Context, projectID string) ([]*task.Task, error) {
	paths, err := r.storage.List(ctx, tasksPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("tasks", err)
	}
	sort.Strings(paths)

	var all []*task.Task
	for _, path := range paths {
		data, err := r.storage.Read(ctx, path)
		if err != nil {
			continue
		}
		var t task.Task
		if err := yaml.Unmarshal(data, &t); err != nil {
			continue
		}
		if t.ProjectID != projectID {
			continue
		}
		all = append(all, &t)
	}
	return all, nil
}

func (r *YAMLRepository) write(ctx context.Context, t *task.Task) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal task: %w", err))
	}
	if err := r.storage.Write(ctx, taskPath(t.ID), data); err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	return nil
}

type AssignmentYAMLRepository struct {
	storage storage.Storage
}

func NewAssignmentYAMLRepository(s storage.Storage) *AssignmentYAMLRepository {
	return &AssignmentYAMLRepository{storage: s}
}

func assignmentPath(taskID string, userID int64) string {
	return fmt.Sprintf("%s/%s_%d.yaml", assignmentsPrefix, taskID, userID)
}

func (r *AssignmentYAMLRepository) Create(ctx context.Context, a *task.Assignment) error {
	exists, err := r.storage.Exists(ctx, assignmentPath(a.TaskID, a.UserID))
	if err != nil {
		return cerr.WrapStorageWriteError("assignment", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "already assigned", nil)
	}
	data, err := yaml.Marshal(a)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal assignment: %w", err))
	}
	if err := r.storage.Write(ctx, assignmentPath(a.TaskID, a.UserID), data); err != nil {
		return cerr.WrapStorageWriteError("assignment", err)
	}
	return nil
}

func (r *AssignmentYAMLRepository) ListByTask(ctx context.Context, taskID string) ([]*task.Assignment, error) {
	return r.listWhere(ctx, func(a *task.Assignment) bool { return a.TaskID == taskID })
}

func (r *AssignmentYAMLRepository) ListByUser(ctx context.Context, userID int64) ([]*task.Assignment, error) {
	return r.listWhere(ctx, func(a *task.Assignment) bool { return a.UserID == userID })
}

func (r *AssignmentYAMLRepository) listWhere(ctx context.Context, keep func(*task.Assignment) bool) ([]*task.Assignment, error) {
	paths, err := r.storage.List(ctx, assignmentsPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("assignments", err)
	}
	sort.Strings(paths)

	var all []*task.Assignment
	for _, path := range paths {
		data, err := r.storage.Read(ctx, path)
		if err != nil {
			continue
		}
		var a task.Assignment
		if err := yaml.Unmarshal(data, &a); err != nil {
			continue
		}
		if keep(&a) {
			all = append(all, &a)
		}
	}
	return all, nil
}
