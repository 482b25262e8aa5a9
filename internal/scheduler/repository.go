package scheduler

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/taskline/taskline/pkg/cerr"
	"github.com/taskline/taskline/pkg/storage"
)

type Repository interface {
	Create(ctx context.Context, sch *Schedule) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Schedule, error)
}

const schedulesPrefix = "schedules"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", schedulesPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, sch *Schedule) error {
	data, err := yaml.Marshal(sch)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal schedule: %w", err))
	}
	if err := r.storage.Write(ctx, path(sch.ID), data); err != nil {
		return cerr.WrapStorageWriteError("schedule", err)
	}
	return nil
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	if err := r.storage.Delete(ctx, path(id)); err != nil {
		return cerr.WrapStorageDeleteError("schedule", err)
	}
	return nil
}

func (r *YAMLRepository) List(ctx context.Context) ([]*Schedule, error) {
	paths, err := r.storage.List(ctx, schedulesPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("schedules", err)
	}
	sort.Strings(paths)

	var all []*Schedule
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var sch Schedule
		if err := yaml.Unmarshal(data, &sch); err != nil {
			continue
		}
		all = append(all, &sch)
	}
	return all, nil
}
