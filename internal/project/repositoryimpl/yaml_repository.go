package repositoryimpl

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/taskline/taskline/internal/project"
	"github.com/taskline/taskline/pkg/cerr"
	"github.com/taskline/taskline/pkg/storage"
)

const (
	projectsPrefix    = "projects"
	membershipsPrefix = "memberships"
)

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func projectPath(id string) string {
	return fmt.Sprintf("%s/%s.yaml", projectsPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, p *project.Project) error {
	exists, err := r.storage.Exists(ctx, projectPath(p.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("project", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "project already exists", nil)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal project: %w", err))
	}
	if err := r.storage.Write(ctx, projectPath(p.ID), data); err != nil {
		return cerr.WrapStorageWriteError("project", err)
	}
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	data, err := r.storage.Read(ctx, projectPath(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("project", err)
	}
	var p project.Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal project: %w", err))
	}
	return &p, nil
}

func (r *YAMLRepository) GetByJoinKey(ctx context.Context, key string) (*project.Project, error) {
	all, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if p.JoinKey == key {
			return p, nil
		}
	}
	return nil, cerr.NewError(cerr.NotFound, "project not found", nil)
}

func (r *YAMLRepository) ListByUser(ctx context.Context, userID int64) ([]*project.Project, error) {
	memberships, err := r.listMemberships(ctx)
	if err != nil {
		return nil, err
	}

	var projects []*project.Project
	for _, m := range memberships {
		if m.UserID != userID {
			continue
		}
		p, err := r.Get(ctx, m.ProjectID)
		if err != nil {
			// Membership row pointing at a deleted project; skip it.
			continue
		}
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func (r *YAMLRepository) list(ctx context.Context) ([]*project.Project, error) {
	paths, err := r.storage.List(ctx, projectsPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("projects", err)
	}
	sort.Strings(paths)

	var all []*project.Project
	for _, path := range paths {
		data, err := r.storage.Read(ctx, path)
		if err != nil {
			continue
		}
		var p project.Project
		if err := yaml.Unmarshal(data, &p); err != nil {
			continue
		}
		all = append(all, &p)
	}
	return all, nil
}

// MembershipYAMLRepository persists membership rows as one file per
// (project, user) pair so joins stay idempotent at the storage level.
type MembershipYAMLRepository struct {
	storage storage.Storage
}

func NewMembershipYAMLRepository(s storage.Storage) *MembershipYAMLRepository {
	return &MembershipYAMLRepository{storage: s}
}

func membershipPath(projectID string, userID int64) string {
	return fmt.Sprintf("%s/%s_%d.yaml", membershipsPrefix, projectID, userID)
}

func (r *MembershipYAMLRepository) Create(ctx context.Context, m *project.Membership) error {
	exists, err := r.storage.Exists(ctx, membershipPath(m.ProjectID, m.UserID))
	if err != nil {
		return cerr.WrapStorageWriteError("membership", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "already a member", nil)
	}
	return r.write(ctx, m)
}

func (r *MembershipYAMLRepository) Get(ctx context.Context, projectID string, userID int64) (*project.Membership, error) {
	data, err := r.storage.Read(ctx, membershipPath(projectID, userID))
	if err != nil {
		return nil, cerr.WrapStorageReadError("membership", err)
	}
	var m project.Membership
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal membership: %w", err))
	}
	return &m, nil
}

func (r *MembershipYAMLRepository) Update(ctx context.Context, m *project.Membership) error {
	exists, err := r.storage.Exists(ctx, membershipPath(m.ProjectID, m.UserID))
	if err != nil {
		return cerr.WrapStorageWriteError("membership", err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "membership not found", nil)
	}
	return r.write(ctx, m)
}

func (r *MembershipYAMLRepository) ListByProject(ctx context.Context, projectID string) ([]*project.Membership, error) {
	all, err := listMembershipsFrom(ctx, r.storage)
	if err != nil {
		return nil, err
	}
	var members []*project.Membership
	for _, m := range all {
		if m.ProjectID == projectID {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })
	return members, nil
}

func (r *MembershipYAMLRepository) write(ctx context.Context, m *project.Membership) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal membership: %w", err))
	}
	if err := r.storage.Write(ctx, membershipPath(m.ProjectID, m.UserID), data); err != nil {
		return cerr.WrapStorageWriteError("membership", err)
	}
	return nil
}

func (r *YAMLRepository) listMemberships(ctx context.Context) ([]*project.Membership, error) {
	return listMembershipsFrom(ctx, r.storage)
}

func listMembershipsFrom(ctx context.Context, s storage.Storage) ([]*project.Membership, error) {
	paths, err := s.List(ctx, membershipsPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("memberships", err)
	}
	sort.Strings(paths)

	var all []*project.Membership
	for _, path := range paths {
		data, err := s.Read(ctx, path)
		if err != nil {
			continue
		}
		var m project.Membership
		if err := yaml.Unmarshal(data, &m); err != nil {
			continue
		}
		all = append(all, &m)
	}
	return all, nil
}
