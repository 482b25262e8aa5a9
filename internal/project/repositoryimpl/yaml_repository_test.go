package repositoryimpl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/project"
	"github.com/taskline/taskline/pkg/cerr"
	"github.com/taskline/taskline/pkg/storage"
)

func setup(t *testing.T) (*YAMLRepository, *MembershipYAMLRepository) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewYAMLRepository(store), NewMembershipYAMLRepository(store)
}

func newProject(id, key string) *project.Project {
	now := time.Now()
	return &project.Project{
		ID: id, Name: "Project " + id, Description: "d",
		OwnerID: 1, JoinKey: key, CreatedAt: now, UpdatedAt: now,
	}
}

func TestProjectCreateAndGet(t *testing.T) {
	repo, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProject("p1", "abcd1234")))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Project p1", got.Name)
	assert.Equal(t, "abcd1234", got.JoinKey)

	err = repo.Create(ctx, newProject("p1", "other"))
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))

	_, err = repo.Get(ctx, "missing")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestProjectGetByJoinKey(t *testing.T) {
	repo, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newProject("p1", "abcd1234")))
	require.NoError(t, repo.Create(ctx, newProject("p2", "ffff0000")))

	got, err := repo.GetByJoinKey(ctx, "ffff0000")
	require.NoError(t, err)
	assert.Equal(t, "p2", got.ID)

	_, err = repo.GetByJoinKey(ctx, "nope")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestProjectListByUserSkipsOrphanMembership(t *testing.T) {
	repo, members := setup(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newProject("p1", "abcd1234")))
	require.NoError(t, members.Create(ctx, &project.Membership{ProjectID: "p1", UserID: 5, Role: project.RoleMember, CreatedAt: now}))
	// A membership row whose project file never got written.
	require.NoError(t, members.Create(ctx, &project.Membership{ProjectID: "ghost", UserID: 5, Role: project.RoleMember, CreatedAt: now}))

	projects, err := repo.ListByUser(ctx, 5)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "p1", projects[0].ID)

	none, err := repo.ListByUser(ctx, 6)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMembershipLifecycle(t *testing.T) {
	_, members := setup(t)
	ctx := context.Background()
	now := time.Now()

	m := &project.Membership{ProjectID: "p1", UserID: 5, Role: project.RoleMember, CreatedAt: now}
	require.NoError(t, members.Create(ctx, m))

	err := members.Create(ctx, m)
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))

	m.Role = project.RoleAdministrator
	require.NoError(t, members.Update(ctx, m))
	got, err := members.Get(ctx, "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, project.RoleAdministrator, got.Role)

	err = members.Update(ctx, &project.Membership{ProjectID: "p1", UserID: 99})
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	require.NoError(t, members.Create(ctx, &project.Membership{ProjectID: "p1", UserID: 2, Role: project.RoleMember, CreatedAt: now}))
	require.NoError(t, members.Create(ctx, &project.Membership{ProjectID: "other", UserID: 5, Role: project.RoleMember, CreatedAt: now}))

	list, err := members.ListByProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].UserID)
	assert.Equal(t, int64(5), list[1].UserID)
}
