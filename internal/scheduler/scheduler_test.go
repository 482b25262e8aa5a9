package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/bot"
	"github.com/taskline/taskline/internal/project"
	projectrepo "github.com/taskline/taskline/internal/project/repositoryimpl"
	"github.com/taskline/taskline/internal/task"
	taskrepo "github.com/taskline/taskline/internal/task/repositoryimpl"
	"github.com/taskline/taskline/pkg/storage"
)

type fakeGateway struct {
	mu      sync.Mutex
	sent    map[int64][]string
	failFor map[int64]bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		sent:    make(map[int64][]string),
		failFor: make(map[int64]bool),
	}
}

func (g *fakeGateway) SendMessage(_ context.Context, userID int64, text string, _ *bot.Keyboard) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failFor[userID] {
		return errors.New("delivery failed")
	}
	g.sent[userID] = append(g.sent[userID], text)
	return nil
}

func (g *fakeGateway) EditMessage(_ context.Context, _, _ int64, _ string, _ *bot.Keyboard) error {
	return nil
}

func (g *fakeGateway) DeleteMessage(_ context.Context, _, _ int64) error {
	return nil
}

func (g *fakeGateway) messagesFor(userID int64) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.sent[userID]...)
}

type fixture struct {
	sched    *Scheduler
	repo     Repository
	tasks    task.Repository
	members  project.MembershipRepository
	gateway  *fakeGateway
	taskID   string
	deadline time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	taskRepo := taskrepo.NewYAMLRepository(store)
	projectRepo := projectrepo.NewYAMLRepository(store)
	membershipRepo := projectrepo.NewMembershipYAMLRepository(store)
	scheduleRepo := NewYAMLRepository(store)
	gateway := newFakeGateway()

	ctx := context.Background()
	now := time.Now()

	p := &project.Project{ID: "p1", Name: "Atlas", OwnerID: 1, JoinKey: "abcd1234", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, projectRepo.Create(ctx, p))
	for _, userID := range []int64{1, 2} {
		m := &project.Membership{ProjectID: "p1", UserID: userID, Role: project.RoleMember, CreatedAt: now}
		require.NoError(t, membershipRepo.Create(ctx, m))
	}

	deadline := now.Add(72 * time.Hour)
	tk := &task.Task{
		ID: "t1", ProjectID: "p1", Name: "Write docs",
		Status: task.StatusInWork, Deadline: deadline,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, taskRepo.Create(ctx, tk))

	sched := New(24*time.Hour, scheduleRepo, taskRepo, projectRepo, membershipRepo, gateway)
	t.Cleanup(sched.Stop)

	return &fixture{
		sched:    sched,
		repo:     scheduleRepo,
		tasks:    taskRepo,
		members:  membershipRepo,
		gateway:  gateway,
		taskID:   "t1",
		deadline: deadline,
	}
}

func TestScheduleArmsAndPersists(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.sched.Schedule(ctx, f.taskID, f.deadline)
	require.NoError(t, err)
	assert.True(t, f.sched.Armed(id))

	schedules, err := f.repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, f.taskID, schedules[0].TaskID)
	assert.WithinDuration(t, f.deadline.Add(-24*time.Hour), schedules[0].FireAt, time.Second)
}

func TestFireNotifiesCurrentMembers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.sched.Schedule(ctx, f.taskID, f.deadline)
	require.NoError(t, err)

	// A member joining after scheduling still receives the reminder.
	m := &project.Membership{ProjectID: "p1", UserID: 3, Role: project.RoleMember, CreatedAt: time.Now()}
	require.NoError(t, f.members.Create(ctx, m))

	f.sched.fire(&Schedule{ID: id, TaskID: f.taskID})

	for _, userID := range []int64{1, 2, 3} {
		msgs := f.gateway.messagesFor(userID)
		require.Len(t, msgs, 1, "user %d", userID)
		assert.Contains(t, msgs[0], "Write docs")
		assert.Contains(t, msgs[0], "Atlas")
	}

	// Firing deregisters the schedule.
	assert.False(t, f.sched.Armed(id))
	schedules, err := f.repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

func TestFireDeliveryFailureIsolated(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.sched.Schedule(ctx, f.taskID, f.deadline)
	require.NoError(t, err)
	f.gateway.failFor[1] = true

	f.sched.fire(&Schedule{ID: id, TaskID: f.taskID})

	assert.Empty(t, f.gateway.messagesFor(1))
	assert.Len(t, f.gateway.messagesFor(2), 1)

	schedules, err := f.repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

func TestFireDeletedTaskIsSilent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.sched.Schedule(ctx, "gone", f.deadline)
	require.NoError(t, err)

	f.sched.fire(&Schedule{ID: id, TaskID: "gone"})

	assert.Empty(t, f.gateway.messagesFor(1))
	assert.Empty(t, f.gateway.messagesFor(2))
	schedules, err := f.repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

func TestRestoreReArmsPersistedSchedules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.sched.Schedule(ctx, f.taskID, f.deadline)
	require.NoError(t, err)
	f.sched.Stop()
	assert.False(t, f.sched.Armed(id))

	require.NoError(t, f.sched.Restore(ctx))
	assert.True(t, f.sched.Armed(id))
}

func TestRestoreOverdueFiresImmediately(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// A schedule whose fire time already passed.
	past := &Schedule{ID: "s-past", TaskID: f.taskID, FireAt: time.Now().Add(-time.Hour), CreatedAt: time.Now()}
	require.NoError(t, f.repo.Create(ctx, past))

	require.NoError(t, f.sched.Restore(ctx))

	assert.Eventually(t, func() bool {
		return len(f.gateway.messagesFor(1)) == 1 && len(f.gateway.messagesFor(2)) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
