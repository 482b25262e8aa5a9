// Package scheduler arms one-shot deadline reminders. Each created
// task gets exactly one reminder, fired at deadline minus a fixed lead.
// Recipients are resolved from current project membership at fire time,
// never snapshotted at scheduling time.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskline/taskline/internal/bot"
	"github.com/taskline/taskline/internal/project"
	"github.com/taskline/taskline/internal/task"
	"github.com/taskline/taskline/pkg/cerr"
	"github.com/taskline/taskline/pkg/clog"
	"github.com/taskline/taskline/pkg/panicsafe"
)

type Scheduler struct {
	lead        time.Duration
	repo        Repository
	tasks       task.Repository
	projects    project.Repository
	memberships project.MembershipRepository
	gateway     bot.Gateway

	now func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func New(
	lead time.Duration,
	repo Repository,
	tasks task.Repository,
	projects project.Repository,
	memberships project.MembershipRepository,
	gateway bot.Gateway,
) *Scheduler {
	return &Scheduler{
		lead:        lead,
		repo:        repo,
		tasks:       tasks,
		projects:    projects,
		memberships: memberships,
		gateway:     gateway,
		now:         time.Now,
		timers:      make(map[string]*time.Timer),
	}
}

// Schedule persists and arms one reminder for the task, firing at
// deadline minus the lead interval. It returns the schedule id. There
// is no cancel or re-arm: a task keeps at most the one reminder its
// creation produced.
func (s *Scheduler) Schedule(ctx context.Context, taskID string, deadline time.Time) (string, error) {
	sch := &Schedule{
		ID:        ulid.Make().String(),
		TaskID:    taskID,
		FireAt:    deadline.Add(-s.lead),
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, sch); err != nil {
		return "", err
	}
	s.arm(sch)
	return sch.ID, nil
}

// Restore re-arms every persisted schedule, typically at process start.
// Entries whose fire time already passed fire immediately.
func (s *Scheduler) Restore(ctx context.Context) error {
	schedules, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	for _, sch := range schedules {
		s.arm(sch)
	}
	if len(schedules) > 0 {
		slog.Info("restored schedules", "count", len(schedules))
	}
	return nil
}

func (s *Scheduler) arm(sch *Schedule) {
	delay := sch.FireAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[sch.ID]; ok {
		return
	}
	s.timers[sch.ID] = time.AfterFunc(delay, func() {
		_ = panicsafe.Safe(func() error {
			s.fire(sch)
			return nil
		})()
	})
}

// fire runs on the timer goroutine, outside any user's dispatch stream.
// It re-reads all state from storage: a task or project deleted since
// scheduling makes the fire a silent no-op.
func (s *Scheduler) fire(sch *Schedule) {
	ctx := clog.ContextWithSlog(context.Background())
	clog.AddAttribute(ctx, "schedule_id", sch.ID)
	clog.AddAttribute(ctx, "task_id", sch.TaskID)

	defer s.deregister(ctx, sch.ID)

	t, err := s.tasks.Get(ctx, sch.TaskID)
	if err != nil {
		if !cerr.IsCode(err, cerr.NotFound) {
			clog.AddError(ctx, err)
			slog.ErrorContext(ctx, "reminder aborted, failed to load task")
		}
		return
	}
	p, err := s.projects.Get(ctx, t.ProjectID)
	if err != nil {
		if !cerr.IsCode(err, cerr.NotFound) {
			clog.AddError(ctx, err)
			slog.ErrorContext(ctx, "reminder aborted, failed to load project")
		}
		return
	}

	members, err := s.memberships.ListByProject(ctx, p.ID)
	if err != nil {
		clog.AddError(ctx, err)
		slog.ErrorContext(ctx, "reminder aborted, failed to resolve recipients")
		return
	}

	text := fmt.Sprintf(
		"Reminder: task %q in project %q is due on %s.",
		t.Name, p.Name, t.Deadline.Format("2006-01-02"),
	)
	for _, m := range members {
		// One recipient failing must not stop delivery to the rest.
		if err := s.gateway.SendMessage(ctx, m.UserID, text, nil); err != nil {
			slog.ErrorContext(ctx, "reminder delivery failed", "recipient", m.UserID, "error", err)
		}
	}
}

func (s *Scheduler) deregister(ctx context.Context, id string) {
	s.mu.Lock()
	timer, ok := s.timers[id]
	delete(s.timers, id)
	s.mu.Unlock()
	if ok {
		timer.Stop()
	}

	if err := s.repo.Delete(ctx, id); err != nil && !cerr.IsCode(err, cerr.NotFound) {
		slog.ErrorContext(ctx, "failed to deregister schedule", "schedule_id", id, "error", err)
	}
}

// Armed reports whether the schedule with id is still armed.
func (s *Scheduler) Armed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}

// Stop disarms all timers without deleting the persisted entries, so a
// later Restore picks them up again.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
