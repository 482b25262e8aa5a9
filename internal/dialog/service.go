// Package dialog drives the conversational workflows: registration,
// project creation and joining, browsing, task creation and task
// status editing. Inbound updates are matched against the session's
// current step; callbacks are routed through a table built once at
// construction time.
package dialog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taskline/taskline/internal/advisor"
	"github.com/taskline/taskline/internal/bot"
	"github.com/taskline/taskline/internal/project"
	"github.com/taskline/taskline/internal/scheduler"
	"github.com/taskline/taskline/internal/session"
	"github.com/taskline/taskline/internal/task"
	"github.com/taskline/taskline/internal/user"
	"github.com/taskline/taskline/pkg/cerr"
	"github.com/taskline/taskline/pkg/clog"
)

// Menu commands. The command filter middleware must allow exactly these.
const (
	MenuMyProjects    = "My projects"
	MenuCreateProject = "Create project"
	MenuJoinProject   = "Join project"
)

// MenuCommands lists the reply-keyboard commands accepted outside of a
// workflow.
func MenuCommands() []string {
	return []string{MenuMyProjects, MenuCreateProject, MenuJoinProject}
}

// Page sizes per list, as rendered in inline keyboards.
const (
	projectsPerPage  = 4
	membersPerPage   = 4
	assigneesPerPage = 5
	tasksPerPage     = 5
)

type callbackHandler func(ctx context.Context, upd bot.Update, params []string) error

type Service struct {
	sessions    *session.Store
	users       user.Repository
	projects    project.Repository
	memberships project.MembershipRepository
	tasks       task.Repository
	assignments task.AssignmentRepository
	scheduler   *scheduler.Scheduler
	advisor     advisor.Advisor
	gateway     bot.Gateway
	now         func() time.Time

	routes map[string]callbackHandler
}

func NewService(
	sessions *session.Store,
	users user.Repository,
	projects project.Repository,
	memberships project.MembershipRepository,
	tasks task.Repository,
	assignments task.AssignmentRepository,
	sched *scheduler.Scheduler,
	adv advisor.Advisor,
	gateway bot.Gateway,
) *Service {
	s := &Service{
		sessions:    sessions,
		users:       users,
		projects:    projects,
		memberships: memberships,
		tasks:       tasks,
		assignments: assignments,
		scheduler:   sched,
		advisor:     adv,
		gateway:     gateway,
		now:         time.Now,
	}
	// The routing table is resolved once here, not per update.
	s.routes = map[string]callbackHandler{
		"projects_page":    s.onProjectsPage,
		"view_project":     s.onViewProject,
		"members_page":     s.onMembersPage,
		"view_member":      s.onViewMember,
		"change_role":      s.onChangeRole,
		"analyze_member":   s.onAnalyzeMember,
		"tasks_page":       s.onTasksPage,
		"view_task":        s.onViewTask,
		"create_task":      s.onCreateTask,
		"edit_task_status": s.onEditTaskStatus,
		"set_task_status":  s.onSetTaskStatus,
		"project_back":     s.onProjectBackToName,
		"task_back":        s.onTaskBackToDescription,
		"toggle_assignee":  s.onToggleAssignee,
		"assignees_page":   s.onAssigneesPage,
		"assignees_done":   s.onAssigneesDone,
		"calendar_month":   s.onCalendarMonth,
		"calendar_pick":    s.onCalendarPick,
		"confirm_task":     s.onConfirmTask,
		"cancel":           s.onCancel,
		"noop":             s.onNoop,
	}
	return s
}

// HandleUpdate is the dispatcher's handler: one update, one transition.
func (s *Service) HandleUpdate(ctx context.Context, upd bot.Update) error {
	var err error
	switch upd.Kind() {
	case bot.KindCallback:
		err = s.handleCallback(ctx, upd)
	default:
		err = s.handleMessage(ctx, upd)
	}
	if err != nil {
		return s.report(ctx, upd.UserID, err)
	}
	return nil
}

func (s *Service) handleCallback(ctx context.Context, upd bot.Update) error {
	parts := strings.Split(upd.Data, ":")
	action, params := parts[0], parts[1:]
	clog.AddAttribute(ctx, "action", action)

	handler, ok := s.routes[action]
	if !ok {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	return handler(ctx, upd, params)
}

func (s *Service) handleMessage(ctx context.Context, upd bot.Update) error {
	text := upd.Text

	if text == "/start" {
		return s.onStart(ctx, upd)
	}

	// Free text is interpreted by the current step first; menu commands
	// only apply outside a text-collecting step (the command filter has
	// already discarded anything else).
	switch step := s.sessions.Get(upd.UserID).Step.(type) {
	case session.AwaitingFullName:
		return s.onFullName(ctx, upd)
	case session.AwaitingProjectName:
		return s.onProjectName(ctx, upd)
	case session.AwaitingProjectDescription:
		return s.onProjectDescription(ctx, upd, step)
	case session.AwaitingJoinKey:
		return s.onJoinKey(ctx, upd)
	case session.AwaitingTaskName:
		return s.onTaskName(ctx, upd, step)
	case session.AwaitingTaskDescription:
		return s.onTaskDescription(ctx, upd, step)
	case session.AwaitingTaskHours:
		return s.onTaskHours(ctx, upd, step)
	case session.AwaitingTaskAssignees, session.AwaitingTaskDeadline,
		session.AwaitingTaskConfirm, session.AwaitingNewStatus:
		// Button-driven steps: remind instead of advancing.
		return s.gateway.SendMessage(ctx, upd.UserID, "Please use the buttons above.", nil)
	}

	switch text {
	case MenuMyProjects:
		return s.onMyProjects(ctx, upd)
	case MenuCreateProject:
		return s.onCreateProjectEntry(ctx, upd)
	case MenuJoinProject:
		return s.onJoinProjectEntry(ctx, upd)
	}

	// Unrecognized slash command or similar; show the menu as a nudge.
	return s.sendMainMenu(ctx, upd.UserID)
}

// report renders err to the user. Validation and not-found outcomes
// leave the step untouched; severe failures clear the session so the
// user is never stuck in a broken flow.
func (s *Service) report(ctx context.Context, userID int64, err error) error {
	clog.AddError(ctx, err)
	if cerr.CodeOf(err).Severe() {
		slog.ErrorContext(ctx, "dialog transition failed")
		s.sessions.Clear(userID)
		if sendErr := s.gateway.SendMessage(ctx, userID, cerr.UserMessage(err), nil); sendErr != nil {
			return sendErr
		}
		return s.sendMainMenu(ctx, userID)
	}
	slog.InfoContext(ctx, "dialog transition rejected")
	return s.gateway.SendMessage(ctx, userID, cerr.UserMessage(err), nil)
}

func (s *Service) onCancel(ctx context.Context, upd bot.Update, _ []string) error {
	s.sessions.Clear(upd.UserID)
	if err := s.gateway.SendMessage(ctx, upd.UserID, "Cancelled.", nil); err != nil {
		return err
	}
	return s.sendMainMenu(ctx, upd.UserID)
}

func (s *Service) onNoop(_ context.Context, _ bot.Update, _ []string) error {
	return nil
}

func (s *Service) sendMainMenu(ctx context.Context, userID int64) error {
	kb := &bot.Keyboard{Rows: [][]bot.Button{
		{{Label: MenuMyProjects}},
		{{Label: MenuCreateProject}},
		{{Label: MenuJoinProject}},
	}}
	return s.gateway.SendMessage(ctx, userID, "Main menu:", kb)
}

// requireRole loads the caller's membership and checks the role.
func (s *Service) requireRole(ctx context.Context, projectID string, userID int64, role project.Role) (*project.Membership, error) {
	m, err := s.memberships.Get(ctx, projectID, userID)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, cerr.NewError(cerr.PermissionDenied, "you are not a member of this project", err)
		}
		return nil, err
	}
	if role == project.RoleAdministrator && m.Role != project.RoleAdministrator {
		return nil, cerr.NewError(cerr.PermissionDenied, "administrator role required", nil)
	}
	return m, nil
}
