package dialog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskline/taskline/internal/bot"
	"github.com/taskline/taskline/internal/project"
	"github.com/taskline/taskline/internal/session"
	"github.com/taskline/taskline/internal/task"
	"github.com/taskline/taskline/pkg/cerr"
	"github.com/taskline/taskline/pkg/paginate"
)

func (s *Service) onCreateTask(ctx context.Context, upd bot.Update, params []string) error {
	if len(params) < 1 {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	projectID := params[0]
	if _, err := s.requireRole(ctx, projectID, upd.UserID, project.RoleAdministrator); err != nil {
		return err
	}

	s.sessions.SetStep(upd.UserID, session.AwaitingTaskName{ProjectID: projectID})
	kb := &bot.Keyboard{Rows: [][]bot.Button{
		bot.InlineRow("❌ Cancel", "cancel"),
	}}
	return s.gateway.SendMessage(ctx, upd.UserID, "Send the task name.", kb)
}

func (s *Service) onTaskName(ctx context.Context, upd bot.Update, step session.AwaitingTaskName) error {
	name := strings.TrimSpace(upd.Text)
	if name == "" {
		return cerr.NewError(cerr.InvalidArgument, "please send a non-empty task name", nil)
	}

	s.sessions.SetStep(upd.UserID, session.AwaitingTaskDescription{
		ProjectID: step.ProjectID,
		Name:      name,
	})
	kb := &bot.Keyboard{Rows: [][]bot.Button{
		bot.InlineRow("❌ Cancel", "cancel"),
	}}
	return s.gateway.SendMessage(ctx, upd.UserID, "Now send the task description.", kb)
}

func (s *Service) onTaskDescription(ctx context.Context, upd bot.Update, step session.AwaitingTaskDescription) error {
	description := strings.TrimSpace(upd.Text)
	if description == "" {
		return cerr.NewError(cerr.InvalidArgument, "please send a non-empty task description", nil)
	}

	next := session.AwaitingTaskAssignees{
		ProjectID:   step.ProjectID,
		Name:        step.Name,
		Description: description,
		Selected:    session.NewSelectionSet(),
		Page:        1,
	}
	s.sessions.SetStep(upd.UserID, next)
	return s.renderAssignees(ctx, upd, next, false)
}

// renderAssignees shows the paginated member picker. Selected members
// carry a check mark; tapping toggles.
func (s *Service) renderAssignees(ctx context.Context, upd bot.Update, step session.AwaitingTaskAssignees, edit bool) error {
	members, err := s.memberships.ListByProject(ctx, step.ProjectID)
	if err != nil {
		return err
	}
	page := paginate.Paginate(members, assigneesPerPage, step.Page)

	var rows [][]bot.Button
	for _, m := range page.Items {
		u, err := s.users.Get(ctx, m.UserID)
		if err != nil {
			continue
		}
		label := u.FullName
		if step.Selected.Has(m.UserID) {
			label = "✅ " + label
		}
		rows = append(rows, bot.InlineRow(label, fmt.Sprintf("toggle_assignee:%d", m.UserID)))
	}
	if nav := pageNavRow(page.HasPrev, page.HasNext, "assignees_page", step.Page); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows,
		bot.InlineRow("✔️ Done", "assignees_done"),
		bot.InlineRow("⬅️ Back to description", "task_back"),
		bot.InlineRow("❌ Cancel", "cancel"),
	)

	text := "Pick the assignees:"
	kb := &bot.Keyboard{Rows: rows}
	if edit {
		return s.gateway.EditMessage(ctx, upd.UserID, upd.MessageID, text, kb)
	}
	return s.gateway.SendMessage(ctx, upd.UserID, text, kb)
}

func (s *Service) onToggleAssignee(ctx context.Context, upd bot.Update, params []string) error {
	step, ok := s.sessions.Get(upd.UserID).Step.(session.AwaitingTaskAssignees)
	if !ok {
		return nil
	}
	if len(params) < 1 {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	userID, err := strconv.ParseInt(params[0], 10, 64)
	if err != nil {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", err)
	}

	step.Selected.Toggle(userID)
	return s.renderAssignees(ctx, upd, step, true)
}

func (s *Service) onAssigneesPage(ctx context.Context, upd bot.Update, params []string) error {
	step, ok := s.sessions.Get(upd.UserID).Step.(session.AwaitingTaskAssignees)
	if !ok {
		return nil
	}
	page, err := pageParam(params, 0)
	if err != nil {
		return err
	}

	step.Page = page
	s.sessions.SetStep(upd.UserID, step)
	return s.renderAssignees(ctx, upd, step, true)
}

func (s *Service) onAssigneesDone(ctx context.Context, upd bot.Update, _ []string) error {
	step, ok := s.sessions.Get(upd.UserID).Step.(session.AwaitingTaskAssignees)
	if !ok {
		return nil
	}
	if step.Selected.Len() == 0 {
		return cerr.NewError(cerr.InvalidArgument, "pick at least one assignee", nil)
	}

	s.sessions.SetStep(upd.UserID, session.AwaitingTaskHours{
		ProjectID:   step.ProjectID,
		Name:        step.Name,
		Description: step.Description,
		Assignees:   step.Selected.IDs(),
	})
	kb := &bot.Keyboard{Rows: [][]bot.Button{
		bot.InlineRow("❌ Cancel", "cancel"),
	}}
	return s.gateway.EditMessage(ctx, upd.UserID, upd.MessageID, "How many hours is the task estimated at?", kb)
}

func (s *Service) onTaskBackToDescription(ctx context.Context, upd bot.Update, _ []string) error {
	step, ok := s.sessions.Get(upd.UserID).Step.(session.AwaitingTaskAssignees)
	if !ok {
		return nil
	}

	s.sessions.SetStep(upd.UserID, session.AwaitingTaskDescription{
		ProjectID: step.ProjectID,
		Name:      step.Name,
	})
	kb := &bot.Keyboard{Rows: [][]bot.Button{
		bot.InlineRow("❌ Cancel", "cancel"),
	}}
	return s.gateway.EditMessage(ctx, upd.UserID, upd.MessageID, "Now send the task description.", kb)
}

func (s *Service) onTaskHours(ctx context.Context, upd bot.Update, step session.AwaitingTaskHours) error {
	hours, err := strconv.Atoi(strings.TrimSpace(upd.Text))
	if err != nil || hours < 0 {
		return cerr.NewError(cerr.InvalidArgument, "please send a non-negative whole number of hours", err)
	}

	month := monthStart(s.now())
	s.sessions.SetStep(upd.UserID, session.AwaitingTaskDeadline{
		ProjectID:     step.ProjectID,
		Name:          step.Name,
		Description:   step.Description,
		Assignees:     step.Assignees,
		Hours:         hours,
		CalendarMonth: month,
	})
	return s.gateway.SendMessage(ctx, upd.UserID, "Pick the deadline:", calendarKeyboard(month))
}

func (s *Service) onCalendarMonth(ctx context.Context, upd bot.Update, params []string) error {
	step, ok := s.sessions.Get(upd.UserID).Step.(session.AwaitingTaskDeadline)
	if !ok {
		return nil
	}
	if len(params) < 1 {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	month, err := time.Parse(calendarMonthLayout, params[0])
	if err != nil {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", err)
	}

	step.CalendarMonth = month
	s.sessions.SetStep(upd.UserID, step)
	return s.gateway.EditMessage(ctx, upd.UserID, upd.MessageID, "Pick the deadline:", calendarKeyboard(month))
}

func (s *Service) onCalendarPick(ctx context.Context, upd bot.Update, params []string) error {
	step, ok := s.sessions.Get(upd.UserID).Step.(session.AwaitingTaskDeadline)
	if !ok {
		return nil
	}
	if len(params) < 1 {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	deadline, err := time.Parse(calendarDateLayout, params[0])
	if err != nil {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", err)
	}

	// Compare calendar dates in the clock's own zone; truncating to
	// UTC day boundaries would shift "today" across midnight.
	y, m, d := s.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if !deadline.After(today) {
		return cerr.NewError(cerr.InvalidArgument, "the deadline must be later than today", nil)
	}

	next := session.AwaitingTaskConfirm{
		ProjectID:   step.ProjectID,
		Name:        step.Name,
		Description: step.Description,
		Assignees:   step.Assignees,
		Hours:       step.Hours,
		Deadline:    deadline,
	}
	s.sessions.SetStep(upd.UserID, next)

	names := make([]string, 0, len(next.Assignees))
	for _, userID := range next.Assignees {
		u, err := s.users.Get(ctx, userID)
		if err != nil {
			continue
		}
		names = append(names, u.FullName)
	}

	text := fmt.Sprintf(
		"Create this task?\n\nName: %s\nDescription: %s\nAssignees: %s\nHours: %d\nDeadline: %s",
		next.Name, next.Description, strings.Join(names, ", "), next.Hours,
		deadline.Format(calendarDateLayout),
	)
	kb := &bot.Keyboard{Rows: [][]bot.Button{
		bot.InlineRow("✅ Create", "confirm_task"),
		bot.InlineRow("❌ Cancel", "cancel"),
	}}
	return s.gateway.EditMessage(ctx, upd.UserID, upd.MessageID, text, kb)
}

func (s *Service) onConfirmTask(ctx context.Context, upd bot.Update, _ []string) error {
	step, ok := s.sessions.Get(upd.UserID).Step.(session.AwaitingTaskConfirm)
	if !ok {
		return nil
	}
	if step.ProjectID == "" || step.Name == "" || len(step.Assignees) == 0 || step.Deadline.IsZero() {
		return cerr.NewError(cerr.Internal, "task form lost collected fields", nil)
	}

	now := s.now()
	t := &task.Task{
		ID:          ulid.Make().String(),
		ProjectID:   step.ProjectID,
		Name:        step.Name,
		Description: step.Description,
		Status:      task.StatusInWork,
		Hours:       step.Hours,
		HoursLogged: 0,
		StartDate:   now,
		Deadline:    step.Deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return err
	}
	for _, userID := range step.Assignees {
		a := &task.Assignment{TaskID: t.ID, UserID: userID, CreatedAt: now}
		if err := s.assignments.Create(ctx, a); err != nil {
			return err
		}
	}
	if _, err := s.scheduler.Schedule(ctx, t.ID, t.Deadline); err != nil {
		return err
	}

	s.sessions.Clear(upd.UserID)
	text := fmt.Sprintf("Task %q created.", t.Name)
	if err := s.gateway.EditMessage(ctx, upd.UserID, upd.MessageID, text, nil); err != nil {
		return err
	}
	return s.sendMainMenu(ctx, upd.UserID)
}
