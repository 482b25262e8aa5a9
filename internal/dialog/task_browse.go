package dialog

import (
	"context"
	"fmt"
	"time"

	"github.com/taskline/taskline/internal/bot"
	"github.com/taskline/taskline/internal/project"
	"github.com/taskline/taskline/internal/session"
	"github.com/taskline/taskline/internal/task"
	"github.com/taskline/taskline/pkg/cerr"
	"github.com/taskline/taskline/pkg/paginate"
)

func (s *Service) onTasksPage(ctx context.Context, upd bot.Update, params []string) error {
	if len(params) < 2 {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	projectID := params[0]
	page, err := pageParam(params, 1)
	if err != nil {
		return err
	}
	if _, err := s.requireRole(ctx, projectID, upd.UserID, project.RoleMember); err != nil {
		return err
	}

	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}

	var rows [][]bot.Button
	tp := paginate.Paginate(tasks, tasksPerPage, page)
	for _, t := range tp.Items {
		rows = append(rows, bot.InlineRow(
			fmt.Sprintf("%s [%s]", t.Name, t.Status),
			fmt.Sprintf("view_task:%s:%s", projectID, t.ID),
		))
	}
	if nav := pageNavRowWithID(tp.HasPrev, tp.HasNext, "tasks_page", projectID, page); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows,
		bot.InlineRow("⬅️ Back to project", "view_project:"+projectID),
		bot.InlineRow("❌ Close", "cancel"),
	)

	text := "Project tasks:"
	if len(tasks) == 0 {
		text = "No tasks in this project yet."
	}
	return s.gateway.EditMessage(ctx, upd.UserID, upd.MessageID, text, &bot.Keyboard{Rows: rows})
}

func (s *Service) onViewTask(ctx context.Context, upd bot.Update, params []string) error {
	if len(params) < 2 {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	projectID, taskID := params[0], params[1]
	if _, err := s.requireRole(ctx, projectID, upd.UserID, project.RoleMember); err != nil {
		return err
	}

	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}
	assignees, err := s.assignments.ListByTask(ctx, taskID)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(assignees))
	for _, a := range assignees {
		u, err := s.users.Get(ctx, a.UserID)
		if err != nil {
			continue
		}
		names = append(names, u.FullName)
	}

	text := fmt.Sprintf(
		"Task: %s\n%s\n\nStatus: %s\nHours: %d (logged %d)\nDeadline: %s",
		t.Name, t.Description, t.Status, t.Hours, t.HoursLogged,
		t.Deadline.Format(calendarDateLayout),
	)
	for _, name := range names {
		text += "\nAssignee: " + name
	}

	rows := [][]bot.Button{
		bot.InlineRow("✏️ Change status", fmt.Sprintf("edit_task_status:%s:%s", projectID, t.ID)),
		bot.InlineRow("⬅️ Back to tasks", fmt.Sprintf("tasks_page:%s:1", projectID)),
		bot.InlineRow("❌ Close", "cancel"),
	}
	return s.gateway.EditMessage(ctx, upd.UserID, upd.MessageID, text, &bot.Keyboard{Rows: rows})
}

func (s *Service) onEditTaskStatus(ctx context.Context, upd bot.Update, params []string) error {
	if len(params) < 2 {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	projectID, taskID := params[0], params[1]
	if _, err := s.requireRole(ctx, projectID, upd.UserID, project.RoleMember); err != nil {
		return err
	}
	if _, err := s.tasks.Get(ctx, taskID); err != nil {
		return err
	}

	s.sessions.SetStep(upd.UserID, session.AwaitingNewStatus{ProjectID: projectID, TaskID: taskID})

	rows := make([][]bot.Button, 0, len(task.EditableStatuses)+1)
	for _, status := range task.EditableStatuses {
		rows = append(rows, bot.InlineRow(
			string(status),
			fmt.Sprintf("set_task_status:%s:%s:%s", projectID, taskID, status),
		))
	}
	rows = append(rows, bot.InlineRow("❌ Cancel", "cancel"))
	return s.gateway.EditMessage(ctx, upd.UserID, upd.MessageID, "Pick the new status:", &bot.Keyboard{Rows: rows})
}

func (s *Service) onSetTaskStatus(ctx context.Context, upd bot.Update, params []string) error {
	if len(params) < 3 {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	projectID, taskID := params[0], params[1]
	status, err := task.ParseStatus(params[2])
	if err != nil {
		return cerr.NewError(cerr.InvalidArgument, "unknown task status", err)
	}
	if _, err := s.requireRole(ctx, projectID, upd.UserID, project.RoleMember); err != nil {
		return err
	}

	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	if err := s.tasks.Update(ctx, t); err != nil {
		return err
	}

	s.sessions.Clear(upd.UserID)
	text := fmt.Sprintf("Task %q is now %s.", t.Name, status)
	if err := s.gateway.EditMessage(ctx, upd.UserID, upd.MessageID, text, nil); err != nil {
		return err
	}
	return s.sendMainMenu(ctx, upd.UserID)
}
