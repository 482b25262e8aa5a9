package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/taskline/taskline/internal/advisor"
	"github.com/taskline/taskline/internal/bot"
	"github.com/taskline/taskline/internal/project"
	"github.com/taskline/taskline/internal/task"
	"github.com/taskline/taskline/pkg/cerr"
	"github.com/taskline/taskline/pkg/clog"
	"github.com/taskline/taskline/pkg/paginate"
)

func (s *Service) onMyProjects(ctx context.Context, upd bot.Update) error {
	// Browsing supersedes any active flow.
	s.sessions.Clear(upd.UserID)
	return s.renderProjects(ctx, upd, 1, false)
}

func (s *Service) onProjectsPage(ctx context.Context, upd bot.Update, params []string) error {
	page, err := pageParam(params, 0)
	if err != nil {
		return err
	}
	return s.renderProjects(ctx, upd, page, true)
}

func (s *Service) renderProjects(ctx context.Context, upd bot.Update, pageNum int, edit bool) error {
	projects, err := s.projects.ListByUser(ctx, upd.UserID)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return s.gateway.SendMessage(ctx, upd.UserID, "You are not a member of any project yet.", nil)
	}

	page := paginate.Paginate(projects, projectsPerPage, pageNum)

	var rows [][]bot.Button
	for _, p := range page.Items {
		rows = append(rows, bot.InlineRow(p.Name, "view_project:"+p.ID))
	}
	if nav := pageNavRow(page.HasPrev, page.HasNext, "projects_page", pageNum); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, bot.InlineRow("❌ Close", "cancel"))

	kb := &bot.Keyboard{Rows: rows}
	if edit {
		return s.gateway.EditMessage(ctx, upd.UserID, upd.MessageID, "Your projects:", kb)
	}
	return s.gateway.SendMessage(ctx, upd.UserID, "Your projects:", kb)
}

func (s *Service) onViewProject(ctx context.Context, upd bot.Update, params []string) error {
	if len(params) < 1 {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	return s.renderProject(ctx, upd, params[0], 1)
}

func (s *Service) onMembersPage(ctx context.Context, upd bot.Update, params []string) error {
	if len(params) < 2 {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	page, err := pageParam(params, 1)
	if err != nil {
		return err
	}
	return s.renderProject(ctx, upd, params[0], page)
}

func (s *Service) renderProject(ctx context.Context, upd bot.Update, projectID string, memberPage int) error {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	membership, err := s.requireRole(ctx, projectID, upd.UserID, project.RoleMember)
	if err != nil {
		return err
	}

	rows := [][]bot.Button{
		bot.InlineRow("📋 Tasks", fmt.Sprintf("tasks_page:%s:1", p.ID)),
	}

	// Administrators additionally see the member list and task creation.
	if membership.Role == project.RoleAdministrator {
		members, err := s.memberships.ListByProject(ctx, p.ID)
		if err != nil {
			return err
		}
		page := paginate.Paginate(members, membersPerPage, memberPage)
		for _, m := range page.Items {
			u, err := s.users.Get(ctx, m.UserID)
			if err != nil {
				continue
			}
			rows = append(rows, bot.InlineRow(
				fmt.Sprintf("%s (%s)", u.FullName, m.Role),
				fmt.Sprintf("view_member:%s:%d", p.ID, m.UserID),
			))
		}
		if nav := pageNavRowWithID(page.HasPrev, page.HasNext, "members_page", p.ID, memberPage); nav != nil {
			rows = append(rows, nav)
		}
		rows = append(rows, bot.InlineRow("➕ Create task", "create_task:"+p.ID))
	}
	rows = append(rows, bot.InlineRow("❌ Close", "cancel"))

	text := fmt.Sprintf("Project: %s\n%s", p.Name, p.Description)
	return s.gateway.EditMessage(ctx, upd.UserID, upd.MessageID, text, &bot.Keyboard{Rows: rows})
}

func (s *Service) onViewMember(ctx context.Context, upd bot.Update, params []string) error {
	if len(params) < 2 {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	projectID := params[0]
	memberID, err := strconv.ParseInt(params[1], 10, 64)
	if err != nil {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", err)
	}

	if _, err := s.requireRole(ctx, projectID, upd.UserID, project.RoleAdministrator); err != nil {
		return err
	}
	m, err := s.memberships.Get(ctx, projectID, memberID)
	if err != nil {
		return err
	}
	u, err := s.users.Get(ctx, memberID)
	if err != nil {
		return err
	}

	rows := [][]bot.Button{
		bot.InlineRow("Make administrator", fmt.Sprintf("change_role:%s:%d:%s", projectID, memberID, project.RoleAdministrator)),
		bot.InlineRow("Make member", fmt.Sprintf("change_role:%s:%d:%s", projectID, memberID, project.RoleMember)),
		bot.InlineRow("📈 Analyze performance", fmt.Sprintf("analyze_member:%s:%d", projectID, memberID)),
		bot.InlineRow("⬅️ Back to project", "view_project:"+projectID),
	}
	text := fmt.Sprintf("%s — %s", u.FullName, m.Role)
	return s.gateway.EditMessage(ctx, upd.UserID, upd.MessageID, text, &bot.Keyboard{Rows: rows})
}

func (s *Service) onChangeRole(ctx context.Context, upd bot.Update, params []string) error {
	if len(params) < 3 {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	projectID := params[0]
	memberID, err := strconv.ParseInt(params[1], 10, 64)
	if err != nil {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", err)
	}
	role, err := project.ParseRole(params[2])
	if err != nil {
		return cerr.NewError(cerr.InvalidArgument, "unknown role", err)
	}

	if _, err := s.requireRole(ctx, projectID, upd.UserID, project.RoleAdministrator); err != nil {
		return err
	}

	m, err := s.memberships.Get(ctx, projectID, memberID)
	if err != nil {
		return err
	}
	m.Role = role
	if err := s.memberships.Update(ctx, m); err != nil {
		return err
	}

	u, err := s.users.Get(ctx, memberID)
	if err != nil {
		return err
	}
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("Role of %s changed to %s.", u.FullName, role)
	if err := s.gateway.EditMessage(ctx, upd.UserID, upd.MessageID, text, nil); err != nil {
		return err
	}
	// Tell the affected member; their delivery failure is not ours.
	notice := fmt.Sprintf("Your role in project %q is now %s.", p.Name, role)
	if err := s.gateway.SendMessage(ctx, memberID, notice, nil); err != nil {
		clog.AddError(ctx, err)
		slog.WarnContext(ctx, "role change notification failed")
	}
	return nil
}

func (s *Service) onAnalyzeMember(ctx context.Context, upd bot.Update, params []string) error {
	if len(params) < 2 {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	projectID := params[0]
	memberID, err := strconv.ParseInt(params[1], 10, 64)
	if err != nil {
		return cerr.NewError(cerr.InvalidArgument, "unknown action", err)
	}

	if _, err := s.requireRole(ctx, projectID, upd.UserID, project.RoleAdministrator); err != nil {
		return err
	}
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	u, err := s.users.Get(ctx, memberID)
	if err != nil {
		return err
	}

	input, err := s.collectAnalysisInput(ctx, p, u.FullName, memberID)
	if err != nil {
		return err
	}

	summary, err := s.advisor.AnalyzeMember(ctx, input)
	if err != nil {
		return err
	}
	return s.gateway.SendMessage(ctx, upd.UserID, summary, nil)
}

// collectAnalysisInput gathers the member's completed tasks and hour
// totals for the analysis prompt.
func (s *Service) collectAnalysisInput(ctx context.Context, p *project.Project, memberName string, memberID int64) (advisor.AnalysisInput, error) {
	projectTasks, err := s.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		return advisor.AnalysisInput{}, err
	}
	memberAssignments, err := s.assignments.ListByUser(ctx, memberID)
	if err != nil {
		return advisor.AnalysisInput{}, err
	}
	assigned := make(map[string]struct{}, len(memberAssignments))
	for _, a := range memberAssignments {
		assigned[a.TaskID] = struct{}{}
	}

	input := advisor.AnalysisInput{
		ProjectName:        p.Name,
		ProjectDescription: p.Description,
		MemberName:         memberName,
	}
	for _, t := range projectTasks {
		if t.Status != task.StatusDone {
			continue
		}
		input.TotalHours += t.Hours
		if _, ok := assigned[t.ID]; !ok {
			continue
		}
		input.MemberHours += t.Hours
		input.DoneTasks = append(input.DoneTasks, advisor.TaskFact{
			Name:        t.Name,
			Description: t.Description,
			Hours:       t.Hours,
		})
	}
	return input, nil
}

func pageParam(params []string, idx int) (int, error) {
	if idx >= len(params) {
		return 0, cerr.NewError(cerr.InvalidArgument, "unknown action", nil)
	}
	page, err := strconv.Atoi(params[idx])
	if err != nil || page < 1 {
		return 0, cerr.NewError(cerr.InvalidArgument, "unknown action", err)
	}
	return page, nil
}

func pageNavRow(hasPrev, hasNext bool, action string, page int) []bot.Button {
	var nav []bot.Button
	if hasPrev {
		nav = append(nav, bot.Button{Label: "⬅️ Prev", Data: fmt.Sprintf("%s:%d", action, page-1)})
	}
	if hasNext {
		nav = append(nav, bot.Button{Label: "➡️ Next", Data: fmt.Sprintf("%s:%d", action, page+1)})
	}
	return nav
}

func pageNavRowWithID(hasPrev, hasNext bool, action, id string, page int) []bot.Button {
	var nav []bot.Button
	if hasPrev {
		nav = append(nav, bot.Button{Label: "⬅️ Prev", Data: fmt.Sprintf("%s:%s:%d", action, id, page-1)})
	}
	if hasNext {
		nav = append(nav, bot.Button{Label: "➡️ Next", Data: fmt.Sprintf("%s:%s:%d", action, id, page+1)})
	}
	return nav
}
