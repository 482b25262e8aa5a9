package dialog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/taskline/taskline/internal/bot"
	"github.com/taskline/taskline/internal/project"
	"github.com/taskline/taskline/internal/session"
	"github.com/taskline/taskline/pkg/cerr"
)

const joinKeyAttempts = 5

func (s *Service) onCreateProjectEntry(ctx context.Context, upd bot.Update) error {
	// Entering a flow supersedes whatever was active.
	s.sessions.SetStep(upd.UserID, session.AwaitingProjectName{})
	kb := &bot.Keyboard{Rows: [][]bot.Button{
		bot.InlineRow("❌ Cancel", "cancel"),
	}}
	return s.gateway.SendMessage(ctx, upd.UserID, "What shall we call the project?", kb)
}

func (s *Service) onProjectName(ctx context.Context, upd bot.Update) error {
	name := strings.TrimSpace(upd.Text)
	if name == "" {
		return cerr.NewError(cerr.InvalidArgument, "please send a non-empty project name", nil)
	}

	s.sessions.SetStep(upd.UserID, session.AwaitingProjectDescription{Name: name})
	kb := &bot.Keyboard{Rows: [][]bot.Button{
		bot.InlineRow("⬅️ Back to name", "project_back"),
		bot.InlineRow("❌ Cancel", "cancel"),
	}}
	text := fmt.Sprintf(
		"Your project is named %q. Now describe it. The description feeds the performance analysis, so the more detail the better.",
		name,
	)
	return s.gateway.SendMessage(ctx, upd.UserID, text, kb)
}

func (s *Service) onProjectBackToName(ctx context.Context, upd bot.Update, _ []string) error {
	if _, ok := s.sessions.Get(upd.UserID).Step.(session.AwaitingProjectDescription); !ok {
		return cerr.NewError(cerr.FailedPrecondition, "nothing to go back to", nil)
	}
	s.sessions.SetStep(upd.UserID, session.AwaitingProjectName{})
	return s.gateway.SendMessage(ctx, upd.UserID, "Send the new project name:", nil)
}

func (s *Service) onProjectDescription(ctx context.Context, upd bot.Update, step session.AwaitingProjectDescription) error {
	description := strings.TrimSpace(upd.Text)
	if description == "" {
		return cerr.NewError(cerr.InvalidArgument, "please send a non-empty description", nil)
	}

	key, err := s.generateJoinKey(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	p := &project.Project{
		ID:          ulid.Make().String(),
		Name:        step.Name,
		Description: description,
		OwnerID:     upd.UserID,
		JoinKey:     key,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Membership first: a project file is the commit point, so a
	// half-finished create never yields a project without an owner row.
	err = s.memberships.Create(ctx, &project.Membership{
		ProjectID: p.ID,
		UserID:    upd.UserID,
		Role:      project.RoleAdministrator,
		CreatedAt: now,
	})
	if err != nil {
		return err
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return err
	}

	s.sessions.Clear(upd.UserID)
	text := fmt.Sprintf("Project %q created! You are its administrator.", p.Name)
	if err := s.gateway.SendMessage(ctx, upd.UserID, text, nil); err != nil {
		return err
	}
	if err := s.gateway.SendMessage(ctx, upd.UserID, fmt.Sprintf("Join key for the project: %s", key), nil); err != nil {
		return err
	}
	return s.sendMainMenu(ctx, upd.UserID)
}

// generateJoinKey mints a short unique key, retrying on the unlikely
// collision with an existing project.
func (s *Service) generateJoinKey(ctx context.Context) (string, error) {
	for range joinKeyAttempts {
		key := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		_, err := s.projects.GetByJoinKey(ctx, key)
		if cerr.IsCode(err, cerr.NotFound) {
			return key, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to generate a unique join key"))
}
