package dialog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taskline/taskline/internal/bot"
	"github.com/taskline/taskline/internal/project"
	"github.com/taskline/taskline/internal/session"
	"github.com/taskline/taskline/pkg/cerr"
)

func (s *Service) onJoinProjectEntry(ctx context.Context, upd bot.Update) error {
	s.sessions.SetStep(upd.UserID, session.AwaitingJoinKey{})
	kb := &bot.Keyboard{Rows: [][]bot.Button{
		bot.InlineRow("❌ Cancel", "cancel"),
	}}
	return s.gateway.SendMessage(ctx, upd.UserID, "Send the project join key:", kb)
}

func (s *Service) onJoinKey(ctx context.Context, upd bot.Update) error {
	key := strings.TrimSpace(upd.Text)

	p, err := s.projects.GetByJoinKey(ctx, key)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			// Stay at the key step so the user can retry.
			return s.gateway.SendMessage(ctx, upd.UserID, "Invalid project key. Try again or press Cancel.", nil)
		}
		return err
	}

	err = s.memberships.Create(ctx, &project.Membership{
		ProjectID: p.ID,
		UserID:    upd.UserID,
		Role:      project.RoleMember,
		CreatedAt: time.Now(),
	})
	switch {
	case cerr.IsCode(err, cerr.AlreadyExists):
		s.sessions.Clear(upd.UserID)
		if err := s.gateway.SendMessage(ctx, upd.UserID, "You are already a member of this project.", nil); err != nil {
			return err
		}
		return s.sendMainMenu(ctx, upd.UserID)
	case err != nil:
		return err
	}

	s.sessions.Clear(upd.UserID)
	text := fmt.Sprintf("You joined project %q.", p.Name)
	if err := s.gateway.SendMessage(ctx, upd.UserID, text, nil); err != nil {
		return err
	}
	return s.sendMainMenu(ctx, upd.UserID)
}
