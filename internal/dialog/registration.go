package dialog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taskline/taskline/internal/bot"
	"github.com/taskline/taskline/internal/session"
	"github.com/taskline/taskline/internal/user"
	"github.com/taskline/taskline/pkg/cerr"
)

func (s *Service) onStart(ctx context.Context, upd bot.Update) error {
	exists, err := s.users.Exists(ctx, upd.UserID)
	if err != nil {
		return err
	}
	if !exists {
		s.sessions.SetStep(upd.UserID, session.AwaitingFullName{})
		return s.gateway.SendMessage(ctx, upd.UserID, "Hi! Please send your full name.", nil)
	}
	return s.sendMainMenu(ctx, upd.UserID)
}

func (s *Service) onFullName(ctx context.Context, upd bot.Update) error {
	fullName := strings.TrimSpace(upd.Text)
	if fullName == "" {
		return cerr.NewError(cerr.InvalidArgument, "please send a non-empty name", nil)
	}

	err := s.users.Create(ctx, &user.User{
		ID:        upd.UserID,
		FullName:  fullName,
		CreatedAt: time.Now(),
	})
	if err != nil && !cerr.IsCode(err, cerr.AlreadyExists) {
		return err
	}

	s.sessions.Clear(upd.UserID)
	text := fmt.Sprintf("Great, %s! You can use the bot now.", fullName)
	if err := s.gateway.SendMessage(ctx, upd.UserID, text, nil); err != nil {
		return err
	}
	return s.sendMainMenu(ctx, upd.UserID)
}
