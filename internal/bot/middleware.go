package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taskline/taskline/internal/session"
	"github.com/taskline/taskline/internal/user"
	"github.com/taskline/taskline/pkg/cerr"
)

// LoggingMiddleware records every inbound update at info level.
func LoggingMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, upd Update) error {
			payload := upd.Text
			if upd.Kind() == KindCallback {
				payload = upd.Data
			}
			slog.InfoContext(ctx, "update received", "payload", payload)
			return next(ctx, upd)
		}
	}
}

// RegistrationGateMiddleware intercepts messages from users that have
// no registration yet: while the session is idle they are prompted for
// a full name and moved to the registration step. Registered users and
// callback updates pass through.
func RegistrationGateMiddleware(users user.Repository, sessions *session.Store, gw Gateway) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, upd Update) error {
			if upd.Kind() == KindCallback {
				return next(ctx, upd)
			}
			exists, err := users.Exists(ctx, upd.UserID)
			if err != nil {
				return err
			}
			if exists {
				return next(ctx, upd)
			}
			if _, idle := sessions.Get(upd.UserID).Step.(session.Idle); idle {
				sessions.SetStep(upd.UserID, session.AwaitingFullName{})
				return gw.SendMessage(ctx, upd.UserID, "Hi! You are not registered yet. Please send your full name.", nil)
			}
			return next(ctx, upd)
		}
	}
}

// CommandFilterMiddleware enforces the restrictive input mode: free
// text is allowed through only while the session sits in one of the
// in-form steps, or when it is a recognized menu command or a slash
// command. Anything else is deleted from the conversation without a
// reply. Callbacks always pass.
func CommandFilterMiddleware(sessions *session.Store, gw Gateway, allowedCommands []string) Middleware {
	allowed := make(map[string]struct{}, len(allowedCommands))
	for _, cmd := range allowedCommands {
		allowed[cmd] = struct{}{}
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, upd Update) error {
			if upd.Kind() == KindCallback {
				return next(ctx, upd)
			}
			if session.BypassesCommandFilter(sessions.Get(upd.UserID).Step) {
				return next(ctx, upd)
			}
			if strings.HasPrefix(upd.Text, "/") {
				return next(ctx, upd)
			}
			if _, ok := allowed[upd.Text]; ok {
				return next(ctx, upd)
			}
			if err := gw.DeleteMessage(ctx, upd.UserID, upd.MessageID); err != nil {
				// Best effort: a message we cannot delete is still ignored.
				if !cerr.IsCode(err, cerr.NotFound) {
					slog.WarnContext(ctx, "failed to delete filtered message", "error", err)
				}
			}
			return nil
		}
	}
}
