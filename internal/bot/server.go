package bot

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server receives transport webhook deliveries and feeds them to the
// dispatcher. The transport posts one Update per request.
type Server struct {
	server     *http.Server
	host       string
	port       string
	dispatcher *Dispatcher
}

func NewServer(host, port string, dispatcher *Dispatcher) *Server {
	return &Server{
		host:       host,
		port:       port,
		dispatcher: dispatcher,
	}
}

// webhookPayload is the subset of a Telegram update the bot consumes.
type webhookPayload struct {
	Message *struct {
		MessageID int64 `json:"message_id"`
		From      struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Text string `json:"text"`
	} `json:"message"`
	CallbackQuery *struct {
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Message *struct {
			MessageID int64 `json:"message_id"`
		} `json:"message"`
		Data string `json:"data"`
	} `json:"callback_query"`
}

func (p *webhookPayload) update() (Update, bool) {
	switch {
	case p.CallbackQuery != nil && p.CallbackQuery.Data != "":
		upd := Update{
			UserID: p.CallbackQuery.From.ID,
			Data:   p.CallbackQuery.Data,
		}
		if p.CallbackQuery.Message != nil {
			upd.MessageID = p.CallbackQuery.Message.MessageID
		}
		return upd, upd.UserID != 0
	case p.Message != nil:
		upd := Update{
			UserID:    p.Message.From.ID,
			MessageID: p.Message.MessageID,
			Text:      p.Message.Text,
		}
		return upd, upd.UserID != 0
	default:
		return Update{}, false
	}
}

// ListenAndServe starts the HTTP server. ctx becomes the base context
// of every request and of every dispatched update; cancelling it on
// shutdown also stops the per-user workers.
func (s *Server) ListenAndServe(ctx context.Context) error {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/webhook", func(w http.ResponseWriter, req *http.Request) {
		var payload webhookPayload
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		upd, ok := payload.update()
		if !ok {
			// Updates the bot does not consume are acknowledged so the
			// transport stops redelivering them.
			w.WriteHeader(http.StatusOK)
			return
		}
		s.dispatcher.Dispatch(ctx, upd)
		w.WriteHeader(http.StatusOK)
	})

	addr := net.JoinHostPort(s.host, s.port)
	slog.Info("starting webhook server", "addr", addr)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     r,
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
