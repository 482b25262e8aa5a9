package bot

import "context"

// Update is one inbound user action, already stripped of transport
// detail. Exactly one of Text or Data is set: Text for free-form
// messages, Data for a structured choice (colon-delimited action token,
// e.g. "view_project:01ARZ...").
type Update struct {
	UserID    int64
	MessageID int64
	Text      string
	Data      string
}

// Kind distinguishes the two inbound action kinds.
type Kind string

const (
	KindMessage  Kind = "message"
	KindCallback Kind = "callback"
)

func (u Update) Kind() Kind {
	if u.Data != "" {
		return KindCallback
	}
	return KindMessage
}

// Button is one keyboard button. Data empty means a reply-keyboard
// button that echoes its label as text; otherwise it is an inline
// button carrying a structured choice.
type Button struct {
	Label string
	Data  string
}

type Keyboard struct {
	Rows [][]Button
}

// InlineRow is a convenience constructor for a single-button row.
func InlineRow(label, data string) []Button {
	return []Button{{Label: label, Data: data}}
}

// Gateway is the outbound half of the transport. Implementations talk
// to the chat platform; tests use a recording fake.
type Gateway interface {
	SendMessage(ctx context.Context, userID int64, text string, kb *Keyboard) error
	EditMessage(ctx context.Context, userID, messageID int64, text string, kb *Keyboard) error
	DeleteMessage(ctx context.Context, userID, messageID int64) error
}

// Handler processes one update to completion.
type Handler func(ctx context.Context, upd Update) error

// Middleware wraps a Handler.
type Middleware func(Handler) Handler
