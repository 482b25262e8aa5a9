package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TelegramGateway sends outbound messages through the Telegram Bot
// API. Inline keyboards map to inline_keyboard rows; a keyboard whose
// buttons carry no data maps to a reply keyboard.
type TelegramGateway struct {
	baseURL    string
	httpClient *http.Client
}

func NewTelegramGateway(token string) *TelegramGateway {
	return &TelegramGateway{
		baseURL: "https://api.telegram.org/bot" + token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type tgInlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type tgReplyButton struct {
	Text string `json:"text"`
}

type tgReplyMarkup struct {
	InlineKeyboard [][]tgInlineButton `json:"inline_keyboard,omitempty"`
	Keyboard       [][]tgReplyButton  `json:"keyboard,omitempty"`
	ResizeKeyboard bool               `json:"resize_keyboard,omitempty"`
}

func replyMarkup(kb *Keyboard) *tgReplyMarkup {
	if kb == nil || len(kb.Rows) == 0 {
		return nil
	}
	inline := false
	for _, row := range kb.Rows {
		for _, b := range row {
			if b.Data != "" {
				inline = true
			}
		}
	}
	markup := &tgReplyMarkup{}
	if inline {
		for _, row := range kb.Rows {
			tgRow := make([]tgInlineButton, 0, len(row))
			for _, b := range row {
				data := b.Data
				if data == "" {
					data = "noop"
				}
				tgRow = append(tgRow, tgInlineButton{Text: b.Label, CallbackData: data})
			}
			markup.InlineKeyboard = append(markup.InlineKeyboard, tgRow)
		}
		return markup
	}
	for _, row := range kb.Rows {
		tgRow := make([]tgReplyButton, 0, len(row))
		for _, b := range row {
			tgRow = append(tgRow, tgReplyButton{Text: b.Label})
		}
		markup.Keyboard = append(markup.Keyboard, tgRow)
	}
	markup.ResizeKeyboard = true
	return markup
}

func (g *TelegramGateway) SendMessage(ctx context.Context, userID int64, text string, kb *Keyboard) error {
	payload := map[string]any{
		"chat_id": userID,
		"text":    text,
	}
	if markup := replyMarkup(kb); markup != nil {
		payload["reply_markup"] = markup
	}
	return g.call(ctx, "sendMessage", payload)
}

func (g *TelegramGateway) EditMessage(ctx context.Context, userID, messageID int64, text string, kb *Keyboard) error {
	payload := map[string]any{
		"chat_id":    userID,
		"message_id": messageID,
		"text":       text,
	}
	if markup := replyMarkup(kb); markup != nil {
		payload["reply_markup"] = markup
	}
	return g.call(ctx, "editMessageText", payload)
}

func (g *TelegramGateway) DeleteMessage(ctx context.Context, userID, messageID int64) error {
	return g.call(ctx, "deleteMessage", map[string]any{
		"chat_id":    userID,
		"message_id": messageID,
	})
}

func (g *TelegramGateway) call(ctx context.Context, method string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned status %d: %s", method, resp.StatusCode, raw)
	}
	return nil
}
