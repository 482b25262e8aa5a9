package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/taskline/taskline/internal/config"
	"github.com/taskline/taskline/pkg/cerr"
)

// Client calls a GigaChat-style chat-completion endpoint.
type Client struct {
	env        *config.AdvisorEnv
	httpClient *http.Client
}

func NewClient(env *config.AdvisorEnv) *Client {
	return &Client{
		env: env,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) AnalyzeMember(ctx context.Context, in AnalysisInput) (string, error) {
	if c.env.AdvisorCredential == "" {
		return "", cerr.NewError(cerr.FailedPrecondition, "performance analysis is not configured", nil)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.env.AdvisorModel,
		Messages: []chatMessage{
			{Role: "user", Content: buildPrompt(in)},
		},
	})
	if err != nil {
		return "", cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal advisor request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.env.AdvisorURL, bytes.NewReader(body))
	if err != nil {
		return "", cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to build advisor request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.env.AdvisorCredential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", cerr.NewError(cerr.Unavailable, "analysis backend unavailable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", cerr.NewError(cerr.Unavailable, "analysis backend unavailable", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", cerr.NewError(cerr.Unavailable, "analysis backend unavailable",
			fmt.Errorf("advisor returned status %d: %s", resp.StatusCode, raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", cerr.NewError(cerr.Unavailable, "analysis backend unavailable",
			fmt.Errorf("failed to decode advisor response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", cerr.NewError(cerr.Unavailable, "analysis backend unavailable",
			fmt.Errorf("advisor returned no choices"))
	}
	return parsed.Choices[0].Message.Content, nil
}
