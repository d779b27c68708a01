package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/atlasops/salesops-bot-go/pkg/errors"
	"go.uber.org/zap"
)

const apiBaseURL = "https://slack.com/api"

// Client is the Slack Web API side of the transport: posting replies and
// opening Socket Mode connections.
type Client struct {
	appToken   string
	botToken   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(appToken, botToken string, logger *zap.Logger) *Client {
	return &Client{
		appToken: appToken,
		botToken: botToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	URL   string `json:"url,omitempty"`
	Team  string `json:"team,omitempty"`
	User  string `json:"user,omitempty"`
}

func (c *Client) call(ctx context.Context, method, token string, body any, dest *apiResponse) error {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return errors.NewServiceError("failed to encode request", "slack", method, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/%s", apiBaseURL, method), &payload)
	if err != nil {
		return errors.NewServiceError("failed to build request", "slack", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewServiceError("request failed", "slack", method, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errors.NewServiceError("failed to decode response", "slack", method, err)
	}
	if !dest.OK {
		return errors.NewServiceError(
			fmt.Sprintf("slack API error: %s", dest.Error), "slack", method, nil)
	}
	return nil
}

// AuthTest verifies the bot token and returns the bot's user id.
func (c *Client) AuthTest(ctx context.Context) (string, error) {
	var resp apiResponse
	if err := c.call(ctx, "auth.test", c.botToken, nil, &resp); err != nil {
		return "", err
	}
	return resp.User, nil
}

// OpenConnection requests a fresh Socket Mode websocket URL.
func (c *Client) OpenConnection(ctx context.Context) (string, error) {
	var resp apiResponse
	if err := c.call(ctx, "apps.connections.open", c.appToken, nil, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", errors.NewServiceError("empty websocket URL", "slack", "apps.connections.open", nil)
	}
	return resp.URL, nil
}

// PostMessage sends a message to a channel, threading under threadTS when set.
func (c *Client) PostMessage(ctx context.Context, channel, threadTS, text string) error {
	body := map[string]any{
		"channel": channel,
		"text":    text,
	}
	if threadTS != "" {
		body["thread_ts"] = threadTS
	}

	var resp apiResponse
	if err := c.call(ctx, "chat.postMessage", c.botToken, body, &resp); err != nil {
		c.logger.Error("Failed to post message",
			zap.String("channel", channel),
			zap.Error(err),
		)
		return err
	}
	return nil
}
