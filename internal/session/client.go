package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/clubhub-dev/clubhub/internal/domain"
	internal_errors "github.com/clubhub-dev/clubhub/internal/errors"
)

// Client talks to the forum API over HTTP and joins rooms over websocket. It
// implements Lister and Subscriber for the Controller.
type Client struct {
	BaseURL    string
	HttpClient *http.Client
	Dialer     *websocket.Dialer
	Token      string
	Logger     *slog.Logger
}

func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{},
		Dialer:     websocket.DefaultDialer,
		Token:      token,
		Logger:     logger,
	}
}

// do is the single helper for API requests; it attaches auth and decodes
// error responses into the shared taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend unavailable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return internal_errors.NotFound
	case resp.StatusCode == http.StatusForbidden:
		return internal_errors.PermissionDenied
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(resp.Body)
		return &internal_errors.ErrorWithStatusCode{Message: strings.TrimSpace(string(msg)), StatusCode: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) ListMessages(ctx context.Context, forum domain.ForumId, page int) ([]*domain.Message, error) {
	var msgs []*domain.Message
	path := fmt.Sprintf("/v1/forums/%d/messages?page=%d", forum, page)
	if err := c.do(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage posts a text message or reply and returns the stored message.
// The caller merges it optimistically; the room echo is absorbed by the
// idempotent reducer.
func (c *Client) SendMessage(ctx context.Context, forum domain.ForumId, text string, parentId *domain.MsgId, poll *domain.PollCreationData) (*domain.Message, error) {
	var msg domain.Message
	body := map[string]any{"text": text}
	if parentId != nil {
		body["parent_id"] = *parentId
	}
	if poll != nil {
		body["poll"] = poll
	}
	path := fmt.Sprintf("/v1/forums/%d/messages", forum)
	if err := c.do(ctx, http.MethodPost, path, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) DeleteMessage(ctx context.Context, id domain.MsgId) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/messages/%d", id), nil, nil)
}

func (c *Client) CastVote(ctx context.Context, id domain.MsgId, optionIndex int) (*domain.Message, error) {
	var msg domain.Message
	body := map[string]int{"option_index": optionIndex}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/messages/%d/votes", id), body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Subscribe dials the forum's live endpoint. The returned channel closes
// when ctx is cancelled or the connection drops; events arrive in the order
// the room emitted them.
func (c *Client) Subscribe(ctx context.Context, forum domain.ForumId) (<-chan domain.Event, error) {
	wsURL := strings.Replace(c.BaseURL, "http", "ws", 1) + fmt.Sprintf("/v1/forums/%d/live", forum)
	header := http.Header{"Authorization": []string{"Bearer " + c.Token}}

	conn, resp, err := c.Dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusForbidden {
			return nil, internal_errors.PermissionDenied
		}
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	events := make(chan domain.Event)

	// closer: runs on every exit path, ctx cancel included
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer close(events)
		defer conn.Close()
		for {
			var ev domain.Event
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil {
					c.Logger.Warn("room connection lost", "forum", forum, "error", err)
				}
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
