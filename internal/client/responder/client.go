package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/relayteam/roomsync/internal/config"
	"github.com/relayteam/roomsync/internal/model"
	"github.com/relayteam/roomsync/internal/send"
)

type invokeRequest struct {
	Body           string             `json:"body"`
	Attachments    []model.Attachment `json:"attachments,omitempty"`
	CorrelationKey string             `json:"correlation_key"`
}

// Client calls the external responder webhook once per send.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

func New(cfg *config.Config) *Client {
	return &Client{
		webhookURL: cfg.Responder.WebhookURL,
		httpClient: &http.Client{
			Timeout: cfg.Responder.Timeout,
		},
	}
}

func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) Invoke(ctx context.Context, body string, attachments []model.Attachment, correlationKey string) (model.ReplyPayload, error) {
	payload := invokeRequest{
		Body:           body,
		Attachments:    attachments,
		CorrelationKey: correlationKey,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return model.ReplyPayload{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return model.ReplyPayload{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.ReplyPayload{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // .

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.ReplyPayload{}, fmt.Errorf("responder rejected call: %w", send.ErrUnauthorized)
	default:
		return model.ReplyPayload{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var reply model.ReplyPayload
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return model.ReplyPayload{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return reply, nil
}
