package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the campus SMS gateway.
type Client struct {
	HTTPClient *http.Client
	GatewayURL string
	APIKey     string
	SenderName string
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
	Sender  string `json:"sender,omitempty"`
}

type sendResponse struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

// Send delivers one text message and returns the gateway's message id
// for delivery-callback correlation.
func (c Client) Send(ctx context.Context, to, message string) (string, error) {
	var resp sendResponse
	_, err := c.doJSON(ctx, http.MethodPost, "/v1/messages", sendRequest{To: to, Message: message, Sender: c.SenderName}, &resp)
	if err != nil {
		return "", err
	}
	return resp.MessageID, nil
}

func (c Client) doJSON(ctx context.Context, method, path string, reqBody any, respBody any) (int, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	if c.GatewayURL == "" || c.APIKey == "" {
		return 0, fmt.Errorf("missing sms gateway url or api key")
	}

	var buf bytes.Buffer
	if reqBody != nil {
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.GatewayURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, readErr
	}

	// Surface the gateway error body for non-2xx so callers can see quota
	// or number-format complaints.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(b) > 0 {
			return resp.StatusCode, fmt.Errorf("sms gateway error: status=%d body=%s", resp.StatusCode, string(b))
		}
		return resp.StatusCode, fmt.Errorf("sms gateway error: status=%d", resp.StatusCode)
	}

	if respBody != nil && len(b) > 0 {
		if err := json.Unmarshal(b, respBody); err != nil {
			return resp.StatusCode, fmt.Errorf("decode sms gateway response failed: %w body=%s", err, string(b))
		}
	}

	return resp.StatusCode, nil
}
