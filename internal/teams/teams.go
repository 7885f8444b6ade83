package teams

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codefionn/werkbank/internal/logger"
)

// Teams rejects incoming-webhook payloads over 28KB; truncating the body
// to 24KB leaves room for the card scaffolding.
const maxContentBytes = 24_000

// SendResult reports the outcome of posting a card to a Teams webhook.
type SendResult struct {
	Success bool   `json:"success"`
	Status  int    `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Send posts title and markdown content to a Microsoft Teams incoming
// webhook as an Adaptive Card. Oversized content is truncated with a
// notice carrying the original length.
func Send(ctx context.Context, webhookURL, title, content string) *SendResult {
	if webhookURL == "" {
		return &SendResult{Error: "Webhook URL is empty"}
	}

	body := content
	if len(body) > maxContentBytes {
		body = fmt.Sprintf("%s...\n\n(truncated — original length: %d chars)",
			body[:maxContentBytes], len(content))
	}

	payload := map[string]interface{}{
		"type": "message",
		"attachments": []map[string]interface{}{{
			"contentType": "application/vnd.microsoft.card.adaptive",
			"contentUrl":  nil,
			"content": map[string]interface{}{
				"$schema": "http://adaptivecards.io/schemas/adaptive-card.json",
				"type":    "AdaptiveCard",
				"version": "1.4",
				"body": []map[string]interface{}{
					{
						"type":   "TextBlock",
						"text":   title,
						"weight": "Bolder",
						"size":   "Medium",
						"wrap":   true,
					},
					{
						"type":     "TextBlock",
						"text":     body,
						"wrap":     true,
						"fontType": "Default",
					},
					{
						"type":                "TextBlock",
						"text":                "Sent from werkbank",
						"isSubtle":            true,
						"size":                "Small",
						"horizontalAlignment": "Right",
					},
				},
			},
		}},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return &SendResult{Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(data))
	if err != nil {
		return &SendResult{Error: fmt.Sprintf("Request failed: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("teams: webhook post failed: %v", err)
		return &SendResult{Error: fmt.Sprintf("Request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &SendResult{
			Status: resp.StatusCode,
			Error:  fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	return &SendResult{Success: true, Status: resp.StatusCode}
}
