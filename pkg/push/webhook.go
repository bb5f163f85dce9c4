package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	pkgerrors "EmaQuest/pkg/errors"
)

// WebhookClient posts notifications to a relay endpoint (an Expo/FCM bridge
// run next to the study). The relay answers with the tokens it could not
// deliver to.
type WebhookClient struct {
	endpoint  string
	authToken string
	http      *http.Client
}

type webhookResponse struct {
	InvalidTokens []string `json:"invalid_tokens"`
}

func NewWebhookClient(endpoint, authToken string) (*WebhookClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("push endpoint is empty")
	}
	return &WebhookClient{
		endpoint:  endpoint,
		authToken: authToken,
		http:      &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (c *WebhookClient) Send(ctx context.Context, n Notification) ([]string, error) {
	if len(n.Tokens) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: provider returned %d", pkgerrors.PushProviderFailure, resp.StatusCode)
	}

	var parsed webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		// Delivery succeeded; an unreadable body only loses the prune hint.
		return nil, nil
	}
	return parsed.InvalidTokens, nil
}
