// Package ai hands control to the opponent AI when its turn starts. The
// AI runs out of process and answers through the same operations a human
// client uses, so invocation is fire-and-forget.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/battlesync/battlesync-server/internal/engine"
)

// Invocation tells the AI service which match needs a move, carrying the
// match snapshot so the service need not load it again.
type Invocation struct {
	MatchID  string             `json:"matchId"`
	PlayerID string             `json:"playerId"`
	Phase    string             `json:"phase"`
	Match    *engine.MatchState `json:"match,omitempty"`
}

// Invoker notifies the AI service that it holds the turn.
type Invoker interface {
	Invoke(ctx context.Context, inv Invocation) error
}

// Webhook POSTs invocations to an HTTP endpoint.
type Webhook struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhook creates an HTTP invoker.
func NewWebhook(url string, timeout time.Duration, logger *zap.Logger) *Webhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Invoke delivers the invocation. A non-2xx answer is an error; the
// caller decides whether to care.
func (w *Webhook) Invoke(ctx context.Context, inv Invocation) error {
	body, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshal ai invocation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build ai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("invoke ai webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ai webhook returned status %d", resp.StatusCode)
	}

	w.logger.Debug("ai invoked",
		zap.String("match_id", inv.MatchID),
		zap.String("player_id", inv.PlayerID),
	)
	return nil
}

// Noop discards invocations; used when no AI service is configured.
type Noop struct{}

func (Noop) Invoke(ctx context.Context, inv Invocation) error { return nil }
