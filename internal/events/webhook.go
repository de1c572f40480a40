package events

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
)

// SignatureHeader carries the HMAC-SHA256 of the request body when a
// secret is configured.
const SignatureHeader = "X-Smartplan-Signature"

// WebhookConfig configures a WebhookSink.
type WebhookConfig struct {
	URL    string
	Secret string
	// MaxAttempts includes the first attempt.
	MaxAttempts  int
	InitialDelay time.Duration
	// Timeout bounds one delivery including retries.
	Timeout time.Duration
	// DeadLetter receives events whose retries are exhausted. Optional.
	DeadLetter *DeadLetterStore
}

// DefaultWebhookConfig returns the delivery defaults for url.
func DefaultWebhookConfig(url string) WebhookConfig {
	return WebhookConfig{
		URL:          url,
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		Timeout:      30 * time.Second,
	}
}

// WebhookSink posts events as JSON to an HTTP endpoint.
type WebhookSink struct {
	cfg      WebhookConfig
	client   *http.Client
	retryCfg retry.Config
}

// Payload is the JSON body sent to the webhook.
type Payload struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Data      Event     `json:"data"`
}

// NewWebhookSink creates a sink for cfg. A nil client uses a client with a
// 10 second timeout per attempt.
func NewWebhookSink(cfg WebhookConfig, client *http.Client) *WebhookSink {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultWebhookConfig(cfg.URL).Timeout
	}
	return &WebhookSink{
		cfg:    cfg,
		client: client,
		retryCfg: retry.Config{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  cfg.InitialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

func (s *WebhookSink) Name() string { return "webhook" }

// Deliver posts e, retrying with exponential backoff. When all attempts fail
// the event goes to the dead letter store, if any, and the last error is
// returned.
func (s *WebhookSink) Deliver(ctx context.Context, e Event) error {
	body, err := json.Marshal(Payload{EventType: e.Type, Timestamp: e.Timestamp, Data: e})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	r := retry.New[struct{}](s.retryCfg)
	t := timeout.New[struct{}](timeout.Config{DefaultTimeout: s.cfg.Timeout})

	_, err = t.Execute(ctx, s.cfg.Timeout, func(ctx context.Context) (struct{}, error) {
		return r.Do(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.send(ctx, body)
		})
	})
	if err == nil {
		return nil
	}

	if s.cfg.DeadLetter != nil {
		dl := DeadLetter{
			Timestamp: time.Now().UTC(),
			URL:       s.cfg.URL,
			EventID:   e.ID,
			EventType: e.Type,
			Payload:   string(body),
			Error:     err.Error(),
			Attempts:  s.cfg.MaxAttempts,
		}
		if dlErr := s.cfg.DeadLetter.Append(dl); dlErr != nil {
			return fmt.Errorf("deliver webhook: %w (dead letter: %v)", err, dlErr)
		}
	}
	return fmt.Errorf("deliver webhook: %w", err)
}

func (s *WebhookSink) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Smartplan-Webhook/1.0")
	if s.cfg.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(body, s.cfg.Secret))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign computes the signature header value for payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
