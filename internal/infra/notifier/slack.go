package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ajou-menu/internal/domain/entity"

	"github.com/google/uuid"
)

// SlackNotifier posts the daily menu to Slack via Incoming Webhook.
type SlackNotifier struct {
	config     SlackConfig
	httpClient *http.Client
	limiter    postLimiter
}

// NewSlackNotifier creates a new SlackNotifier with the specified configuration.
//
// The notifier is initialized with:
//   - HTTP client with configured timeout
//   - Rate limiter set to 1 request/second with burst of 1
//     (Slack Webhook limit: 1 message per second)
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: newPostLimiter(1.0, 1),
	}
}

// SlackWebhookPayload represents the JSON payload sent to Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`   // Fallback text (required)
	Blocks []SlackBlock `json:"blocks"` // Rich formatting blocks
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`               // "header", "section", "context"
	Text     *SlackTextObject  `json:"text,omitempty"`     // Text content (for header and section)
	Elements []SlackTextObject `json:"elements,omitempty"` // Elements (for context)
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"`
}

const (
	// Slack Block Kit limits
	maxHeaderTextLength  = 150
	maxSectionTextLength = 3000
	maxSlackBlocks       = 50

	slackTruncationSuffix = "..."
)

// buildBlockKitPayload lays out a menu as Block Kit blocks.
//
// The payload includes:
//   - Text: Fallback text used in push notifications
//   - Header Block: Title with the menu date
//   - Section Blocks: The rendered menu split at line boundaries
//   - Context Block: Sources that could not be read, only when there are any
func (s *SlackNotifier) buildBlockKitPayload(menu *entity.DailyMenu) SlackWebhookPayload {
	title := fmt.Sprintf("아주대 식당 메뉴 (%s)", menu.DateString())

	blocks := []SlackBlock{{
		Type: "header",
		Text: &SlackTextObject{
			Type: "plain_text",
			Text: truncateText(title, maxHeaderTextLength, slackTruncationSuffix),
		},
	}}

	for _, chunk := range splitText(menu.RenderedText(), maxSectionTextLength) {
		if len(blocks) == maxSlackBlocks-1 {
			break
		}
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackTextObject{Type: "plain_text", Text: chunk},
		})
	}

	if failed := menu.Unavailable(); len(failed) > 0 {
		labels := make([]string, 0, len(failed))
		for _, src := range failed {
			labels = append(labels, src.Label())
		}
		blocks = append(blocks, SlackBlock{
			Type: "context",
			Elements: []SlackTextObject{{
				Type: "mrkdwn",
				Text: "조회 실패: " + strings.Join(labels, ", "),
			}},
		})
	}

	return SlackWebhookPayload{
		Text:   title,
		Blocks: blocks,
	}
}

// sendWebhookRequest performs one webhook POST.
//
// Error types:
//   - 429: RateLimitError with the retry hint
//   - 4xx (non-429): ClientError
//   - 5xx: ServerError
//   - Network error: wrapped transport error
func (s *SlackNotifier) sendWebhookRequest(ctx context.Context, menu *entity.DailyMenu) error {
	jsonData, err := json.Marshal(s.buildBlockKitPayload(menu))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	return classifyResponse("Slack", resp.StatusCode, resp.Header, body)
}

// Notify sends the menu to Slack in a single attempt.
// This method implements the Notifier interface.
func (s *SlackNotifier) Notify(ctx context.Context, menu *entity.DailyMenu) error {
	requestID := uuid.New().String()
	logger := slog.With(
		slog.String("request_id", requestID),
		slog.String("channel", "slack"),
		slog.String("date", menu.DateString()))

	if err := s.limiter.wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	if err := s.sendWebhookRequest(ctx, menu); err != nil {
		logger.Warn("Slack notification failed",
			slog.Any("error", err),
			slog.Duration("duration", time.Since(start)))
		return err
	}

	logger.Info("Slack notification successful", slog.Duration("duration", time.Since(start)))
	return nil
}
