package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ajou-menu/internal/domain/entity"

	"github.com/google/uuid"
)

// DiscordNotifier posts the daily menu to Discord via webhook.
type DiscordNotifier struct {
	config     DiscordConfig
	httpClient *http.Client
	limiter    postLimiter
}

// NewDiscordNotifier creates a new DiscordNotifier with the specified configuration.
//
// The notifier is initialized with:
//   - HTTP client with configured timeout
//   - Rate limiter set to 0.5 requests/second with burst of 3
//     (Discord Webhook limit: 30 requests per minute)
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: newPostLimiter(0.5, 3),
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url,omitempty"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	// Discord limits
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	truncationSuffix     = "..."

	discordGreenColor  = 5763719  // #57F287, every source readable
	discordYellowColor = 16705372 // #FEE75C, at least one source failed
)

// buildEmbedPayload wraps the rendered menu in a single embed.
// The embed turns yellow when any source is unavailable so the failure is
// visible at a glance.
func (d *DiscordNotifier) buildEmbedPayload(menu *entity.DailyMenu) DiscordWebhookPayload {
	color := discordGreenColor
	footer := "모든 식당 조회 완료"
	if failed := len(menu.Unavailable()); failed > 0 {
		color = discordYellowColor
		footer = fmt.Sprintf("%d개 식당 조회 실패", failed)
	}

	return DiscordWebhookPayload{
		Embeds: []DiscordEmbed{{
			Title:       truncateText(fmt.Sprintf("아주대 식당 메뉴 (%s)", menu.DateString()), maxTitleLength, truncationSuffix),
			Description: truncateText(menu.RenderedText(), maxDescriptionLength, truncationSuffix),
			URL:         DefaultMenuLinkURL,
			Color:       color,
			Footer:      DiscordEmbedFooter{Text: footer},
			Timestamp:   menu.Date().Format(time.RFC3339),
		}},
	}
}

// sendWebhookRequest performs one webhook POST and classifies the response.
func (d *DiscordNotifier) sendWebhookRequest(ctx context.Context, menu *entity.DailyMenu) error {
	jsonData, err := json.Marshal(d.buildEmbedPayload(menu))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	return classifyResponse("Discord", resp.StatusCode, resp.Header, body)
}

// Notify sends the menu to Discord in a single attempt.
// This method implements the Notifier interface.
func (d *DiscordNotifier) Notify(ctx context.Context, menu *entity.DailyMenu) error {
	requestID := uuid.New().String()
	logger := slog.With(
		slog.String("request_id", requestID),
		slog.String("channel", "discord"),
		slog.String("date", menu.DateString()))

	if err := d.limiter.wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	if err := d.sendWebhookRequest(ctx, menu); err != nil {
		logger.Warn("Discord notification failed",
			slog.Any("error", err),
			slog.Duration("duration", time.Since(start)))
		return err
	}

	logger.Info("Discord notification successful", slog.Duration("duration", time.Since(start)))
	return nil
}
