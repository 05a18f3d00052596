package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ajou-menu/internal/domain/entity"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const (
	kakaoMemoPath = "/v2/api/talk/memo/default/send"

	// maxKakaoTextLength is the text template limit of the memo API.
	maxKakaoTextLength = 200

	kakaoButtonTitle = "식단 보기"
)

// KakaoNotifier sends the menu to the token owner's own KakaoTalk chat
// ("send to me" memo API).
//
// The menu is longer than a single text template allows, so it is sent as
// consecutive memos split at line boundaries. Each memo is posted once; the
// first failure stops the sequence.
type KakaoNotifier struct {
	config  KakaoConfig
	client  *resty.Client
	limiter postLimiter
}

// NewKakaoNotifier creates a KakaoNotifier backed by a resty client.
// Resty retries are left at zero so every memo is attempted exactly once.
func NewKakaoNotifier(config KakaoConfig) *KakaoNotifier {
	if config.APIBaseURL == "" {
		config.APIBaseURL = DefaultKakaoAPIBaseURL
	}
	if config.LinkURL == "" {
		config.LinkURL = DefaultMenuLinkURL
	}

	client := resty.New().
		SetBaseURL(config.APIBaseURL).
		SetTimeout(config.Timeout).
		SetRetryCount(0)

	return &KakaoNotifier{
		config:  config,
		client:  client,
		limiter: newPostLimiter(2.0, 5),
	}
}

// kakaoTextTemplate is the "text" message template of the Kakao message API.
type kakaoTextTemplate struct {
	ObjectType  string    `json:"object_type"`
	Text        string    `json:"text"`
	Link        kakaoLink `json:"link"`
	ButtonTitle string    `json:"button_title,omitempty"`
}

type kakaoLink struct {
	WebURL       string `json:"web_url"`
	MobileWebURL string `json:"mobile_web_url"`
}

type kakaoMemoResult struct {
	ResultCode int `json:"result_code"`
}

// buildTemplates splits the rendered menu into memo-sized text templates.
func (k *KakaoNotifier) buildTemplates(menu *entity.DailyMenu) []kakaoTextTemplate {
	chunks := splitText(menu.RenderedText(), maxKakaoTextLength)

	templates := make([]kakaoTextTemplate, 0, len(chunks))
	for _, chunk := range chunks {
		templates = append(templates, kakaoTextTemplate{
			ObjectType: "text",
			Text:       chunk,
			Link: kakaoLink{
				WebURL:       k.config.LinkURL,
				MobileWebURL: k.config.LinkURL,
			},
			ButtonTitle: kakaoButtonTitle,
		})
	}
	return templates
}

// sendMemo posts one template as form field template_object.
func (k *KakaoNotifier) sendMemo(ctx context.Context, tmpl kakaoTextTemplate) error {
	obj, err := json.Marshal(tmpl)
	if err != nil {
		return fmt.Errorf("marshal template object: %w", err)
	}

	var result kakaoMemoResult
	resp, err := k.client.R().
		SetContext(ctx).
		SetAuthToken(k.config.AccessToken).
		SetFormData(map[string]string{"template_object": string(obj)}).
		SetResult(&result).
		Post(kakaoMemoPath)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}

	if err := classifyResponse("Kakao", resp.StatusCode(), resp.Header(), resp.Body()); err != nil {
		return err
	}
	if result.ResultCode != 0 {
		return fmt.Errorf("kakao memo rejected: result_code=%d", result.ResultCode)
	}
	return nil
}

// Notify sends the menu to Kakao.
// This method implements the Notifier interface.
func (k *KakaoNotifier) Notify(ctx context.Context, menu *entity.DailyMenu) error {
	requestID := uuid.New().String()
	logger := slog.With(
		slog.String("request_id", requestID),
		slog.String("channel", "kakao"),
		slog.String("date", menu.DateString()))

	templates := k.buildTemplates(menu)
	start := time.Now()

	for i, tmpl := range templates {
		if err := k.limiter.wait(ctx); err != nil {
			return err
		}
		if err := k.sendMemo(ctx, tmpl); err != nil {
			logger.Warn("Kakao notification failed",
				slog.Int("part", i+1),
				slog.Int("parts", len(templates)),
				slog.Any("error", err))
			return fmt.Errorf("kakao memo %d/%d: %w", i+1, len(templates), err)
		}
	}

	logger.Info("Kakao notification successful",
		slog.Int("parts", len(templates)),
		slog.Duration("duration", time.Since(start)))
	return nil
}
