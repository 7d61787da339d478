package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/leave-planner-api/internal/planner"
	appErrors "github.com/noah-isme/leave-planner-api/pkg/errors"
)

const narratorSystemPrompt = "You are an academic advisor helping a student plan time off. " +
	"Using only the attendance status and vacation options provided, recommend one option, " +
	"explain the trade-off in two or three short paragraphs and name any subject that needs care. " +
	"Never invent dates or percentages."

// NarratorConfig configures the chat completions endpoint.
type NarratorConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NarratorService turns the planner summary into prose through an
// OpenAI-compatible chat completions API. It never fails a request: any
// upstream problem yields a deterministic fallback text.
type NarratorService struct {
	config  NarratorConfig
	client  *http.Client
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNarratorService constructs a narrator.
func NewNarratorService(config NarratorConfig, client *http.Client, metrics *MetricsService, logger *zap.Logger) *NarratorService {
	if config.Timeout <= 0 {
		config.Timeout = 20 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NarratorService{config: config, client: client, metrics: metrics, logger: logger}
}

// Enabled reports whether remote narration is configured.
func (s *NarratorService) Enabled() bool {
	return s != nil && s.config.Enabled && s.config.BaseURL != "" && s.config.APIKey != ""
}

// Narrate returns advice for the ranked windows and whether the fallback was used.
func (s *NarratorService) Narrate(ctx context.Context, summary string, windows []planner.Window) (string, bool) {
	if !s.Enabled() {
		return FallbackNarration(windows), true
	}

	text, err := s.complete(ctx, summary)
	if err != nil {
		s.logger.Warn("narration failed, using fallback", zap.Error(err))
		s.metrics.RecordNarration(true)
		return FallbackNarration(windows), true
	}
	s.metrics.RecordNarration(false)
	return text, false
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *NarratorService) complete(ctx context.Context, summary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: narratorSystemPrompt},
			{Role: "user", Content: summary},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	res, err := s.client.Do(req)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrNarratorUnavailable.Code, appErrors.ErrNarratorUnavailable.Status, "narrator request failed")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", appErrors.Clone(appErrors.ErrNarratorUnavailable, fmt.Sprintf("narrator returned %s", res.Status))
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode narrator response: %w", err)
	}
	if len(decoded.Choices) == 0 || strings.TrimSpace(decoded.Choices[0].Message.Content) == "" {
		return "", appErrors.Clone(appErrors.ErrNarratorUnavailable, "narrator returned no content")
	}
	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}

// FallbackNarration is the deterministic advice used when no narrator is available.
func FallbackNarration(windows []planner.Window) string {
	if len(windows) == 0 {
		return "No safe leave window was found in the search horizon. Attending upcoming lectures will grow your buffer."
	}
	best := windows[0]
	return fmt.Sprintf("Best option: %s to %s, %d leave days covering %d days in total. Every subject stays at or above its minimum attendance.",
		planner.DateKey(best.Start), planner.DateKey(best.End), best.LeaveDays(), best.TotalDays())
}
