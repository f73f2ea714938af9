package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"chart-analyst/config"
	"chart-analyst/models"
	"chart-analyst/observability"
)

// ChatCompletionAnalyzer talks to any OpenAI-compatible chat-completion
// endpoint over plain HTTP with bearer-token authorization
type ChatCompletionAnalyzer struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewChatCompletionAnalyzer creates a chat-completion backed analyzer. The
// logger is injected per-instance so tests can capture output without
// global state.
func NewChatCompletionAnalyzer(cfg config.AnalysisConfig, logger *slog.Logger) (*ChatCompletionAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ANALYSIS_API_KEY is required")
	}

	return &ChatCompletionAnalyzer{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		logger:      logger,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// chatResponse keeps choices raw so a missing field is distinguishable from
// an empty list during validation
type chatResponse struct {
	Choices json.RawMessage `json:"choices"`
}

type chatChoice struct {
	Message *struct {
		Content *string `json:"content"`
	} `json:"message"`
}

// Analyze sends the built payload to the configured endpoint and validates
// the response in a fixed order, each stage a distinct failure kind. No
// retries: every failure is surfaced once with enough detail to diagnose
// without re-invoking the remote call.
func (a *ChatCompletionAnalyzer) Analyze(ctx context.Context, req models.AnalysisRequest) models.AnalysisResult {
	metrics := observability.GetMetrics()
	metrics.RecordAnalysisRequest(req.Ticker)
	timer := metrics.NewTimer()

	result := a.analyze(ctx, req)

	if result.OK {
		timer.ObserveAnalysis(req.Ticker, "success")
	} else {
		timer.ObserveAnalysis(req.Ticker, "failure")
		metrics.RecordAnalysisError(req.Ticker, string(result.Kind))
	}
	return result
}

func (a *ChatCompletionAnalyzer) analyze(ctx context.Context, req models.AnalysisRequest) models.AnalysisResult {
	prompt := BuildPrompt(req)
	a.logger.Debug("analysis payload built",
		"request_id", req.ID,
		"ticker", req.Ticker,
		"bars", len(req.Series),
		"payload_bytes", len(prompt.User))

	body, err := json.Marshal(chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
	if err != nil {
		return models.Failure(models.ErrKindParse, "failed to encode request body", err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(body))
	if err != nil {
		return models.Failure(models.ErrKindNetwork, "failed to build request", err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	a.logger.Debug("dispatching analysis request",
		"request_id", req.ID,
		"url", a.baseURL,
		"model", a.model,
		"authorization", observability.RedactSecret(a.apiKey))

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		kind := classifyTransportError(err)
		a.logger.Error("analysis request failed", "request_id", req.ID, "kind", kind, "error", err)
		return models.Failure(kind, "analysis endpoint unreachable", err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Failure(models.ErrKindNetwork, "failed to read response body", err.Error())
	}

	a.logger.Debug("analysis response received",
		"request_id", req.ID,
		"status", resp.StatusCode,
		"body_bytes", len(raw))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Failure(models.ErrKindHTTP,
			fmt.Sprintf("analysis endpoint returned HTTP %d", resp.StatusCode),
			string(raw))
	}

	return parseChatResponse(raw)
}

// parseChatResponse runs the ordered validation pipeline over a 2xx body
func parseChatResponse(raw []byte) models.AnalysisResult {
	if len(bytes.TrimSpace(raw)) == 0 {
		return models.Failure(models.ErrKindEmptyResponse, "analysis endpoint returned an empty body", "")
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return models.Failure(models.ErrKindParse, "analysis response is not valid JSON", string(raw))
	}

	if parsed.Choices == nil {
		return models.Failure(models.ErrKindMissingField, "analysis response has no choices field", string(raw))
	}

	var choices []chatChoice
	if err := json.Unmarshal(parsed.Choices, &choices); err != nil {
		return models.Failure(models.ErrKindParse, "choices field has unexpected shape", string(raw))
	}
	if len(choices) == 0 {
		return models.Failure(models.ErrKindEmptyResults, "analysis response contains no choices", string(raw))
	}

	first := choices[0]
	if first.Message == nil || first.Message.Content == nil {
		return models.Failure(models.ErrKindMissingField, "analysis response is missing message content", string(raw))
	}

	return models.Success(*first.Message.Content)
}
