package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	appconfig "chart-analyst/config"
	"chart-analyst/models"
	"chart-analyst/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// bedrockClient defines the interface for Bedrock API calls (for testing)
type bedrockClient interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockAnalyzer invokes Claude models on AWS Bedrock via the SDK, the
// direct-call counterpart of the chat-completion HTTP adapter
type BedrockAnalyzer struct {
	client    bedrockClient
	model     string
	maxTokens int
	logger    *slog.Logger
}

// claudeRequest represents the request format for Claude models via Bedrock
type claudeRequest struct {
	AnthropicVersion string        `json:"anthropic_version"`
	MaxTokens        int           `json:"max_tokens"`
	System           string        `json:"system,omitempty"`
	Messages         []chatMessage `json:"messages"`
}

// claudeResponse represents the response from Claude models
type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// NewBedrockAnalyzer creates a Bedrock backed analyzer
func NewBedrockAnalyzer(ctx context.Context, cfg appconfig.AnalysisConfig, logger *slog.Logger) (*BedrockAnalyzer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return &BedrockAnalyzer{
		client:    bedrockruntime.NewFromConfig(awsCfg),
		model:     cfg.BedrockModelID,
		maxTokens: cfg.BedrockMaxTokens,
		logger:    logger,
	}, nil
}

// newBedrockAnalyzerWithClient creates a BedrockAnalyzer with a custom client (for testing)
func newBedrockAnalyzerWithClient(client bedrockClient, model string, maxTokens int, logger *slog.Logger) *BedrockAnalyzer {
	return &BedrockAnalyzer{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Analyze sends the built payload through Bedrock and classifies every
// failure into the result variant. No retries.
func (a *BedrockAnalyzer) Analyze(ctx context.Context, req models.AnalysisRequest) models.AnalysisResult {
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

func (a *BedrockAnalyzer) analyze(ctx context.Context, req models.AnalysisRequest) models.AnalysisResult {
	prompt := BuildPrompt(req)
	a.logger.Debug("analysis payload built",
		"request_id", req.ID,
		"ticker", req.Ticker,
		"bars", len(req.Series),
		"payload_bytes", len(prompt.User))

	body, err := json.Marshal(claudeRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        a.maxTokens,
		System:           prompt.System,
		Messages: []chatMessage{
			{Role: "user", Content: prompt.User},
		},
	})
	if err != nil {
		return models.Failure(models.ErrKindParse, "failed to encode request body", err.Error())
	}

	a.logger.Debug("dispatching analysis request", "request_id", req.ID, "model", a.model)

	output, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(a.model),
		Body:        body,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		kind := classifyTransportError(err)
		a.logger.Error("analysis request failed", "request_id", req.ID, "kind", kind, "error", err)
		return models.Failure(kind, "failed to invoke model", err.Error())
	}

	a.logger.Debug("analysis response received", "request_id", req.ID, "body_bytes", len(output.Body))

	if len(output.Body) == 0 {
		return models.Failure(models.ErrKindEmptyResponse, "model returned an empty body", "")
	}

	var response claudeResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return models.Failure(models.ErrKindParse, "model response is not valid JSON", string(output.Body))
	}

	if len(response.Content) == 0 {
		return models.Failure(models.ErrKindEmptyResults, "model response contains no content blocks", string(output.Body))
	}

	return models.Success(response.Content[0].Text)
}
