package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"chart-analyst/models"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// mockBedrockClient implements bedrockClient for testing
type mockBedrockClient struct {
	invokeFunc func(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

func (m *mockBedrockClient) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	return m.invokeFunc(ctx, params, optFns...)
}

func newTestBedrockAnalyzer(client bedrockClient) *BedrockAnalyzer {
	return newBedrockAnalyzerWithClient(client, "anthropic.claude-3-5-sonnet", 1000, testLogger(&bytes.Buffer{}))
}

func TestBedrockAnalyze_Success(t *testing.T) {
	var gotRequest claudeRequest
	client := &mockBedrockClient{
		invokeFunc: func(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
			if err := json.Unmarshal(params.Body, &gotRequest); err != nil {
				t.Fatalf("request body did not parse: %v", err)
			}
			return &bedrockruntime.InvokeModelOutput{
				Body: []byte(`{"content":[{"type":"text","text":"HOLD, Medium confidence"}],"stop_reason":"end_turn"}`),
			}, nil
		},
	}

	result := newTestBedrockAnalyzer(client).Analyze(context.Background(), testRequest(5))

	if !result.OK {
		t.Fatalf("unexpected failure: %+v", result)
	}
	if result.Text != "HOLD, Medium confidence" {
		t.Errorf("Text = %q, want the first content block", result.Text)
	}
	if gotRequest.MaxTokens != 1000 {
		t.Errorf("max_tokens = %d, want 1000", gotRequest.MaxTokens)
	}
	if !strings.Contains(gotRequest.System, "Technical Analyst") {
		t.Error("system prompt missing analyst persona")
	}
	if len(gotRequest.Messages) != 1 || gotRequest.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v, want a single user message", gotRequest.Messages)
	}
}

func TestBedrockAnalyze_FailureModes(t *testing.T) {
	tests := []struct {
		name     string
		body     []byte
		err      error
		wantKind models.ErrorKind
	}{
		{"invoke error", nil, errors.New("connection reset"), models.ErrKindNetwork},
		{"timeout", nil, context.DeadlineExceeded, models.ErrKindTimeout},
		{"empty body", []byte(""), nil, models.ErrKindEmptyResponse},
		{"malformed JSON", []byte(`{"content":`), nil, models.ErrKindParse},
		{"no content blocks", []byte(`{"content":[]}`), nil, models.ErrKindEmptyResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockBedrockClient{
				invokeFunc: func(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &bedrockruntime.InvokeModelOutput{Body: tt.body}, nil
				},
			}

			result := newTestBedrockAnalyzer(client).Analyze(context.Background(), testRequest(3))

			if result.OK {
				t.Fatal("expected a failure")
			}
			if result.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", result.Kind, tt.wantKind)
			}
		})
	}
}
