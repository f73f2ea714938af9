package analysis

import (
	"context"
	"errors"
	"net"
	"net/url"

	"chart-analyst/models"
)

// Analyzer is the shared contract of both remote analysis backends. A nil
// error never accompanies a Failure result; classification happens inside
// the adapter so callers only inspect the result variant.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) models.AnalysisResult
}

// Compile-time interface verification
var _ Analyzer = (*ChatCompletionAnalyzer)(nil)
var _ Analyzer = (*BedrockAnalyzer)(nil)

// classifyTransportError separates timeouts from other network-level
// failures so they report as distinct kinds
func classifyTransportError(err error) models.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrKindTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return models.ErrKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.ErrKindTimeout
	}
	return models.ErrKindNetwork
}
