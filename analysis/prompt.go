// Package analysis builds the textual payload for a remote analysis run and
// sends it to one of two interchangeable backends: an SDK-style Bedrock call
// or a generic chat-completion HTTP endpoint. Failures never surface as Go
// errors at this boundary; they are classified into the Failure variant of
// models.AnalysisResult so the dashboard stays usable after any outcome.
package analysis

import (
	"fmt"
	"strings"

	"chart-analyst/models"
)

// Prompt is the two-part payload sent to the analysis backend
type Prompt struct {
	System string
	User   string
}

const systemPrompt = `You are an expert Stock Market Technical Analyst.`

// BuildPrompt serializes an analysis request into the instructional preamble
// plus a CSV rendering of the full price series. No truncation is applied:
// very long series produce proportionally large payloads, bounded only by
// the remote API's input limits.
func BuildPrompt(req models.AnalysisRequest) Prompt {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze the following historical stock data for %s from %s to %s.\n\n",
		req.Ticker, req.Start.Format("2006-01-02"), req.End.Format("2006-01-02"))
	b.WriteString("The data is provided in CSV format with the following columns: Date, Open, High, Low, Close, Volume.\n\n")
	b.WriteString("Focus on:\n")
	b.WriteString("1. Trend Analysis: Identify the primary and secondary trends\n")
	b.WriteString("2. Technical Indicators: Reason about common indicator calculations (SMA, EMA, Bollinger Bands, VWAP)\n")
	b.WriteString("3. Price Patterns: Identify any significant patterns\n")
	b.WriteString("4. Support/Resistance: Note key price levels\n\n")
	b.WriteString("Provide:\n")
	b.WriteString("1. A clear BUY, HOLD, or SELL recommendation\n")
	b.WriteString("2. Your confidence level (High/Medium/Low)\n")
	b.WriteString("3. A concise explanation of your reasoning\n")
	b.WriteString("4. Key risk factors to consider\n\n")
	b.WriteString("Here is the data:\n\n")
	b.WriteString(SeriesCSV(req.Series))

	return Prompt{System: systemPrompt, User: b.String()}
}

// SeriesCSV renders the price series as a comma-separated table with a
// header row and one row per bar
func SeriesCSV(series models.PriceSeries) string {
	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Volume\n")
	for _, bar := range series {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%d\n",
			bar.Date.Format("2006-01-02"),
			bar.Open, bar.High, bar.Low, bar.Close,
			bar.Volume)
	}
	return b.String()
}
