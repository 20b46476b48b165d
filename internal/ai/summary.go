package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
)

const summaryInputMax = 12000

const summarySystemPrompt = "Summarize the following medical record text into concise sections: " +
	"overview, trends (array), alerts (array), recommendations (array). Keep it factual and non-diagnostic."

// Summary is the structured output of record analysis.
type Summary struct {
	Overview        string   `json:"overview"`
	Trends          []string `json:"trends"`
	Alerts          []string `json:"alerts"`
	Recommendations []string `json:"recommendations"`
}

// EmptySummary is returned when the user has no records to analyze.
func EmptySummary() Summary {
	return Summary{
		Overview:        "No medical data found. Please upload your records first.",
		Trends:          []string{},
		Alerts:          []string{},
		Recommendations: []string{"Upload medical records to enable analysis"},
	}
}

// Summarizer turns the text of a user's records into a Summary, via the chat
// client when one is configured and a keyword heuristic otherwise.
type Summarizer struct {
	client     ChatClient
	configured bool
	log        *slog.Logger
}

func NewSummarizer(client ChatClient, configured bool, logger *slog.Logger) *Summarizer {
	return &Summarizer{client: client, configured: configured, log: logger}
}

func (s *Summarizer) Summarize(ctx context.Context, text string) Summary {
	if !s.configured || s.client == nil {
		return heuristicSummary(text)
	}
	if len(text) > summaryInputMax {
		text = text[:summaryInputMax]
	}
	content, err := s.client.Complete(ctx, summarySystemPrompt, text, 0.2)
	if err != nil {
		s.log.Warn("ai.summary.fallback", "error", err)
		return heuristicSummary(text)
	}
	return parseSummaryContent(content)
}

// parseSummaryContent tries strict JSON first and otherwise uses the raw
// completion text as the overview.
func parseSummaryContent(content string) Summary {
	var parsed Summary
	if err := json.Unmarshal([]byte(content), &parsed); err == nil {
		return normalizeSummary(parsed)
	}
	overview := content
	if len(overview) > 400 {
		overview = overview[:400]
	}
	return normalizeSummary(Summary{Overview: overview})
}

func normalizeSummary(s Summary) Summary {
	s.Overview = strings.TrimSpace(s.Overview)
	if s.Overview == "" {
		s.Overview = "Summary generated."
	}
	if s.Trends == nil {
		s.Trends = []string{}
	}
	if s.Alerts == nil {
		s.Alerts = []string{}
	}
	if s.Recommendations == nil {
		s.Recommendations = []string{}
	}
	return s
}

func heuristicSummary(text string) Summary {
	lc := lower(text)
	trends := []string{}
	if strings.Contains(lc, "bp") || strings.Contains(lc, "blood pressure") {
		trends = append(trends, "Blood pressure noted in records")
	}
	if strings.Contains(lc, "glucose") || strings.Contains(lc, "sugar") {
		trends = append(trends, "Glucose-related entries detected")
	}
	if strings.Contains(lc, "cholesterol") {
		trends = append(trends, "Cholesterol values mentioned")
	}

	alerts := []string{}
	if strings.Contains(lc, "high") &&
		(strings.Contains(lc, "bp") || strings.Contains(lc, "glucose") || strings.Contains(lc, "cholesterol")) {
		alerts = append(alerts, "Potential elevated metrics present")
	}

	return Summary{
		Overview: "Automated summary based on your uploaded records. Verify with your physician.",
		Trends:   trends,
		Alerts:   alerts,
		Recommendations: []string{
			"Maintain regular exercise (30 mins daily)",
			"Balanced diet with reduced processed sugar",
			"Stay hydrated",
		},
	}
}

func lower(s string) string { return strings.ToLower(s) }
