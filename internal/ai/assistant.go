package ai

import (
	"context"
	"log/slog"
	"strings"
)

const assistantSystemPrompt = "You are MedPass AI Assistant. Be concise, friendly, and medically cautious. " +
	"If asked, summarize user's records but never invent data."

// DetectLanguage guesses the language of a message from its script. Latin
// text with accents is treated as a crude Spanish hint.
func DetectLanguage(text string) string {
	for _, r := range text {
		switch {
		case r >= 0x0900 && r <= 0x097F:
			return "hi" // Devanagari
		case r >= 0x0C00 && r <= 0x0C7F:
			return "te" // Telugu
		case r >= 0x0B80 && r <= 0x0BFF:
			return "ta" // Tamil
		case r >= 0x00C0 && r <= 0x017F:
			return "es"
		}
	}
	return "en"
}

// Assistant answers user questions, via the chat client when configured and a
// rule-based fallback otherwise.
type Assistant struct {
	client     ChatClient
	configured bool
	log        *slog.Logger
}

func NewAssistant(client ChatClient, configured bool, logger *slog.Logger) *Assistant {
	return &Assistant{client: client, configured: configured, log: logger}
}

// Reply generates an assistant response. Errors from the upstream model fall
// back to the rule-based reply rather than failing the chat.
func (a *Assistant) Reply(ctx context.Context, message, language string) string {
	if !a.configured || a.client == nil {
		return fallbackReply(message)
	}
	content, err := a.client.Complete(ctx, assistantSystemPrompt, message, 0)
	if err != nil || content == "" {
		a.log.Warn("ai.assistant.fallback", "error", err)
		return fallbackReply(message)
	}
	return content
}

func fallbackReply(message string) string {
	lc := lower(message)
	var b strings.Builder
	b.WriteString("I am here to help. For personalized care, consult a certified doctor. ")
	if strings.Contains(lc, "bp") || strings.Contains(lc, "blood pressure") {
		b.WriteString("Monitor your blood pressure regularly and reduce sodium intake. ")
	}
	if strings.Contains(lc, "glucose") || strings.Contains(lc, "sugar") {
		b.WriteString("Limit processed sugar and stay active 30 minutes daily. ")
	}
	if strings.Contains(lc, "cholesterol") {
		b.WriteString("Adopt a heart-healthy diet rich in fiber and healthy fats. ")
	}
	if strings.Contains(lc, "headache") {
		b.WriteString("Stay hydrated, rest, and seek care if persistent or severe. ")
	}
	return strings.TrimSpace(b.String())
}
