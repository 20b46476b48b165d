package ai

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredict_HighRisk(t *testing.T) {
	res := Predict(PredictInput{
		Age:           65,
		Gender:        "male",
		Systolic:      150,
		Diastolic:     95,
		Glucose:       130,
		Cholesterol:   250,
		Weight:        95,
		Height:        170,
		Smoker:        true,
		ActivityLevel: "low",
	})
	assert.Equal(t, "High", res.RiskLevel)
	// age 2 + male>=50 1 + bp 2 + glucose 2 + chol 2 + bmi(32.9) 2 + smoker 2 + low activity 1
	assert.Equal(t, 14, res.Metrics.RiskScore)
	assert.InDelta(t, 32.9, res.Metrics.BMI, 0.001)
	assert.Contains(t, res.Conditions, "Hypertension risk")
	assert.Contains(t, res.Conditions, "Diabetes risk")
	assert.Contains(t, res.Conditions, "Hypercholesterolemia risk")
	assert.Contains(t, res.Conditions, "Overweight/Obesity risk")
	assert.Contains(t, res.Recommendations, "Enroll in a smoking cessation program")
}

func TestPredict_LowRisk(t *testing.T) {
	res := Predict(PredictInput{
		Age:           30,
		Gender:        "female",
		Systolic:      118,
		Diastolic:     76,
		Glucose:       90,
		Cholesterol:   170,
		Weight:        60,
		Height:        170,
		ActivityLevel: "high",
	})
	assert.Equal(t, "Low", res.RiskLevel)
	assert.Zero(t, res.Metrics.RiskScore)
	assert.Empty(t, res.Conditions)
	assert.Empty(t, res.Recommendations)
}

func TestPredict_BoundaryThresholds(t *testing.T) {
	// Exactly moderate band: systolic 130 (+1), glucose 110 (+1), cholesterol 200 (+1).
	res := Predict(PredictInput{Age: 20, Systolic: 130, Glucose: 110, Cholesterol: 200, ActivityLevel: "moderate"})
	assert.Equal(t, "Moderate", res.RiskLevel)
	assert.Equal(t, 3, res.Metrics.RiskScore)
}

func TestPredict_ZeroHeightSkipsBMI(t *testing.T) {
	res := Predict(PredictInput{Weight: 80})
	assert.Zero(t, res.Metrics.BMI)
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]string{
		"how is my blood pressure": "en",
		"मेरा रक्तचाप कैसा है":     "hi",
		"నా ఆరోగ్యం ఎలా ఉంది":      "te",
		"என் உடல்நிலை எப்படி":      "ta",
		"¿cómo está mi presión?":   "es",
	}
	for text, want := range cases {
		assert.Equal(t, want, DetectLanguage(text), text)
	}
}

type stubChat struct {
	content string
	err     error
}

func (s *stubChat) Complete(context.Context, string, string, float32) (string, error) {
	return s.content, s.err
}

func TestAssistant_FallbackRules(t *testing.T) {
	a := NewAssistant(nil, false, slog.Default())
	reply := a.Reply(context.Background(), "my BP and sugar feel high", "en")
	assert.Contains(t, reply, "blood pressure")
	assert.Contains(t, reply, "processed sugar")

	plain := a.Reply(context.Background(), "hello", "en")
	assert.Equal(t, "I am here to help. For personalized care, consult a certified doctor.", plain)
}

func TestAssistant_ModelErrorFallsBack(t *testing.T) {
	a := NewAssistant(&stubChat{err: errors.New("upstream down")}, true, slog.Default())
	reply := a.Reply(context.Background(), "cholesterol advice", "en")
	assert.Contains(t, reply, "heart-healthy diet")
}

func TestAssistant_UsesModelWhenConfigured(t *testing.T) {
	a := NewAssistant(&stubChat{content: "model answer"}, true, slog.Default())
	assert.Equal(t, "model answer", a.Reply(context.Background(), "hi", "en"))
}

func TestSummarizer_Heuristic(t *testing.T) {
	s := NewSummarizer(nil, false, slog.Default())
	sum := s.Summarize(context.Background(), "High blood pressure and glucose readings, cholesterol 240")
	assert.Contains(t, sum.Trends, "Blood pressure noted in records")
	assert.Contains(t, sum.Trends, "Glucose-related entries detected")
	assert.Contains(t, sum.Trends, "Cholesterol values mentioned")
	assert.Contains(t, sum.Alerts, "Potential elevated metrics present")
	assert.Len(t, sum.Recommendations, 3)
}

func TestSummarizer_ParsesModelJSON(t *testing.T) {
	s := NewSummarizer(&stubChat{content: `{"overview":"ok","trends":["t"],"alerts":[],"recommendations":["r"]}`}, true, slog.Default())
	sum := s.Summarize(context.Background(), "text")
	assert.Equal(t, "ok", sum.Overview)
	assert.Equal(t, []string{"t"}, sum.Trends)
	assert.NotNil(t, sum.Alerts)
}

func TestSummarizer_PlainTextBecomesOverview(t *testing.T) {
	s := NewSummarizer(&stubChat{content: "just prose, not json"}, true, slog.Default())
	sum := s.Summarize(context.Background(), "text")
	assert.Equal(t, "just prose, not json", sum.Overview)
	assert.Empty(t, sum.Trends)
}

func TestEmptySummary(t *testing.T) {
	sum := EmptySummary()
	assert.Contains(t, sum.Overview, "No medical data found")
	assert.Equal(t, []string{"Upload medical records to enable analysis"}, sum.Recommendations)
}
