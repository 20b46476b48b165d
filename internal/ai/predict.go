package ai

import "math"

// PredictInput holds the self-reported health metrics used for the rule-based
// risk assessment. Zero values are treated as "not provided".
type PredictInput struct {
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	Systolic      int     `json:"systolic"`
	Diastolic     int     `json:"diastolic"`
	Glucose       int     `json:"glucose"`
	Cholesterol   int     `json:"cholesterol"`
	Weight        float64 `json:"weight"`
	Height        float64 `json:"height"`
	Smoker        bool    `json:"smoker"`
	ActivityLevel string  `json:"activityLevel"`
}

type PredictMetrics struct {
	BMI       float64 `json:"bmi"`
	RiskScore int     `json:"riskScore"`
}

type PredictResult struct {
	RiskLevel       string         `json:"riskLevel"`
	Conditions      []string       `json:"conditions"`
	Recommendations []string       `json:"recommendations"`
	Metrics         PredictMetrics `json:"metrics"`
}

// Predict scores the input with a fixed rule table. This is a screening aid,
// not a diagnosis.
func Predict(in PredictInput) PredictResult {
	bmi := 0.0
	if in.Height > 0 {
		bmi = math.Round(in.Weight/math.Pow(in.Height/100, 2)*10) / 10
	}

	score := 0
	switch {
	case in.Age >= 60:
		score += 2
	case in.Age >= 45:
		score++
	}
	if lower(in.Gender) == "male" && in.Age >= 50 {
		score++
	}
	switch {
	case in.Systolic >= 140 || in.Diastolic >= 90:
		score += 2
	case in.Systolic >= 130 || in.Diastolic >= 85:
		score++
	}
	switch {
	case in.Glucose >= 126:
		score += 2
	case in.Glucose >= 110:
		score++
	}
	switch {
	case in.Cholesterol >= 240:
		score += 2
	case in.Cholesterol >= 200:
		score++
	}
	switch {
	case bmi >= 30:
		score += 2
	case bmi >= 25:
		score++
	}
	if in.Smoker {
		score += 2
	}
	if in.ActivityLevel == "low" {
		score++
	}

	level := "Low"
	switch {
	case score >= 6:
		level = "High"
	case score >= 3:
		level = "Moderate"
	}

	conditions := []string{}
	if in.Systolic >= 130 || in.Diastolic >= 85 {
		conditions = append(conditions, "Hypertension risk")
	}
	if in.Glucose >= 110 {
		conditions = append(conditions, "Diabetes risk")
	}
	if in.Cholesterol >= 200 {
		conditions = append(conditions, "Hypercholesterolemia risk")
	}
	if bmi >= 25 {
		conditions = append(conditions, "Overweight/Obesity risk")
	}

	recommendations := []string{}
	if in.ActivityLevel == "low" {
		recommendations = append(recommendations, "Exercise 30 minutes daily")
	}
	if in.Glucose >= 110 {
		recommendations = append(recommendations, "Limit processed sugar and refined carbs")
	}
	if in.Cholesterol >= 200 {
		recommendations = append(recommendations, "Adopt a heart-healthy diet (more fiber, less saturated fat)")
	}
	if in.Systolic >= 130 || in.Diastolic >= 85 {
		recommendations = append(recommendations, "Monitor blood pressure weekly")
	}
	if bmi >= 25 {
		recommendations = append(recommendations, "Aim for 5-10% weight reduction over 6 months")
	}
	if in.Smoker {
		recommendations = append(recommendations, "Enroll in a smoking cessation program")
	}

	return PredictResult{
		RiskLevel:       level,
		Conditions:      conditions,
		Recommendations: recommendations,
		Metrics:         PredictMetrics{BMI: bmi, RiskScore: score},
	}
}
