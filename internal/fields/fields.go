// Package fields derives structured record fields from extracted document
// text using an ordered table of regular-expression rules. The heuristics are
// deliberately best-effort; precedence is fixed and testable in isolation.
package fields

import (
	"regexp"
	"strings"
)

// Fields is the structured result of entity extraction. All values default
// to the empty string when no rule matches.
type Fields struct {
	PatientName string `json:"patientName"`
	Doctor      string `json:"doctor"`
	Hospital    string `json:"hospital"`
	Date        string `json:"date"`
	Diagnosis   string `json:"diagnosis"`
	Medicines   string `json:"medicines"`
	FollowUp    string `json:"followUp"`
	RawText     string `json:"rawText"`
}

// rule binds a field name to its pattern and the submatch index to capture.
// Group 0 captures the whole match (hospital, doctor, date); labeled rules
// capture the text following the label.
type rule struct {
	name  string
	re    *regexp.Regexp
	group int
}

// Evaluated in order; the first match per field wins. The doctor rule is
// intentionally case-sensitive: it keys on the capitalized name after "Dr".
var rules = []rule{
	{"date", regexp.MustCompile(`(\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b|\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b)`), 1},
	{"doctor", regexp.MustCompile(`Dr\.?\s+[A-Z][a-zA-Z]+\s?[A-Z]?[a-z]*`), 0},
	{"hospital", regexp.MustCompile(`(?i)Hospital|Clinic|Medical Center|Med Centre`), 0},
	{"diagnosis", regexp.MustCompile(`(?i)Diagnosis\s*[:\-]\s*([^\n.]+\.?)`), 1},
	{"medicines", regexp.MustCompile(`(?i)(?:Rx|Prescription|Medicines?)\s*[:\-]?\s*([^\n.]+\.?)`), 1},
	{"followUp", regexp.MustCompile(`(?i)(?:Follow\s?up|Next Visit|Review)\s*[:\-]?\s*([^\n.]+\.?)`), 1},
}

var reSpaces = regexp.MustCompile(` +`)

// Preprocess collapses tabs to spaces, squeezes space runs, and trims.
func Preprocess(text string) string {
	cleaned := strings.ReplaceAll(text, "\t", " ")
	cleaned = reSpaces.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// Extract runs the rule table over the cleaned text.
//
// PatientName stays empty: no extraction rule exists for it and that gap is
// part of the documented behavior, not an oversight to fix here.
func Extract(text string) Fields {
	cleaned := Preprocess(text)
	out := Fields{RawText: cleaned}

	for _, r := range rules {
		m := r.re.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}
		val := strings.TrimSpace(m[r.group])
		switch r.name {
		case "date":
			out.Date = val
		case "doctor":
			out.Doctor = val
		case "hospital":
			out.Hospital = val
		case "diagnosis":
			out.Diagnosis = val
		case "medicines":
			out.Medicines = val
		case "followUp":
			out.FollowUp = val
		}
	}
	return out
}
