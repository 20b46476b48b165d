package constants

import (
	"regexp"
	"strings"
)

// RecordType is the category assigned to an ingested health record.
type RecordType string

const (
	Prescription RecordType = "Prescription"
	Report       RecordType = "Report"
	Scan         RecordType = "Scan"
	Other        RecordType = "Other"
)

var allRecordTypes = []RecordType{
	Prescription,
	Report,
	Scan,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allRecordTypes))
	for i, rt := range allRecordTypes {
		result[i] = string(rt)
	}
	return result
}

var (
	rePrescriptionText = regexp.MustCompile(`rx|prescrip`)
	reReportText       = regexp.MustCompile(`report|result`)
	reScanText         = regexp.MustCompile(`mri|ct|x-?ray|ultra`)
)

// Categorize assigns a RecordType from the file name and extracted text.
// The file name is checked before the text content; first match wins in
// Prescription > Report > Scan priority order.
func Categorize(fileName, text string) RecordType {
	name := strings.ToLower(fileName)
	t := strings.ToLower(text)

	switch {
	case strings.Contains(name, "rx") || strings.Contains(name, "prescrip") || rePrescriptionText.MatchString(t):
		return Prescription
	case strings.Contains(name, "report") || reReportText.MatchString(t):
		return Report
	case strings.Contains(name, "scan") || reScanText.MatchString(t):
		return Scan
	default:
		return Other
	}
}
