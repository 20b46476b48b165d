package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/medpass-app/medpass/constants"
	"github.com/medpass-app/medpass/internal/common"
)

// structuredRecordSchema validates client-supplied structured records before
// they enter the encrypted store. The recordType enum is injected from the
// category table so the two cannot drift.
const structuredRecordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["fileName", "recordType"],
  "properties": {
    "fileName":   {"type": "string", "minLength": 1},
    "recordType": {"type": "string", "enum": %s},
    "summary":    {"type": "string"},
    "fields": {
      "type": "object",
      "properties": {
        "patientName": {"type": "string"},
        "doctor":      {"type": "string"},
        "hospital":    {"type": "string"},
        "date":        {"type": "string"},
        "diagnosis":   {"type": "string"},
        "medicines":   {"type": "string"},
        "followUp":    {"type": "string"},
        "rawText":     {"type": "string"}
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

var compiledRecordSchema = jsonschema.MustCompileString("record.json", renderRecordSchema())

func renderRecordSchema() string {
	enum, err := json.Marshal(constants.AsStringSlice())
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf(structuredRecordSchema, enum)
}

// ValidateStructuredRecord checks raw JSON against the structured record
// schema and reports violations as invalid-input errors.
func ValidateStructuredRecord(raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return common.WrapError(common.ErrInvalidInput, fmt.Sprintf("parse record JSON: %v", err))
	}
	if err := compiledRecordSchema.Validate(v); err != nil {
		msg := err.Error()
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			msg = flattenValidationError(ve)
		}
		return common.WrapError(common.ErrInvalidInput, msg)
	}
	return nil
}

func flattenValidationError(ve *jsonschema.ValidationError) string {
	leaves := ve.BasicOutput().Errors
	var parts []string
	for _, l := range leaves {
		if l.Error == "" {
			continue
		}
		loc := l.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", loc, l.Error))
	}
	if len(parts) == 0 {
		return ve.Error()
	}
	return strings.Join(parts, "; ")
}
