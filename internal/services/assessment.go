package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"careerlens/career-mentor/internal/models"
)

// MalformedJSONError reports model output that is not syntactically valid
// JSON after fence stripping. Raw keeps the original text for diagnostics.
type MalformedJSONError struct {
	Raw string
	Err error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("model returned malformed JSON: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error {
	return e.Err
}

// SchemaError reports a missing, mistyped, or out-of-range field in
// otherwise valid JSON. Field names the offender ("softSkills.gap",
// "techSkills[1].demand").
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("assessment schema violation at %s: %s", e.Field, e.Reason)
}

// AssessmentParser turns raw model output into a validated Assessment.
type AssessmentParser interface {
	Parse(raw string) (*models.Assessment, error)
}

type assessmentParser struct{}

func NewAssessmentParser() AssessmentParser {
	return &assessmentParser{}
}

// Parse strips incidental code fences, parses the remaining text as JSON,
// and validates every required field. Out-of-range scores are rejected,
// never clamped; a bad reply is a reported failure, not a best-effort
// guess.
func (p *assessmentParser) Parse(raw string) (*models.Assessment, error) {
	cleaned := StripCodeFences(raw)

	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, &MalformedJSONError{Raw: raw, Err: err}
	}

	assessment := &models.Assessment{}

	score, err := scoreField(payload, "matchScore")
	if err != nil {
		return nil, err
	}
	assessment.MatchScore = score

	soft, ok := payload["softSkills"].(map[string]any)
	if !ok {
		return nil, &SchemaError{Field: "softSkills", Reason: "missing or not an object"}
	}
	if assessment.SoftSkills.Match, err = scoreField(soft, "match", "softSkills"); err != nil {
		return nil, err
	}
	if assessment.SoftSkills.Gap, err = scoreField(soft, "gap", "softSkills"); err != nil {
		return nil, err
	}

	techRaw, ok := payload["techSkills"].([]any)
	if !ok {
		return nil, &SchemaError{Field: "techSkills", Reason: "missing or not an array"}
	}
	for i, item := range techRaw {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, &SchemaError{Field: fmt.Sprintf("techSkills[%d]", i), Reason: "not an object"}
		}

		skill := models.TechSkill{}
		name, ok := entry["name"].(string)
		if !ok || strings.TrimSpace(name) == "" {
			return nil, &SchemaError{Field: fmt.Sprintf("techSkills[%d].name", i), Reason: "missing or not a string"}
		}
		skill.Name = name

		prefix := fmt.Sprintf("techSkills[%d]", i)
		if skill.Current, err = scoreField(entry, "current", prefix); err != nil {
			return nil, err
		}
		if skill.Demand, err = scoreField(entry, "demand", prefix); err != nil {
			return nil, err
		}

		assessment.TechSkills = append(assessment.TechSkills, skill)
	}

	if assessment.Recommendations, err = stringListField(payload, "recommendations"); err != nil {
		return nil, err
	}
	if assessment.MissingSkills, err = stringListField(payload, "missingSkills"); err != nil {
		return nil, err
	}

	return assessment, nil
}

// StripCodeFences removes leading/trailing markdown fences the model may
// wrap around a JSON body. It is idempotent: stripping twice equals
// stripping once.
func StripCodeFences(text string) string {
	clean := strings.TrimSpace(text)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")

	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")

	return strings.TrimSpace(clean)
}

// scoreField reads an integer score in [0,100] from a decoded JSON object.
// path, if given, prefixes the field name in error reports.
func scoreField(obj map[string]any, field string, path ...string) (int, error) {
	qualified := field
	if len(path) > 0 {
		qualified = path[0] + "." + field
	}

	value, ok := obj[field]
	if !ok {
		return 0, &SchemaError{Field: qualified, Reason: "missing"}
	}

	num, ok := value.(float64)
	if !ok {
		return 0, &SchemaError{Field: qualified, Reason: "not a number"}
	}

	if num < 0 || num > 100 {
		return 0, &SchemaError{Field: qualified, Reason: fmt.Sprintf("value %v outside [0,100]", num)}
	}

	return int(math.Round(num)), nil
}

func stringListField(obj map[string]any, field string) ([]string, error) {
	value, ok := obj[field]
	if !ok {
		return nil, &SchemaError{Field: field, Reason: "missing"}
	}

	items, ok := value.([]any)
	if !ok {
		return nil, &SchemaError{Field: field, Reason: "not an array"}
	}

	result := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &SchemaError{Field: fmt.Sprintf("%s[%d]", field, i), Reason: "not a string"}
		}
		result = append(result, s)
	}

	return result, nil
}
