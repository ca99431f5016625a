package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON attempts to fix common JSON errors from LLM outputs:
// missing or single quotes, unclosed objects, trailing commas, comments
// and surrounding markdown fences.
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human-friendly JSON (Hjson) and returns standard JSON.
// Hjson allows comments, unquoted keys and strings, and optional commas.
func ParseHJSON(hjsonData string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(hjsonData), &result); err != nil {
		return "", fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	return string(jsonBytes), nil
}

// parseStrategies run in order from strictest to most lenient. Each returns
// standard JSON text.
var parseStrategies = []struct {
	name string
	fn   func(string) (string, error)
}{
	{"json", func(s string) (string, error) { return s, nil }},
	{"repair", RepairJSON},
	{"hjson", ParseHJSON},
}

// SmartParse decodes input into target with the first strategy that yields
// JSON target accepts, and returns that JSON text.
func SmartParse(input string, target interface{}) (string, error) {
	var lastErr error
	for _, st := range parseStrategies {
		out, err := st.fn(input)
		if err == nil {
			err = json.Unmarshal([]byte(out), target)
		}
		if err == nil {
			return out, nil
		}
		lastErr = fmt.Errorf("%s: %w", st.name, err)
	}
	return "", fmt.Errorf("SMART_PARSE_FAILED: all parsing strategies failed, last %v", lastErr)
}
