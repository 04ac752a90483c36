package analyses

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"contract-backend/internal/contracts"
)

// ErrModelOutput marks any model invocation or output failure. Callers treat
// it as the trigger for the fallback result.
var ErrModelOutput = errors.New("model output invalid")

// ParseAnalysis decodes untrusted model output into an AnalysisResult.
// It first attempts a strict decode of the whole response; on failure it
// extracts the first balanced JSON object substring and tries exactly once
// more. Any further failure returns an error wrapping ErrModelOutput.
func ParseAnalysis(raw string) (contracts.AnalysisResult, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return contracts.AnalysisResult{}, fmt.Errorf("%w: empty response", ErrModelOutput)
	}

	result, strictErr := decodeAndValidate([]byte(trimmed))
	if strictErr == nil {
		return result, nil
	}

	candidate, ok := balancedJSONObject(trimmed)
	if !ok {
		return contracts.AnalysisResult{}, fmt.Errorf("%w: no JSON object found: %v", ErrModelOutput, strictErr)
	}
	result, err := decodeAndValidate([]byte(candidate))
	if err != nil {
		return contracts.AnalysisResult{}, fmt.Errorf("%w: %v", ErrModelOutput, err)
	}
	return result, nil
}

func decodeAndValidate(data []byte) (contracts.AnalysisResult, error) {
	if err := validateAgainstSchema(data); err != nil {
		return contracts.AnalysisResult{}, err
	}
	var result contracts.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return contracts.AnalysisResult{}, fmt.Errorf("decode: %w", err)
	}
	// The model does not get to claim its own output is degraded.
	result.Degraded = false
	if result.MissingClauses == nil {
		result.MissingClauses = []string{}
	}
	if result.Recommendations == nil {
		result.Recommendations = []string{}
	}
	if result.RedFlags == nil {
		result.RedFlags = []string{}
	}
	if result.Risks == nil {
		result.Risks = []contracts.Risk{}
	}
	if err := result.Validate(); err != nil {
		return contracts.AnalysisResult{}, err
	}
	return result, nil
}

// balancedJSONObject returns the first string-aware balanced {...} substring.
func balancedJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
