package analyses

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// analysisSchema is the shape contract for untrusted model output. Extra
// fields are tolerated; missing fields and out-of-range values are not.
const analysisSchema = `{
  "type": "object",
  "required": ["riskScore", "overallSummary", "keyTerms", "risks", "missingClauses", "recommendations", "redFlags"],
  "properties": {
    "riskScore": {"type": "integer", "minimum": 1, "maximum": 10},
    "overallSummary": {"type": "string", "minLength": 1},
    "keyTerms": {
      "type": "object",
      "required": ["paymentTerms", "terminationClause", "liabilityLimitations", "intellectualProperty"],
      "properties": {
        "paymentTerms": {"type": "string"},
        "terminationClause": {"type": "string"},
        "liabilityLimitations": {"type": "string"},
        "intellectualProperty": {"type": "string"}
      }
    },
    "risks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["category", "severity", "description", "recommendation"],
        "properties": {
          "category": {"type": "string"},
          "severity": {"type": "integer", "minimum": 1, "maximum": 10},
          "description": {"type": "string", "minLength": 1},
          "recommendation": {"type": "string"}
        }
      }
    },
    "missingClauses": {"type": "array", "items": {"type": "string"}},
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "redFlags": {"type": "array", "items": {"type": "string"}}
  }
}`

var compiledSchema = jsonschema.MustCompileString("analysis.json", analysisSchema)

// validateAgainstSchema validates raw JSON bytes against the analysis shape.
func validateAgainstSchema(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}
