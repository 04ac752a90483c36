package contracts

import (
	"fmt"
	"strings"
	"time"
)

// Record lifecycle states. Status only ever advances forward:
// uploaded -> analyzing -> completed. Completed is terminal.
const (
	StatusUploaded  = "uploaded"
	StatusAnalyzing = "analyzing"
	StatusCompleted = "completed"
)

// Supported declared content types for ingestion.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeText = "text/plain"
)

// Extraction quality flags recorded alongside a completed analysis.
const (
	ExtractionExact       = "exact"
	ExtractionHeuristic   = "heuristic"
	ExtractionPlaceholder = "placeholder"
)

// Contract is the persisted state of one submitted document through its lifecycle.
type Contract struct {
	ID                string
	FileName          string
	ContentType       string
	SizeBytes         int64
	StorageKey        string
	Status            string
	ExtractionQuality string
	Analysis          *AnalysisResult
	CreatedAt         time.Time
	UpdatedAt         time.Time
	AnalyzedAt        *time.Time
}

// AnalysisResult is the structured risk report for a contract. It is produced
// whole, either from validated model output or from the fixed fallback, never
// partially populated.
type AnalysisResult struct {
	RiskScore       int      `json:"riskScore"`
	OverallSummary  string   `json:"overallSummary"`
	KeyTerms        KeyTerms `json:"keyTerms"`
	Risks           []Risk   `json:"risks"`
	MissingClauses  []string `json:"missingClauses"`
	Recommendations []string `json:"recommendations"`
	RedFlags        []string `json:"redFlags"`
	// Degraded marks a fallback result that did not come from the model.
	Degraded bool `json:"degraded"`
}

// KeyTerms holds the four fixed semantic slots extracted from a contract.
type KeyTerms struct {
	PaymentTerms         string `json:"paymentTerms"`
	TerminationClause    string `json:"terminationClause"`
	LiabilityLimitations string `json:"liabilityLimitations"`
	IntellectualProperty string `json:"intellectualProperty"`
}

// Risk is one identified risk item, ordered by the model.
type Risk struct {
	Category       string `json:"category"`
	Severity       int    `json:"severity"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// Validate checks the structural invariants of an analysis result.
func (r AnalysisResult) Validate() error {
	if r.RiskScore < 1 || r.RiskScore > 10 {
		return fmt.Errorf("riskScore %d out of range [1,10]", r.RiskScore)
	}
	if strings.TrimSpace(r.OverallSummary) == "" {
		return fmt.Errorf("overallSummary is empty")
	}
	for i, risk := range r.Risks {
		if risk.Severity < 1 || risk.Severity > 10 {
			return fmt.Errorf("risks[%d].severity %d out of range [1,10]", i, risk.Severity)
		}
		if strings.TrimSpace(risk.Description) == "" {
			return fmt.Errorf("risks[%d].description is empty", i)
		}
	}
	return nil
}

// SupportedContentType reports whether the declared content type can be ingested.
func SupportedContentType(contentType string) bool {
	switch NormalizeContentType(contentType) {
	case ContentTypePDF, ContentTypeDOCX, ContentTypeText:
		return true
	default:
		return false
	}
}

// NormalizeContentType lowercases and strips parameters such as charset.
func NormalizeContentType(contentType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
}
