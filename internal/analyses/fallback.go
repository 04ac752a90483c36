package analyses

import "contract-backend/internal/contracts"

// FallbackResult is the fixed, deterministic report substituted whenever real
// analysis cannot be produced. It is always schema-valid and marked degraded
// so consumers can tell it apart from genuine model output.
func FallbackResult() contracts.AnalysisResult {
	return contracts.AnalysisResult{
		RiskScore:      5,
		OverallSummary: "Automated analysis was unavailable for this contract. The document was ingested successfully, but the report below is generic guidance rather than a review of this specific agreement.",
		KeyTerms: contracts.KeyTerms{
			PaymentTerms:         "Not analyzed - manual review required",
			TerminationClause:    "Not analyzed - manual review required",
			LiabilityLimitations: "Not analyzed - manual review required",
			IntellectualProperty: "Not analyzed - manual review required",
		},
		Risks: []contracts.Risk{
			{
				Category:       "General",
				Severity:       5,
				Description:    "The contract could not be analyzed automatically, so its risk profile is unknown.",
				Recommendation: "Have legal counsel review the full document.",
			},
		},
		MissingClauses: []string{},
		Recommendations: []string{
			"Request a manual legal review of this contract.",
			"Verify payment, termination, liability and intellectual property terms directly in the source document.",
		},
		RedFlags: []string{},
		Degraded: true,
	}
}
