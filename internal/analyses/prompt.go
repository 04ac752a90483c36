package analyses

import (
	"strings"
	"unicode/utf8"
)

// promptCharLimit bounds how much extracted contract text is embedded in the
// prompt.
const promptCharLimit = 4000

const promptInstructions = `You are a contract risk analyst. Analyze the contract text below and respond with a single JSON object, no surrounding prose, matching exactly this shape:
{
  "riskScore": <integer 1-10, overall risk>,
  "overallSummary": "<2-3 sentence summary>",
  "keyTerms": {
    "paymentTerms": "<summary of payment terms or 'Not specified'>",
    "terminationClause": "<summary of termination terms or 'Not specified'>",
    "liabilityLimitations": "<summary of liability terms or 'Not specified'>",
    "intellectualProperty": "<summary of IP terms or 'Not specified'>"
  },
  "risks": [
    {"category": "<category>", "severity": <integer 1-10>, "description": "<description>", "recommendation": "<recommendation>"}
  ],
  "missingClauses": ["<clause name>"],
  "recommendations": ["<recommendation>"],
  "redFlags": ["<red flag>"]
}

CONTRACT TEXT:
`

// BuildPrompt embeds the extracted text, truncated to the character cap, after
// the output-schema instruction. Truncation never splits a multi-byte rune.
func BuildPrompt(text string) string {
	truncated := text
	if len(truncated) > promptCharLimit {
		cut := promptCharLimit
		for cut > 0 && !utf8.RuneStart(truncated[cut]) {
			cut--
		}
		truncated = truncated[:cut]
	}
	var b strings.Builder
	b.Grow(len(promptInstructions) + len(truncated))
	b.WriteString(promptInstructions)
	b.WriteString(truncated)
	return b.String()
}
