package contracts

import "time"

// ContractResponse is the outward-facing representation of a contract record.
// Analysis is present only once the record is completed.
type ContractResponse struct {
	ID                string          `json:"id"`
	FileName          string          `json:"fileName"`
	ContentType       string          `json:"contentType"`
	SizeBytes         int64           `json:"sizeBytes"`
	Status            string          `json:"status"`
	ExtractionQuality string          `json:"extractionQuality,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	AnalyzedAt        *time.Time      `json:"analyzedAt,omitempty"`
	Analysis          *AnalysisResult `json:"analysis,omitempty"`
}

// ListResponse is one page of records plus aggregate counts.
type ListResponse struct {
	Records    []ContractResponse `json:"records"`
	Summary    Summary            `json:"summary"`
	Pagination Pagination         `json:"pagination"`
}

// Pagination reports the applied limit and whether more records exist.
type Pagination struct {
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

// ToResponse builds the status-shaped view of a record: pending records carry
// no analysis even if one were present.
func ToResponse(c Contract) ContractResponse {
	resp := ContractResponse{
		ID:          c.ID,
		FileName:    c.FileName,
		ContentType: c.ContentType,
		SizeBytes:   c.SizeBytes,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.Status == StatusCompleted {
		resp.Analysis = c.Analysis
		resp.AnalyzedAt = c.AnalyzedAt
		resp.ExtractionQuality = c.ExtractionQuality
	}
	return resp
}
