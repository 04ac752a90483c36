package analyses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"contract-backend/internal/contracts"
	"contract-backend/internal/extract"
	"contract-backend/internal/llm"
	"contract-backend/internal/shared/metrics"
	"contract-backend/internal/shared/storage/blob"
	"contract-backend/internal/shared/telemetry"
)

// ErrAnalysisInProgress signals that another caller holds the analyzing state.
var ErrAnalysisInProgress = errors.New("analysis already in progress")

const (
	defaultTimeout     = 2 * time.Minute
	defaultMaxTokens   = 2048
	defaultTemperature = 0.2
)

// Service orchestrates the analysis pipeline: load record, extract text,
// invoke the model, parse or fall back, persist the completed result.
type Service struct {
	Repo    contracts.Repo
	Blob    blob.Store
	LLM     llm.Client
	Timeout time.Duration
}

// Analyze runs the pipeline for one record. Once a record reaches the
// analyzing state this never fails on model or extraction-content problems:
// any such failure is absorbed into the fallback result and the record still
// completes.
func (s *Service) Analyze(ctx context.Context, id string) (contracts.Contract, error) {
	if id == "" {
		return contracts.Contract{}, fmt.Errorf("%w: id is required", contracts.ErrInvalidInput)
	}

	rec, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return contracts.Contract{}, err
	}
	if rec.Status == contracts.StatusCompleted {
		return rec, nil
	}
	if rec.Status == contracts.StatusAnalyzing {
		return contracts.Contract{}, ErrAnalysisInProgress
	}

	startedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, id, contracts.StatusUploaded, contracts.StatusAnalyzing, startedAt); err != nil {
		if errors.Is(err, contracts.ErrStatusConflict) {
			return s.resolveConflict(ctx, id)
		}
		return contracts.Contract{}, fmt.Errorf("set analyzing id=%s: %w", id, err)
	}
	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.status", map[string]any{
		"contract_id":       id,
		"status":            contracts.StatusAnalyzing,
		"status_transition": "uploaded->analyzing",
	})

	data, err := s.loadBlob(ctx, rec.StorageKey)
	if err != nil {
		s.releaseAnalyzing(ctx, id)
		return contracts.Contract{}, fmt.Errorf("load blob id=%s key=%s: %w", id, rec.StorageKey, err)
	}

	extracted, err := extract.Text(ctx, data, rec.ContentType)
	if err != nil {
		s.releaseAnalyzing(ctx, id)
		return contracts.Contract{}, fmt.Errorf("extract id=%s: %w", id, err)
	}
	if extracted.Quality == extract.QualityPlaceholder {
		metrics.IncExtractionPlaceholder()
		telemetry.Warn("analysis.extraction_placeholder", map[string]any{
			"contract_id":  id,
			"content_type": rec.ContentType,
			"size_bytes":   len(data),
		})
	}

	result, degraded := s.invokeModel(ctx, id, BuildPrompt(extracted.Text))

	completedAt := time.Now().UTC()
	if err := s.Repo.CompleteAnalysis(ctx, id, result, extracted.Quality, completedAt); err != nil {
		if errors.Is(err, contracts.ErrStatusConflict) {
			// A concurrent analysis finished first; serve its result.
			return s.resolveConflict(ctx, id)
		}
		return contracts.Contract{}, fmt.Errorf("complete analysis id=%s: %w", id, err)
	}

	metrics.IncAnalysisCompleted()
	if degraded {
		metrics.IncAnalysisFallback()
	}
	durationMs := float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0
	metrics.ObserveAnalysisDurationMs(durationMs)
	telemetry.Info("analysis.status", map[string]any{
		"contract_id":        id,
		"status":             contracts.StatusCompleted,
		"status_transition":  "analyzing->completed",
		"degraded":           degraded,
		"extraction_quality": extracted.Quality,
		"duration_ms":        durationMs,
	})

	return s.Repo.GetByID(ctx, id)
}

// invokeModel runs one bounded model invocation and parses its output. Any
// failure yields the deterministic fallback result instead of an error.
func (s *Service) invokeModel(ctx context.Context, id, prompt string) (contracts.AnalysisResult, bool) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := s.LLM.Complete(callCtx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		telemetry.Error("analysis.model_failed", map[string]any{
			"contract_id": id,
			"error":       err.Error(),
		})
		return FallbackResult(), true
	}

	result, err := ParseAnalysis(raw)
	if err != nil {
		telemetry.Error("analysis.model_output_invalid", map[string]any{
			"contract_id":  id,
			"error":        err.Error(),
			"output_bytes": len(raw),
		})
		return FallbackResult(), true
	}
	return result, false
}

func (s *Service) loadBlob(ctx context.Context, storageKey string) ([]byte, error) {
	body, err := s.Blob.Open(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

// releaseAnalyzing hands the record back to the uploaded state after a
// failure between claiming it and completing it, so the caller can retry.
// Best-effort: a release failure is logged, not returned, since the original
// error is what the caller needs.
func (s *Service) releaseAnalyzing(ctx context.Context, id string) {
	// Survives request cancellation: the release must land even when the
	// failure that triggered it was the caller going away.
	ctx = context.WithoutCancel(ctx)
	if err := s.Repo.UpdateStatus(ctx, id, contracts.StatusAnalyzing, contracts.StatusUploaded, time.Now().UTC()); err != nil {
		telemetry.Error("analysis.release_failed", map[string]any{
			"contract_id": id,
			"error":       err.Error(),
		})
		return
	}
	telemetry.Warn("analysis.status", map[string]any{
		"contract_id":       id,
		"status":            contracts.StatusUploaded,
		"status_transition": "analyzing->uploaded",
	})
}

// resolveConflict handles losing a status race: if the winner already
// completed, its result is returned; otherwise the analysis is in flight.
func (s *Service) resolveConflict(ctx context.Context, id string) (contracts.Contract, error) {
	current, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return contracts.Contract{}, err
	}
	if current.Status == contracts.StatusCompleted {
		return current, nil
	}
	return contracts.Contract{}, ErrAnalysisInProgress
}
