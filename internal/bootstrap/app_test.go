package bootstrap

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contract-backend/internal/contracts"
	"contract-backend/internal/llm"
	"contract-backend/internal/shared/config"
)

type scriptedLLM struct {
	output string
	err    error
}

func (s scriptedLLM) Complete(_ context.Context, _ llm.Request) (string, error) {
	return s.output, s.err
}

const e2eModelJSON = `{
  "riskScore": 6,
  "overallSummary": "Consulting agreement with broad indemnification obligations.",
  "keyTerms": {
    "paymentTerms": "Net 30",
    "terminationClause": "30 days written notice",
    "liabilityLimitations": "Capped at fees paid",
    "intellectualProperty": "Assigned to client"
  },
  "risks": [
    {"category": "Indemnification", "severity": 6, "description": "Broad indemnity for the consultant.", "recommendation": "Narrow the indemnity scope."}
  ],
  "missingClauses": [],
  "recommendations": ["Narrow indemnification."],
  "redFlags": []
}`

func buildTestApp(t *testing.T, model llm.Client) *App {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	app, err := Build(config.Config{
		Env:            "dev",
		BlobStoreType:  "local",
		LocalStoreDir:  t.TempDir(),
		LLMProvider:    "openai",
		LLMTimeout:     5 * time.Second,
		MaxUploadBytes: 1 << 20,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if app.DB != nil {
		t.Fatal("dev build without DATABASE_URL must not hold a db handle")
	}
	app.AnalysisService.LLM = model
	return app
}

func submitContract(t *testing.T, app *App) string {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"fileName":      "consulting.txt",
		"contentType":   "text/plain",
		"contentBase64": base64.StdEncoding.EncodeToString([]byte("The consultant shall indemnify the client.")),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.ID
}

func TestUploadAnalyzeFetchFlow(t *testing.T) {
	app := buildTestApp(t, scriptedLLM{output: e2eModelJSON})
	id := submitContract(t, app)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/"+id+"/analyze", nil)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("analyze status = %d, body = %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/contracts/"+id, nil)
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp contracts.ContractResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != contracts.StatusCompleted {
		t.Errorf("status = %q, want completed", resp.Status)
	}
	if resp.Analysis == nil || resp.Analysis.RiskScore != 6 {
		t.Errorf("analysis = %+v", resp.Analysis)
	}
	if resp.Analysis != nil && resp.Analysis.Degraded {
		t.Error("analysis must not be degraded")
	}
	if resp.ExtractionQuality != contracts.ExtractionExact {
		t.Errorf("extractionQuality = %q, want exact", resp.ExtractionQuality)
	}
}

func TestPlaceholderProviderFallsBack(t *testing.T) {
	// No API keys configured: bootstrap wires the placeholder client and every
	// analysis completes with the degraded fallback.
	app := buildTestApp(t, llm.PlaceholderClient{})
	id := submitContract(t, app)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/"+id+"/analyze", nil)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("analyze status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Status   string                    `json:"status"`
		Analysis *contracts.AnalysisResult `json:"analysis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != contracts.StatusCompleted {
		t.Errorf("status = %q, want completed", resp.Status)
	}
	if resp.Analysis == nil || !resp.Analysis.Degraded {
		t.Fatal("placeholder provider must yield a degraded analysis")
	}
}

func TestAnalyzeMissingContract(t *testing.T) {
	app := buildTestApp(t, scriptedLLM{output: e2eModelJSON})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/does-not-exist/analyze", nil)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
