package contracts

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func newPGRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newPGRepo(t)
	now := time.Now().UTC()
	c := testContract("a1", now)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO contracts")).
		WithArgs(c.ID, c.FileName, c.ContentType, c.SizeBytes, c.StorageKey, c.Status, c.CreatedAt, c.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGRepoGetByID(t *testing.T) {
	repo, mock := newPGRepo(t)
	now := time.Now().UTC()
	analysis := AnalysisResult{RiskScore: 6, OverallSummary: "ok", MissingClauses: []string{}, Recommendations: []string{}, RedFlags: []string{}}
	payload, err := json.Marshal(analysis)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	cols := []string{"id", "file_name", "content_type", "size_bytes", "storage_key", "status", "extraction_quality", "analysis", "created_at", "updated_at", "analyzed_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM contracts")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("a1", "a1.pdf", ContentTypePDF, int64(128), "contracts/a1.pdf", StatusCompleted, ExtractionExact, payload, now, now, now))

	got, err := repo.GetByID(context.Background(), "a1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.Analysis == nil || got.Analysis.RiskScore != 6 {
		t.Errorf("analysis = %+v", got.Analysis)
	}
	if got.AnalyzedAt == nil {
		t.Error("analyzedAt must be set")
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newPGRepo(t)

	cols := []string{"id", "file_name", "content_type", "size_bytes", "storage_key", "status", "extraction_quality", "analysis", "created_at", "updated_at", "analyzed_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM contracts")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(cols))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID = %v, want ErrNotFound", err)
	}
}

func TestPGRepoUpdateStatusConflict(t *testing.T) {
	repo, mock := newPGRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE contracts")).
		WithArgs(StatusAnalyzing, now, "a1", StatusUploaded).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.UpdateStatus(context.Background(), "a1", StatusUploaded, StatusAnalyzing, now)
	if !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("UpdateStatus = %v, want ErrStatusConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGRepoUpdateStatusMissing(t *testing.T) {
	repo, mock := newPGRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE contracts")).
		WithArgs(StatusAnalyzing, now, "missing", StatusUploaded).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.UpdateStatus(context.Background(), "missing", StatusUploaded, StatusAnalyzing, now)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateStatus = %v, want ErrNotFound", err)
	}
}

func TestPGRepoCompleteAnalysis(t *testing.T) {
	repo, mock := newPGRepo(t)
	now := time.Now().UTC()
	result := AnalysisResult{RiskScore: 5, OverallSummary: "ok", MissingClauses: []string{}, Recommendations: []string{}, RedFlags: []string{}}
	payload, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE contracts")).
		WithArgs(StatusCompleted, payload, ExtractionHeuristic, now, "a1", StatusAnalyzing).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.CompleteAnalysis(context.Background(), "a1", result, ExtractionHeuristic, now); err != nil {
		t.Fatalf("CompleteAnalysis: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGRepoList(t *testing.T) {
	repo, mock := newPGRepo(t)
	now := time.Now().UTC()

	cols := []string{"id", "file_name", "content_type", "size_bytes", "storage_key", "status", "extraction_quality", "analysis", "created_at", "updated_at", "analyzed_at"}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("b", "b.pdf", ContentTypePDF, int64(1), "contracts/b.pdf", StatusUploaded, nil, nil, now, now, nil).
			AddRow("a", "a.pdf", ContentTypePDF, int64(1), "contracts/a.pdf", StatusUploaded, nil, nil, now.Add(-time.Hour), now.Add(-time.Hour), nil))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" {
		t.Errorf("got = %+v", got)
	}
	if got[0].Analysis != nil || got[0].AnalyzedAt != nil {
		t.Error("pending record must carry no analysis")
	}
}
