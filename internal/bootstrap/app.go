package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/analyses"
	"contract-backend/internal/contracts"
	"contract-backend/internal/llm"
	"contract-backend/internal/llm/gemini"
	"contract-backend/internal/llm/openai"
	"contract-backend/internal/shared/config"
	"contract-backend/internal/shared/server"
	"contract-backend/internal/shared/storage/blob"
	localstore "contract-backend/internal/shared/storage/blob/local"
	s3store "contract-backend/internal/shared/storage/blob/s3"
	"contract-backend/internal/shared/storage/db"
)

// App holds shared dependencies built from config.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Blob             blob.Store
	LLM              llm.Client
	ContractsRepo    contracts.Repo
	ContractsService *contracts.Service
	AnalysisService  *analyses.Service
	ContractsHandler *contracts.Handler
	AnalysisHandler  *analyses.Handler
}

// Build prepares dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo contracts.Repo
	if sqlDB != nil {
		repo = &contracts.PGRepo{DB: sqlDB}
	} else {
		repo = contracts.NewMemoryRepo()
	}

	contractsSvc := &contracts.Service{
		Blob: store,
		Repo: repo,
	}
	analysisSvc := &analyses.Service{
		Repo:    repo,
		Blob:    store,
		LLM:     llmClient,
		Timeout: cfg.LLMTimeout,
	}

	app := &App{
		Config:           cfg,
		DB:               sqlDB,
		Blob:             store,
		LLM:              llmClient,
		ContractsRepo:    repo,
		ContractsService: contractsSvc,
		AnalysisService:  analysisSvc,
		ContractsHandler: contracts.NewHandler(contractsSvc, cfg.MaxUploadBytes),
		AnalysisHandler:  analyses.NewHandler(analysisSvc),
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		ContractsHandler: app.ContractsHandler,
		AnalysisHandler:  app.AnalysisHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repository")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	switch cfg.BlobStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("BLOB_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "gemini":
		apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		if apiKey == "" {
			log.Printf("bootstrap: GEMINI_API_KEY empty; analyses will use the fallback result")
			return llm.PlaceholderClient{}, nil
		}
		return gemini.NewClient(ctx, apiKey, cfg.LLMModel)
	default:
		apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		if apiKey == "" {
			log.Printf("bootstrap: OPENAI_API_KEY empty; analyses will use the fallback result")
			return llm.PlaceholderClient{}, nil
		}
		return openai.NewClient(apiKey, cfg.LLMModel, cfg.LLMTimeout)
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
