package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/docquery-ai/docquery/internal/config"
	"github.com/docquery-ai/docquery/internal/core/chunker"
	"github.com/docquery-ai/docquery/internal/core/extraction"
	"github.com/docquery-ai/docquery/internal/core/ingestion_engine"
	"github.com/docquery-ai/docquery/internal/core/llm"
	objectclient "github.com/docquery-ai/docquery/internal/core/object-client"
	"github.com/docquery-ai/docquery/internal/core/retrieval"
	"github.com/docquery-ai/docquery/internal/core/vectorstore"
	"github.com/docquery-ai/docquery/internal/services"
)

type App struct {
	ObjectClient *objectclient.S3Client
	Vectors      *vectorstore.Provider
	Ingestor     *ingestion_engine.DocumentIngestor
	Server       *Server
	log          *zap.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	objClient, err := objectclient.NewS3Client(appCtx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("object client ready", zap.String("bucket", cfg.BucketName))

	provider, err := newVectorProvider(cfg, log)
	if err != nil {
		return nil, err
	}
	gateway := vectorstore.NewGateway(provider, cfg.UpsertBatch, log)

	geminiEmbedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("init llm: %w", err)
	}

	extractor := extraction.Default(log, cfg.ExtractTimeout)
	ch := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap, cfg.ChunkStoreBytes)

	ingCfg := &ingestion_engine.IngestConfig{
		Workers:   cfg.IngestWorkers,
		QueueSize: cfg.IngestQueueSize,
	}
	docIngestor := ingestion_engine.NewDocumentIngestor(objClient, extractor, ch, geminiEmbedder, gateway, ingCfg, log)
	docIngestor.Start(ctx, 0)

	assembler := retrieval.NewAssembler(geminiEmbedder, gateway, retrieval.Config{
		TopK:            cfg.TopK,
		ScoreThreshold:  cfg.ScoreThreshold,
		MaxContextChars: cfg.MaxContextChars,
	}, log)

	docService := services.NewDocumentService(objClient, docIngestor)
	chatService := services.NewChatService(assembler, llmProvider)

	server := NewServer(cfg, docService, chatService, assembler, log)

	return &App{
		ObjectClient: objClient,
		Vectors:      provider,
		Ingestor:     docIngestor,
		Server:       server,
		log:          log,
	}, nil
}

// newVectorProvider picks the index backend. The pgvector store opens
// lazily so a cold database does not block startup.
func newVectorProvider(cfg *config.Config, log *zap.Logger) (*vectorstore.Provider, error) {
	switch cfg.VectorBackend {
	case "pgvector":
		return vectorstore.NewProvider(func(ctx context.Context) (vectorstore.Store, error) {
			return vectorstore.NewPgStore(ctx, cfg.DatabaseURL, cfg.EmbedDim, log)
		}), nil
	case "memory":
		return vectorstore.NewStaticProvider(vectorstore.NewMemoryStore()), nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
	}
}

func (a *App) Close() {
	if a.Vectors != nil {
		if err := a.Vectors.Close(); err != nil {
			a.log.Warn("closing vector store", zap.Error(err))
		}
	}
}
