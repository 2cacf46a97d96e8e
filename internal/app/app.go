package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/davemk99/studyrag/internal/config"
	"github.com/davemk99/studyrag/internal/core"
	db "github.com/davemk99/studyrag/internal/core/database"
	"github.com/davemk99/studyrag/internal/core/ingestion_engine"
	"github.com/davemk99/studyrag/internal/core/llm"
	objectclient "github.com/davemk99/studyrag/internal/core/object-client"
	"github.com/davemk99/studyrag/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	DocProcessor ingestion_engine.Ingestor
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	geminiEmbedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel, cfg.EmbedDim)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm provider, %w", err)
	}

	ytService, err := youtube.NewService(appCtx, option.WithAPIKey(cfg.YouTubeKey))
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the youtube client, %w", err)
	}

	documentExtractor := ingestion_engine.NewDocconvExtractor(false)

	ingCfg := &ingestion_engine.IngestConfig{
		MaxChunkChars: cfg.ChunkMaxChars,
		EmbedBatch:    cfg.EmbedBatch,
		EmbedDim:      cfg.EmbedDim,
	}

	docIngestor := ingestion_engine.NewDocumentIngestor(dbClient, objClient, geminiEmbedder, documentExtractor, ingCfg)
	docIngestor.Start(ctx, cfg.IngestWorkers)

	retrieval := services.NewRetrievalService(dbClient, geminiEmbedder, cfg.SimilarityThreshold)
	chatService := services.NewChatService(dbClient, retrieval, llmProvider, cfg.RetrieveTopK, cfg.HistoryWindow)
	quizService := services.NewQuizService(dbClient, retrieval, llmProvider)
	videoService := services.NewVideoService(dbClient, services.NewYouTubeSearcher(ytService))

	server := NewServer(cfg, dbClient, objClient, docIngestor, chatService, quizService, videoService)

	return &App{DBClient: dbClient, ObjectClient: objClient, DocProcessor: docIngestor, Server: server}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
