// Command ragvaultd runs the governance-first RAG service: it wires every
// component together from Settings, runs startup reconciliation, and serves
// the HTTP API until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/viant/ragvault/internal/chat"
	"github.com/viant/ragvault/internal/chunkstore"
	"github.com/viant/ragvault/internal/config"
	"github.com/viant/ragvault/internal/docregistry"
	"github.com/viant/ragvault/internal/embedder"
	"github.com/viant/ragvault/internal/generator"
	"github.com/viant/ragvault/internal/httpapi"
	"github.com/viant/ragvault/internal/ingestion"
	"github.com/viant/ragvault/internal/logging"
	"github.com/viant/ragvault/internal/orchestrator"
	"github.com/viant/ragvault/internal/reconcile"
	"github.com/viant/ragvault/internal/retrieval"
	"github.com/viant/ragvault/internal/store"
	"github.com/viant/ragvault/internal/vectorindex"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config overlay path")
	addr := flag.String("addr", "", "HTTP listen address (overrides config/env)")
	dev := flag.Bool("dev", false, "use a development (console) logger instead of JSON")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		settings.HTTPAddr = *addr
	}

	logger, err := logging.New(*dev)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(settings, logger); err != nil {
		logger.Fatal("ragvaultd exited with error", zap.Error(err))
	}
}

func run(settings config.Settings, logger *zap.Logger) error {
	documentsDir := filepath.Join(settings.DataDir, "documents")
	vectorsDir := filepath.Join(settings.DataDir, "vectors")
	conversationsDir := filepath.Join(settings.DataDir, "conversations")
	indexPath := filepath.Join(vectorsDir, "index.bin")
	chunksPath := filepath.Join(vectorsDir, "chunks.json")

	for _, dir := range []string{documentsDir, vectorsDir, conversationsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}

	emb := embedder.NewOllamaEmbedder(
		settings.EmbeddingModel,
		embedder.WithHTTPTimeout(time.Duration(settings.EmbedderTimeoutSeconds)*time.Second),
	)
	gen := generator.NewOllamaGenerator(
		generator.WithHTTPTimeout(time.Duration(settings.GeneratorTimeoutSeconds) * time.Second),
	)

	index, err := vectorindex.LoadFrom(indexPath)
	if err != nil {
		return fmt.Errorf("load vector index: %w", err)
	}

	chunks := chunkstore.New(chunksPath)
	if err := chunks.Load(); err != nil {
		return fmt.Errorf("load chunk store: %w", err)
	}

	registry := docregistry.New(documentsDir)
	if err := registry.Load(); err != nil {
		return fmt.Errorf("load document registry: %w", err)
	}

	convStore := store.NewConversationStore(conversationsDir)
	conversations, err := convStore.LoadAll()
	if err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}
	chatCtrl := chat.New(settings.HistoryTurns, settings.MaxHistoryChars)
	chatCtrl.LoadAll(conversations)

	report, err := reconcile.Run(registry, chunks, index, indexPath, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("startup reconciliation: %w", err)
	}
	logger.Info("startup reconciliation complete",
		zap.Int("stale_documents", report.StaleDocuments),
		zap.Int("orphaned_chunks", report.OrphanedChunks),
		zap.Int("orphaned_vectors", report.OrphanedVectors),
	)

	chunker := ingestion.NewChunker(settings.ChunkSize, settings.ChunkOverlap)
	parser := ingestion.NewTextParser(chunker)
	pipeline := ingestion.New(parser, emb, index, indexPath, chunks, registry, settings.IngestQueueDepth)

	retriever := retrieval.New(emb, index, chunks, registry, settings.SimilarityThreshold, settings.TopK, settings.MaxCoveragePct)

	models := orchestrator.ModelSelector{
		Analysis: firstNonEmpty(settings.AnalysisModel, settings.GenerationModel),
		Writing:  firstNonEmpty(settings.WritingModel, settings.GenerationModel),
		QA:       firstNonEmpty(settings.QAModel, settings.GenerationModel),
	}
	orch := orchestrator.New(retriever, gen, models, chatCtrl, convStore, settings.DefaultCoveragePct)

	server := httpapi.NewServer(httpapi.Deps{
		Orchestrator: orch,
		Registry:     registry,
		Pipeline:     pipeline,
		Chunks:       chunks,
		ChatCtrl:     chatCtrl,
		ConvStore:    convStore,
		Index:        index,
		Logger:       logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return server.Run(ctx, settings.HTTPAddr)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
