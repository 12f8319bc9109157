// Command detectord wires the full detection pipeline's dependency
// container from environment configuration and serves it over MCP.
// Backend selection degrades gracefully for local development: Postgres,
// OpenSearch, Redis and Mongo are used when their connection settings are
// present, and an in-memory implementation stands in otherwise, so the
// daemon starts cleanly on a laptop with nothing but Go installed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	openaisdk "github.com/openai/openai-go/v3"

	"github.com/corpusguard/plagdetect/audit"
	"github.com/corpusguard/plagdetect/cache"
	"github.com/corpusguard/plagdetect/chunking"
	"github.com/corpusguard/plagdetect/config"
	"github.com/corpusguard/plagdetect/detector"
	"github.com/corpusguard/plagdetect/docregistry"
	"github.com/corpusguard/plagdetect/embedder"
	"github.com/corpusguard/plagdetect/explain"
	"github.com/corpusguard/plagdetect/ingestor"
	"github.com/corpusguard/plagdetect/mcpserver"
	"github.com/corpusguard/plagdetect/pkg/logging"
	"github.com/corpusguard/plagdetect/pkg/telemetry"
	"github.com/corpusguard/plagdetect/service"
	"github.com/corpusguard/plagdetect/vectorstore"
)

func main() {
	transport := flag.String("transport", "stdio", "MCP transport: stdio or http")
	host := flag.String("host", "127.0.0.1", "host to bind for the http transport")
	port := flag.Int("port", 8080, "port to bind for the http transport")
	path := flag.String("path", "/mcp", "HTTP path for the MCP streamable endpoint")
	preset := flag.String("chunk-preset", "default", "chunking preset: default (100/20/30) or large (250/50/50)")
	flag.Parse()

	logger := logging.Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("detectord: load config: %v", err)
	}
	cfg = cfg.Preset(*preset)

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{ServiceName: "detectord"})
	if err != nil {
		log.Fatalf("detectord: init telemetry: %v", err)
	}
	defer shutdownTelemetry(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, closeRegistry, err := buildRegistry(ctx, cfg)
	if err != nil {
		log.Fatalf("detectord: build document registry: %v", err)
	}
	defer closeRegistry()

	store, closeStore, err := buildVectorStore(ctx, cfg)
	if err != nil {
		log.Fatalf("detectord: build vector store: %v", err)
	}
	defer closeStore()
	if err := store.CreateIndex(ctx, cfg.EmbeddingDims); err != nil {
		log.Fatalf("detectord: create vector index: %v", err)
	}

	auditLog, closeAudit, err := buildAuditLog(ctx, cfg)
	if err != nil {
		log.Fatalf("detectord: build audit log: %v", err)
	}
	defer closeAudit()

	emb, err := buildEmbedder(cfg)
	if err != nil {
		log.Fatalf("detectord: build embedder: %v", err)
	}

	explainer := buildExplainer(ctx, cfg)

	chunker := chunking.New(
		chunking.WithChunkSize(cfg.ChunkSize),
		chunking.WithOverlap(cfg.ChunkOverlap),
		chunking.WithMinChunkSize(cfg.MinChunkSize),
	)

	detCfg := detector.DefaultConfig()
	detCfg.Chunking = chunking.Config{ChunkSize: cfg.ChunkSize, ChunkOverlap: cfg.ChunkOverlap, MinChunkSize: cfg.MinChunkSize}
	detCfg.Aggregator.TopK = cfg.TopKResults
	detCfg.Aggregator.MinScoreThreshold = cfg.MinScoreThreshold
	detCfg.RequestTimeout = cfg.RequestTimeout
	detCfg.EmbedTimeout = cfg.EmbedTimeout
	detCfg.KNNTimeout = cfg.KNNTimeout

	det := detector.New(chunker, emb, store, registry, explainer, detCfg)
	ing := ingestor.New(chunker, emb, store, registry)

	svc := service.New(det, ing, registry, auditLog, logger)

	server := mcpserver.NewServer("plagdetect-mcp", svc)

	switch *transport {
	case "http":
		serveHTTP(server, *host, *port, *path)
	default:
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
			log.Fatalf("detectord: stdio server stopped: %v", err)
		}
	}
}

func serveHTTP(server *mcp.Server, host string, port int, path string) {
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		if r.URL.Path == path {
			return server
		}
		return nil
	}, nil)

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("detectord: serving MCP streamable endpoint at http://%s%s", addr, path)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("detectord: http server stopped: %v", err)
	}
}

func buildRegistry(ctx context.Context, cfg config.Config) (docregistry.Registry, func(), error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		reg := docregistry.NewInMemoryRegistry()
		return reg, func() { _ = reg.Close() }, nil
	}

	pgCfg, err := parsePostgresDSN(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("parse POSTGRES_DSN: %w", err)
	}
	reg, err := docregistry.NewPostgresRegistry(ctx, pgCfg)
	if err != nil {
		return nil, nil, err
	}
	return reg, func() { _ = reg.Close() }, nil
}

// parsePostgresDSN accepts a postgres:// URI and splits it into the
// discrete fields docregistry.PostgresConfig expects.
func parsePostgresDSN(dsn string) (*docregistry.PostgresConfig, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	cfg := docregistry.DefaultPostgresConfig()
	if host := u.Hostname(); host != "" {
		cfg.Host = host
	}
	if p := u.Port(); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			cfg.Port = port
		}
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			cfg.Password = pw
		}
	}
	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		cfg.DBName = db
	}
	if ssl := u.Query().Get("sslmode"); ssl != "" {
		cfg.SSLMode = ssl
	}
	return cfg, nil
}

func buildVectorStore(ctx context.Context, cfg config.Config) (vectorstore.Store, func(), error) {
	if strings.TrimSpace(cfg.OpenSearchURL) == "" {
		store := vectorstore.NewInMemoryStore()
		return store, func() { _ = store.Close() }, nil
	}

	store, err := vectorstore.NewOpenSearchStore(ctx, vectorstore.OpenSearchConfig{
		Addresses: []string{cfg.OpenSearchURL},
	})
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func buildAuditLog(ctx context.Context, cfg config.Config) (audit.Log, func(), error) {
	if strings.TrimSpace(cfg.MongoURI) == "" {
		l := audit.NewInMemoryLog()
		return l, func() { _ = l.Close(ctx) }, nil
	}

	l, err := audit.NewMongoLog(ctx, &audit.Config{URI: cfg.MongoURI, Database: "plagdetect", Collection: "detection_audit"})
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = l.Close(ctx) }, nil
}

func buildEmbeddingCache(cfg config.Config) embedder.Cache {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	return cache.NewRedisCache(&cache.Config{Addr: cfg.RedisAddr, Prefix: "plagdetect:embed:"})
}

func buildEmbedder(cfg config.Config) (embedder.Embedder, error) {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required to embed chunk text")
	}
	backend := embedder.NewOpenAIBackend(cfg.OpenAIAPIKey, "", openaisdk.EmbeddingModelTextEmbedding3Small, cfg.EmbeddingDims)
	return embedder.New(backend, buildEmbeddingCache(cfg), embedder.DefaultConfig()), nil
}

// buildExplainer wires the optional AI-explanation hook (§9): Anthropic
// first, Gemini second, disabled entirely if neither key is configured.
func buildExplainer(ctx context.Context, cfg config.Config) explain.Explainer {
	if strings.TrimSpace(cfg.AnthropicAPIKey) != "" {
		acfg := explain.DefaultAnthropicConfig()
		acfg.APIKey = cfg.AnthropicAPIKey
		return explain.NewAnthropicExplainer(acfg)
	}
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		gcfg := explain.DefaultGeminiConfig()
		gcfg.APIKey = cfg.GeminiAPIKey
		exp, err := explain.NewGeminiExplainer(ctx, gcfg)
		if err != nil {
			log.Printf("detectord: gemini explainer disabled: %v", err)
			return nil
		}
		return exp
	}
	return nil
}
