// Command mcpserver runs the plagiarism-detection MCP tool server standalone,
// backed by in-memory vector store, registry and audit implementations (it
// reads no backend connection settings; only the OpenAI embedder needs
// configuring), mirroring the teacher's examples/mcp
// stdio/http split in a single binary selected by a flag.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	openaisdk "github.com/openai/openai-go/v3"

	"github.com/corpusguard/plagdetect/audit"
	"github.com/corpusguard/plagdetect/chunking"
	"github.com/corpusguard/plagdetect/config"
	"github.com/corpusguard/plagdetect/detector"
	"github.com/corpusguard/plagdetect/docregistry"
	"github.com/corpusguard/plagdetect/embedder"
	"github.com/corpusguard/plagdetect/ingestor"
	"github.com/corpusguard/plagdetect/mcpserver"
	"github.com/corpusguard/plagdetect/pkg/logging"
	"github.com/corpusguard/plagdetect/service"
	"github.com/corpusguard/plagdetect/vectorstore"
)

func main() {
	transport := flag.String("transport", "stdio", "MCP transport: stdio or http")
	host := flag.String("host", "127.0.0.1", "host to bind for the http transport")
	port := flag.Int("port", 8080, "port to bind for the http transport")
	path := flag.String("path", "/mcp", "HTTP path for the MCP streamable endpoint")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("mcpserver: load config: %v", err)
	}
	if cfg.OpenAIAPIKey == "" {
		log.Fatalf("mcpserver: OPENAI_API_KEY is required to embed chunk text")
	}

	chunker := chunking.New(
		chunking.WithChunkSize(cfg.ChunkSize),
		chunking.WithOverlap(cfg.ChunkOverlap),
		chunking.WithMinChunkSize(cfg.MinChunkSize),
	)
	backend := embedder.NewOpenAIBackend(cfg.OpenAIAPIKey, "", openaisdk.EmbeddingModelTextEmbedding3Small, cfg.EmbeddingDims)
	emb := embedder.New(backend, nil, embedder.DefaultConfig())
	store := vectorstore.NewInMemoryStore()
	registry := docregistry.NewInMemoryRegistry()
	auditLog := audit.NewInMemoryLog()

	det := detector.New(chunker, emb, store, registry, nil, detector.DefaultConfig())
	ing := ingestor.New(chunker, emb, store, registry)
	svc := service.New(det, ing, registry, auditLog, logging.Logger())

	server := mcpserver.NewServer("plagdetect-mcp", svc)

	ctx := context.Background()
	switch *transport {
	case "http":
		handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
			if r.URL.Path == *path {
				return server
			}
			return nil
		}, nil)
		mux := http.NewServeMux()
		mux.Handle(*path, handler)
		addr := fmt.Sprintf("%s:%d", *host, *port)
		log.Printf("mcpserver: serving MCP streamable endpoint at http://%s%s", addr, *path)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("mcpserver: http server stopped: %v", err)
		}
	default:
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
			log.Fatalf("mcpserver: stdio server stopped: %v", err)
		}
	}
}
