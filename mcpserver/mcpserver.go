// Package mcpserver exposes the detector's RPC surface (§6) as MCP tools,
// so any MCP-speaking client (editor, agent harness) can run plagiarism
// checks and manage the document corpus. Tool registration follows the
// teacher's examples/mcp/demo.NewServer pattern: one mcp.AddTool call per
// operation, each with a small typed args struct.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/corpusguard/plagdetect/detector"
	"github.com/corpusguard/plagdetect/service"
)

// NewServer builds the MCP server exposing svc's operations as tools.
func NewServer(name string, svc *service.Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: "0.1.0",
		Title:   "plagiarism detection server",
	}, nil)

	addCheckPlagiarism(server, svc)
	addUploadDocument(server, svc)
	addBatchUpload(server, svc)
	addGetDocument(server, svc)
	addDeleteDocument(server, svc)
	addSearchDocuments(server, svc)
	addHealthCheck(server, svc)
	addIndexPdfFromMinio(server, svc)
	addCheckPdfFromMinio(server, svc)

	return server
}

func addCheckPlagiarism(server *mcp.Server, svc *service.Service) {
	type args struct {
		Text              string   `json:"text" jsonschema:"Text to check for plagiarism against the indexed corpus"`
		MinSimilarity     float64  `json:"min_similarity,omitempty" jsonschema:"Minimum combined score for a match to count, defaults to 0.5"`
		TopK              int      `json:"top_k,omitempty" jsonschema:"Maximum matches to return (also the per-chunk search depth), defaults to 10"`
		IncludeAIAnalysis bool     `json:"include_ai_analysis,omitempty" jsonschema:"Whether to request an AI-written explanation of the verdict"`
		ExcludeDocIDs     []string `json:"exclude_doc_ids,omitempty" jsonschema:"Document IDs to exclude from matching"`
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_plagiarism",
		Description: "Check submitted text for overlap with the indexed document corpus and return a percentage/severity verdict",
	}, func(ctx context.Context, req *mcp.CallToolRequest, a args) (*mcp.CallToolResult, any, error) {
		opts := detector.DefaultCheckOptions()
		if a.MinSimilarity > 0 {
			opts.MinSimilarity = a.MinSimilarity
		}
		if a.TopK > 0 {
			opts.TopK = a.TopK
		}
		opts.IncludeAIAnalysis = a.IncludeAIAnalysis
		if len(a.ExcludeDocIDs) > 0 {
			opts.ExcludeDocs = make(map[string]struct{}, len(a.ExcludeDocIDs))
			for _, id := range a.ExcludeDocIDs {
				opts.ExcludeDocs[id] = struct{}{}
			}
		}

		verdict, err := svc.CheckPlagiarism(ctx, service.CheckRequest{Text: a.Text, Options: opts})
		if err != nil {
			return nil, nil, err
		}
		return textResult(fmt.Sprintf("%.1f%% similarity (%s): %s", verdict.Percentage, verdict.Severity, verdict.Explanation)), verdict, nil
	})
}

func addUploadDocument(server *mcp.Server, svc *service.Service) {
	type args struct {
		Title    string            `json:"title" jsonschema:"Document title"`
		Content  string            `json:"content" jsonschema:"Full document text"`
		Language string            `json:"language,omitempty" jsonschema:"ISO language code"`
		Metadata map[string]string `json:"metadata,omitempty" jsonschema:"Arbitrary key/value metadata"`
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "upload_document",
		Description: "Index a document into the corpus so future checks can match against it",
	}, func(ctx context.Context, req *mcp.CallToolRequest, a args) (*mcp.CallToolResult, any, error) {
		res, err := svc.UploadDocument(ctx, service.UploadRequest{
			Title: a.Title, Content: a.Content, Language: a.Language, Metadata: a.Metadata,
		})
		if err != nil {
			return nil, nil, err
		}
		return textResult(fmt.Sprintf("indexed document %s (%d chunks)", res.DocID, res.ChunkCount)), res, nil
	})
}

func addBatchUpload(server *mcp.Server, svc *service.Service) {
	type doc struct {
		Title    string            `json:"title"`
		Content  string            `json:"content"`
		Language string            `json:"language,omitempty"`
		Metadata map[string]string `json:"metadata,omitempty"`
	}
	type args struct {
		Documents []doc `json:"documents" jsonschema:"Documents to ingest in one batch"`
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "batch_upload",
		Description: "Index multiple documents at once; a failure on one document does not stop the rest of the batch",
	}, func(ctx context.Context, req *mcp.CallToolRequest, a args) (*mcp.CallToolResult, any, error) {
		inputs := make([]service.UploadRequest, len(a.Documents))
		for i, d := range a.Documents {
			inputs[i] = service.UploadRequest{Title: d.Title, Content: d.Content, Language: d.Language, Metadata: d.Metadata}
		}
		results, err := svc.BatchUpload(ctx, service.BatchUploadRequest{Documents: inputs})
		if err != nil {
			return nil, nil, err
		}

		var failed int
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		return textResult(fmt.Sprintf("ingested %d documents, %d failed", len(results), failed)), results, nil
	})
}

func addGetDocument(server *mcp.Server, svc *service.Service) {
	type args struct {
		ID             string `json:"id" jsonschema:"Document ID"`
		IncludeContent bool   `json:"include_content,omitempty" jsonschema:"Whether to return full document content"`
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_document",
		Description: "Fetch a previously indexed document by ID",
	}, func(ctx context.Context, req *mcp.CallToolRequest, a args) (*mcp.CallToolResult, any, error) {
		doc, err := svc.GetDocument(ctx, a.ID, a.IncludeContent)
		if err != nil {
			return nil, nil, err
		}
		b, _ := json.Marshal(doc)
		return textResult(string(b)), doc, nil
	})
}

func addDeleteDocument(server *mcp.Server, svc *service.Service) {
	type args struct {
		ID string `json:"id" jsonschema:"Document ID to delete"`
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Remove a document from the corpus; deleting an unknown ID is not an error",
	}, func(ctx context.Context, req *mcp.CallToolRequest, a args) (*mcp.CallToolResult, any, error) {
		ok, err := svc.DeleteDocument(ctx, a.ID)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			return textResult("deleted"), ok, nil
		}
		return textResult("no such document"), ok, nil
	})
}

func addSearchDocuments(server *mcp.Server, svc *service.Service) {
	type args struct {
		Text   string `json:"text,omitempty" jsonschema:"Substring to search for in title/content"`
		Limit  int    `json:"limit,omitempty" jsonschema:"Maximum results to return"`
		Offset int    `json:"offset,omitempty" jsonschema:"Pagination offset"`
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search indexed documents by title/content substring",
	}, func(ctx context.Context, req *mcp.CallToolRequest, a args) (*mcp.CallToolResult, any, error) {
		docs, total, err := svc.SearchDocuments(ctx, service.SearchRequest{Text: a.Text, Limit: a.Limit, Offset: a.Offset})
		if err != nil {
			return nil, nil, err
		}
		titles := make([]string, len(docs))
		for i, d := range docs {
			titles[i] = d.Title
		}
		return textResult(fmt.Sprintf("%d total match(es): %s", total, strings.Join(titles, ", "))), docs, nil
	})
}

func addHealthCheck(server *mcp.Server, svc *service.Service) {
	type args struct{}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "health_check",
		Description: "Report whether the document registry backend is reachable",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ args) (*mcp.CallToolResult, any, error) {
		status := svc.HealthCheck(ctx)
		return textResult(fmt.Sprintf("healthy=%v %v", status.Healthy, status.Details)), status, nil
	})
}

func addIndexPdfFromMinio(server *mcp.Server, svc *service.Service) {
	type args struct {
		ObjectPath string `json:"object_path" jsonschema:"Object key of the PDF within the configured MinIO bucket"`
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_pdf_from_minio",
		Description: "Fetch a PDF from object storage, extract its text, and index it as a new document",
	}, func(ctx context.Context, req *mcp.CallToolRequest, a args) (*mcp.CallToolResult, any, error) {
		res, err := svc.IndexPdfFromMinio(ctx, service.PdfRequest{ObjectPath: a.ObjectPath})
		if err != nil {
			return nil, nil, err
		}
		return textResult(fmt.Sprintf("indexed document %s (%d chunks)", res.DocID, res.ChunkCount)), res, nil
	})
}

func addCheckPdfFromMinio(server *mcp.Server, svc *service.Service) {
	type args struct {
		ObjectPath    string  `json:"object_path" jsonschema:"Object key of the PDF within the configured MinIO bucket"`
		MinSimilarity float64 `json:"min_similarity,omitempty" jsonschema:"Minimum combined score for a match to count, defaults to 0.5"`
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_pdf_from_minio",
		Description: "Fetch a PDF from object storage and check its extracted text for plagiarism without indexing it",
	}, func(ctx context.Context, req *mcp.CallToolRequest, a args) (*mcp.CallToolResult, any, error) {
		opts := detector.DefaultCheckOptions()
		if a.MinSimilarity > 0 {
			opts.MinSimilarity = a.MinSimilarity
		}
		verdict, err := svc.CheckPdfFromMinio(ctx, service.PdfRequest{ObjectPath: a.ObjectPath, Options: opts})
		if err != nil {
			return nil, nil, err
		}
		return textResult(fmt.Sprintf("%.1f%% similarity (%s): %s", verdict.Percentage, verdict.Severity, verdict.Explanation)), verdict, nil
	})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
