package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/corpusguard/plagdetect/audit"
	"github.com/corpusguard/plagdetect/detector"
	"github.com/corpusguard/plagdetect/docregistry"
	"github.com/corpusguard/plagdetect/document"
	"github.com/corpusguard/plagdetect/ingestor"
	"github.com/corpusguard/plagdetect/pdfingest"
	pkgerrors "github.com/corpusguard/plagdetect/pkg/errors"
)

// CheckRequest is the CheckPlagiarism operation's input.
type CheckRequest struct {
	Text    string
	Options detector.CheckOptions
}

// UploadRequest is the UploadDocument operation's input.
type UploadRequest struct {
	ID       string
	Title    string
	Content  string
	Language string
	Metadata map[string]string
}

// BatchUploadRequest is the BatchUpload operation's input.
type BatchUploadRequest struct {
	Documents []UploadRequest
}

// SearchRequest is the SearchDocuments operation's input.
type SearchRequest struct {
	Text   string
	Limit  int
	Offset int
}

// HealthStatus reports the outcome of HealthCheck.
type HealthStatus struct {
	Healthy bool
	Details map[string]string
}

// PdfRequest identifies a PDF object in the configured MinIO bucket.
type PdfRequest struct {
	ObjectPath string
	Options    detector.CheckOptions // used only by CheckPdfFromMinio
}

// Service exposes the RPC surface of §6, wiring together the detector,
// ingestor, document registry, audit log and PDF fetcher behind a shared
// middleware chain.
type Service struct {
	detector *detector.Detector
	ingestor *ingestor.Ingestor
	registry docregistry.Registry
	auditLog audit.Log
	pdf      *pdfingest.Fetcher // nil disables IndexPdfFromMinio/CheckPdfFromMinio
	chain    *Chain
}

// Option configures a Service at construction time.
type Option func(*Service)

// WithPDFFetcher enables the MinIO-backed PDF operations.
func WithPDFFetcher(f *pdfingest.Fetcher) Option {
	return func(s *Service) { s.pdf = f }
}

// WithMiddleware appends middlewares to the default chain, in the given
// order, after request logging/validation but before the operation runs.
func WithMiddleware(mw ...Middleware) Option {
	return func(s *Service) {
		for _, m := range mw {
			s.chain.Add(m)
		}
	}
}

// New builds a Service from its collaborators. logger may be nil to
// disable request/response logging.
func New(det *detector.Detector, ing *ingestor.Ingestor, registry docregistry.Registry, auditLog audit.Log, logger *slog.Logger, opts ...Option) *Service {
	chain := NewChain(
		NewRequestValidator(validateRequest),
		NewRequestLogger(logger),
		NewResponseLogger(logger),
	)
	s := &Service{detector: det, ingestor: ing, registry: registry, auditLog: auditLog, chain: chain}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckPlagiarism runs the full detection pipeline over req.Text and
// records the outcome in the audit log (§6).
func (s *Service) CheckPlagiarism(ctx context.Context, req CheckRequest) (detector.Verdict, error) {
	rpc := NewRPCContext(ctx, "CheckPlagiarism", req)
	var verdict detector.Verdict

	err := s.chain.Execute(rpc, func(rpc *RPCContext) error {
		r := rpc.Request.(CheckRequest)
		v, err := s.detector.CheckPlagiarism(rpc.Context(), r.Text, r.Options)
		verdict = v
		rpc.Response = v
		s.recordAudit(rpc.Context(), "", v, err)
		return err
	})
	return verdict, err
}

// UploadDocument ingests a single document (§6).
func (s *Service) UploadDocument(ctx context.Context, req UploadRequest) (ingestor.Result, error) {
	rpc := NewRPCContext(ctx, "UploadDocument", req)
	var result ingestor.Result

	err := s.chain.Execute(rpc, func(rpc *RPCContext) error {
		r := rpc.Request.(UploadRequest)
		res, err := s.ingestor.Upload(rpc.Context(), ingestor.Input{
			ID: r.ID, Title: r.Title, Content: r.Content, Language: r.Language, Metadata: r.Metadata,
		})
		result = res
		rpc.Response = res
		return err
	})
	return result, err
}

// BatchUpload ingests a batch of documents, recording per-document
// failures without aborting the remaining documents (§7).
func (s *Service) BatchUpload(ctx context.Context, req BatchUploadRequest) ([]ingestor.BatchResult, error) {
	rpc := NewRPCContext(ctx, "BatchUpload", req)
	var results []ingestor.BatchResult

	err := s.chain.Execute(rpc, func(rpc *RPCContext) error {
		r := rpc.Request.(BatchUploadRequest)
		inputs := make([]ingestor.Input, len(r.Documents))
		for i, d := range r.Documents {
			inputs[i] = ingestor.Input{ID: d.ID, Title: d.Title, Content: d.Content, Language: d.Language, Metadata: d.Metadata}
		}
		results = s.ingestor.BatchUpload(rpc.Context(), inputs)
		rpc.Response = results
		return nil
	})
	return results, err
}

// GetDocument fetches document metadata (and, if includeContent, content)
// by id (§6).
func (s *Service) GetDocument(ctx context.Context, id string, includeContent bool) (document.Document, error) {
	rpc := NewRPCContext(ctx, "GetDocument", id)
	var doc document.Document

	err := s.chain.Execute(rpc, func(rpc *RPCContext) error {
		d, ok, err := s.registry.Get(rpc.Context(), id, includeContent)
		if err != nil {
			return classifyError("get document", rpc.Context(), err)
		}
		if !ok {
			return pkgerrors.NotFound("get document", pkgerrors.ErrNotFound)
		}
		doc = d
		rpc.Response = d
		return nil
	})
	return doc, err
}

// DeleteDocument removes a document from the registry and vector store.
// Deleting an unknown id reports ok=false rather than an error (§8).
func (s *Service) DeleteDocument(ctx context.Context, id string) (bool, error) {
	rpc := NewRPCContext(ctx, "DeleteDocument", id)
	var ok bool

	err := s.chain.Execute(rpc, func(rpc *RPCContext) error {
		deleted, err := s.ingestor.Delete(rpc.Context(), id)
		ok = deleted
		rpc.Response = deleted
		return err
	})
	return ok, err
}

// SearchDocuments performs a substring search over registered documents
// (§6 supplemented feature).
func (s *Service) SearchDocuments(ctx context.Context, req SearchRequest) ([]document.Document, int, error) {
	rpc := NewRPCContext(ctx, "SearchDocuments", req)
	var docs []document.Document
	var total int

	err := s.chain.Execute(rpc, func(rpc *RPCContext) error {
		r := rpc.Request.(SearchRequest)
		found, count, err := s.registry.Search(rpc.Context(), docregistry.SearchQuery{Text: r.Text, Limit: r.Limit, Offset: r.Offset})
		if err != nil {
			return classifyError("search documents", rpc.Context(), err)
		}
		docs, total = found, count
		rpc.Response = found
		return nil
	})
	return docs, total, err
}

// HealthCheck reports whether the registry backend is reachable (§6).
func (s *Service) HealthCheck(ctx context.Context) HealthStatus {
	details := make(map[string]string)
	healthy := true

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.registry.Count(checkCtx); err != nil {
		healthy = false
		details["registry"] = err.Error()
	} else {
		details["registry"] = "ok"
	}

	return HealthStatus{Healthy: healthy, Details: details}
}

// IndexPdfFromMinio fetches a PDF object from the configured bucket,
// extracts and cleans its text, and ingests it as a new document (§6).
func (s *Service) IndexPdfFromMinio(ctx context.Context, req PdfRequest) (ingestor.Result, error) {
	rpc := NewRPCContext(ctx, "IndexPdfFromMinio", req)
	var result ingestor.Result

	err := s.chain.Execute(rpc, func(rpc *RPCContext) error {
		if s.pdf == nil {
			return pkgerrors.Invalid("index pdf", errPDFDisabled)
		}
		r := rpc.Request.(PdfRequest)
		text, err := s.pdf.FetchText(rpc.Context(), r.ObjectPath)
		if err != nil {
			return pkgerrors.Internal("fetch pdf", err)
		}
		res, err := s.ingestor.Upload(rpc.Context(), ingestor.Input{Title: r.ObjectPath, Content: text})
		result = res
		rpc.Response = res
		return err
	})
	return result, err
}

// CheckPdfFromMinio fetches a PDF object and runs CheckPlagiarism over its
// extracted text without ingesting it (§6).
func (s *Service) CheckPdfFromMinio(ctx context.Context, req PdfRequest) (detector.Verdict, error) {
	rpc := NewRPCContext(ctx, "CheckPdfFromMinio", req)
	var verdict detector.Verdict

	err := s.chain.Execute(rpc, func(rpc *RPCContext) error {
		if s.pdf == nil {
			return pkgerrors.Invalid("check pdf", errPDFDisabled)
		}
		r := rpc.Request.(PdfRequest)
		text, err := s.pdf.FetchText(rpc.Context(), r.ObjectPath)
		if err != nil {
			return pkgerrors.Internal("fetch pdf", err)
		}
		v, err := s.detector.CheckPlagiarism(rpc.Context(), text, r.Options)
		verdict = v
		rpc.Response = v
		s.recordAudit(rpc.Context(), "", v, err)
		return err
	})
	return verdict, err
}

func (s *Service) recordAudit(ctx context.Context, docID string, v detector.Verdict, checkErr error) {
	if s.auditLog == nil {
		return
	}
	entry := audit.Entry{
		RequestID:  document.NewID(),
		DocumentID: docID,
		Percentage: v.Percentage,
		Severity:   string(v.Severity),
		MatchCount: len(v.Matches),
		ChunkCount: v.Metrics.ChunkCount,
		Duration:   v.Metrics.Duration,
	}
	if checkErr != nil {
		entry.Err = checkErr.Error()
	}
	// Audit writes are best-effort: a logging failure must not fail the
	// caller's request.
	_ = s.auditLog.Record(ctx, entry)
}

func classifyError(op string, ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return pkgerrors.DeadlineExceeded(op, ctx.Err())
	}
	return pkgerrors.Unavailable(op, err)
}

func validateRequest(request any) error {
	switch r := request.(type) {
	case CheckRequest:
		if strings.TrimSpace(r.Text) == "" {
			return pkgerrors.Invalid("check plagiarism", errEmptyText)
		}
	case UploadRequest:
		if strings.TrimSpace(r.Content) == "" {
			return pkgerrors.Invalid("upload document", errEmptyText)
		}
	case BatchUploadRequest:
		if len(r.Documents) == 0 {
			return pkgerrors.Invalid("batch upload", errEmptyBatch)
		}
	case PdfRequest:
		if strings.TrimSpace(r.ObjectPath) == "" {
			return pkgerrors.Invalid("pdf operation", errEmptyObjectPath)
		}
	}
	return nil
}
