// Package pdfingest fetches PDF objects from a MinIO bucket and feeds
// their extracted text through the standard ingestion/check path
// (§6 IndexPdfFromMinio / CheckPdfFromMinio). PDF layout extraction
// itself stays external per §6 — this package only owns object retrieval
// and discarding boilerplate blocks the extractor hands back. Object
// fetch glue is adapted from the pack's go-inference-service
// MinIOService.
package pdfingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/corpusguard/plagdetect/preprocess"
)

// minBlockLength discards extracted blocks shorter than this many
// characters: running headers, page numbers, and footers rarely carry
// enough text to matter for detection and otherwise pollute chunk
// boundaries.
const minBlockLength = 200

// boilerplatePatterns flag blocks that are structural rather than
// substantive, so they can be dropped before chunking.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^table of contents$`),
	regexp.MustCompile(`(?i)^list of (figures|tables)$`),
	regexp.MustCompile(`(?i)^(references|bibliography)$`),
	regexp.MustCompile(`^\s*page\s+\d+(\s+of\s+\d+)?\s*$`),
}

// Config configures the MinIO client used to fetch PDF objects.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Extractor turns raw PDF bytes into a sequence of text blocks, in
// reading order. This is the external collaborator §6 keeps out of
// scope: implementations wrap whatever PDF layout engine a deployment
// chooses.
type Extractor interface {
	ExtractBlocks(ctx context.Context, pdf []byte) ([]string, error)
}

// Fetcher retrieves PDF objects from object storage and turns them into
// detector-ready text.
type Fetcher struct {
	client    *minio.Client
	bucket    string
	extractor Extractor
}

// New builds a Fetcher backed by a MinIO client.
func New(cfg Config, extractor Extractor) (*Fetcher, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("pdfingest: create minio client: %w", err)
	}
	return &Fetcher{client: client, bucket: cfg.Bucket, extractor: extractor}, nil
}

// FetchText downloads objectPath from the configured bucket, extracts its
// text blocks, discards boilerplate, and returns clean document text ready
// for the chunker.
func (f *Fetcher) FetchText(ctx context.Context, objectPath string) (string, error) {
	obj, err := f.client.GetObject(ctx, f.bucket, objectPath, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("pdfingest: fetch %s: %w", objectPath, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return "", fmt.Errorf("pdfingest: read %s: %w", objectPath, err)
	}

	blocks, err := f.extractor.ExtractBlocks(ctx, buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("pdfingest: extract %s: %w", objectPath, err)
	}

	kept := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if isBoilerplate(b) {
			continue
		}
		kept = append(kept, b)
	}

	return preprocess.Document(strings.Join(kept, "\n\n")), nil
}

// isBoilerplate reports whether block is a structural element (table of
// contents, running header/footer, bibliography heading) rather than
// substantive document content: either it names a known structural
// section, or it is too short to be body text (running headers/footers
// rarely match a fixed pattern but are almost always under
// minBlockLength).
func isBoilerplate(block string) bool {
	trimmed := strings.TrimSpace(block)
	for _, p := range boilerplatePatterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return len(trimmed) < minBlockLength
}
