package docregistry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/corpusguard/plagdetect/document"
)

// PostgresRegistry implements Registry over PostgreSQL, adapted from the
// teacher's memory/store.PostgresStore.
type PostgresRegistry struct {
	db *sql.DB
}

var _ Registry = (*PostgresRegistry)(nil)

// PostgresConfig holds the connection parameters for a PostgresRegistry.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultPostgresConfig returns conservative local defaults.
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:    "localhost",
		Port:    5432,
		User:    "postgres",
		DBName:  "plagdetect",
		SSLMode: "disable",
	}
}

// NewPostgresRegistry connects to PostgreSQL and ensures the documents
// table exists.
func NewPostgresRegistry(ctx context.Context, cfg *PostgresConfig) (*PostgresRegistry, error) {
	if cfg == nil {
		cfg = DefaultPostgresConfig()
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	reg := &PostgresRegistry{db: db}
	if err := reg.createTable(ctx); err != nil {
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return reg, nil
}

func (r *PostgresRegistry) createTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS documents (
		id VARCHAR(255) PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		language VARCHAR(16) NOT NULL DEFAULT '',
		metadata JSONB,
		chunk_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
	`)
	return err
}

func (r *PostgresRegistry) Put(ctx context.Context, doc document.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO documents (id, title, content, language, metadata, chunk_count, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		content = EXCLUDED.content,
		language = EXCLUDED.language,
		metadata = EXCLUDED.metadata,
		chunk_count = EXCLUDED.chunk_count
	`, doc.ID, doc.Title, doc.Content, doc.Language, string(metadataJSON), doc.ChunkCount, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *PostgresRegistry) Get(ctx context.Context, id string, includeContent bool) (document.Document, bool, error) {
	var doc document.Document
	var metadataJSON string
	var content string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, content, language, metadata, chunk_count, created_at FROM documents WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.Title, &content, &doc.Language, &metadataJSON, &doc.ChunkCount, &doc.CreatedAt)
	if err == sql.ErrNoRows {
		return document.Document{}, false, nil
	}
	if err != nil {
		return document.Document{}, false, fmt.Errorf("get document: %w", err)
	}

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return document.Document{}, false, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if includeContent {
		doc.Content = content
	}
	return doc, true, nil
}

func (r *PostgresRegistry) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRegistry) Search(ctx context.Context, q SearchQuery) ([]document.Document, int, error) {
	like := "%" + q.Text + "%"
	var rows *sql.Rows
	var err error
	if q.Text == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, title, language, metadata, chunk_count, created_at FROM documents ORDER BY created_at DESC`)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, title, language, metadata, chunk_count, created_at FROM documents
			 WHERE title ILIKE $1 OR content ILIKE $1 ORDER BY created_at DESC`, like)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var all []document.Document
	for rows.Next() {
		var doc document.Document
		var metadataJSON string
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Language, &metadataJSON, &doc.ChunkCount, &doc.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		if metadataJSON != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
				return nil, 0, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		all = append(all, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate documents: %w", err)
	}

	total := len(all)
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if q.Limit > 0 && offset+q.Limit < end {
		end = offset + q.Limit
	}
	return all[offset:end], total, nil
}

func (r *PostgresRegistry) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func (r *PostgresRegistry) Close() error {
	return r.db.Close()
}
