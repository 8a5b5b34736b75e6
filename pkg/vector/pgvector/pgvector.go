// Package pgvector provides a PostgreSQL vector driver backed by the pgvector
// extension.
package pgvector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/papercomputeco/clerk/pkg/vector"
)

// DefaultTableName is the default table for invoice embeddings.
const DefaultTableName = "invoice_embeddings"

const uniqueViolation = "23505"

// Driver implements vector.Driver on a PostgreSQL table with a vector column.
type Driver struct {
	pool   *pgxpool.Pool
	table  string
	logger *slog.Logger
}

var _ vector.Driver = (*Driver)(nil)

// Config holds configuration for the pgvector driver.
type Config struct {
	// ConnString is a postgres:// URL or key/value DSN.
	ConnString string

	// TableName defaults to DefaultTableName.
	TableName string

	// Dimensions sizes the vector column.
	Dimensions uint
}

// NewDriver opens a pool and creates the extension and table when missing.
func NewDriver(ctx context.Context, c Config, logger *slog.Logger) (*Driver, error) {
	if c.ConnString == "" {
		return nil, errors.New("postgres connection string is required")
	}
	if c.Dimensions == 0 {
		return nil, errors.New("pgvector embedding dimensions cannot be 0, must be configured")
	}

	table := c.TableName
	if table == "" {
		table = DefaultTableName
	}
	if !validIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	pool, err := pgxpool.New(ctx, c.ConnString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vector.ErrConnection, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", vector.ErrConnection, err)
	}

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				seq BIGSERIAL,
				doc_id TEXT PRIMARY KEY,
				content TEXT NOT NULL DEFAULT '',
				metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
				embedding vector(%d) NOT NULL
			)`, table, c.Dimensions),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_metadata_idx ON %s USING GIN (metadata)`, table, table),
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("preparing schema: %w", err)
		}
	}

	logger.Info("pgvector vector driver initialized",
		"table", table,
		"dimensions", c.Dimensions,
	)

	return &Driver{
		pool:   pool,
		table:  table,
		logger: logger,
	}, nil
}

// Add inserts documents in one transaction. The primary key on doc_id turns
// a repeated id into vector.ErrDuplicateID.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`INSERT INTO %s (doc_id, content, metadata, embedding) VALUES ($1, $2, $3, $4)`, d.table)
	for _, doc := range docs {
		metadata := doc.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		metaJSON, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for doc %s: %w", doc.ID, err)
		}

		_, err = tx.Exec(ctx, query, doc.ID, doc.Content, metaJSON, pgvector.NewVector(doc.Embedding))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("%w: %s", vector.ErrDuplicateID, doc.ID)
			}
			return fmt.Errorf("inserting document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("added documents to pgvector", "count", len(docs))
	return nil
}

// Query orders by L2 distance among rows whose metadata contains where.
func (d *Driver) Query(ctx context.Context, embedding []float32, where vector.Where, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	filter := map[string]any(where)
	if filter == nil {
		filter = map[string]any{}
	}
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("marshaling filter: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT doc_id, content, metadata, embedding <-> $1 AS distance
		FROM %s
		WHERE metadata @> $2::jsonb
		ORDER BY distance, seq
		LIMIT $3
	`, d.table)

	rows, err := d.pool.Query(ctx, query, pgvector.NewVector(embedding), filterJSON, topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	results := []vector.QueryResult{}
	for rows.Next() {
		var (
			r        vector.QueryResult
			metaJSON []byte
			distance float64
		)
		if err := rows.Scan(&r.ID, &r.Content, &metaJSON, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}
		if err := json.Unmarshal(metaJSON, &r.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata for doc %s: %w", r.ID, err)
		}
		r.Distance = float32(distance)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried pgvector", "results", len(results), "filters", len(where))
	return results, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT doc_id, content, metadata, embedding
		FROM %s
		WHERE doc_id = ANY($1)
		ORDER BY seq
	`, d.table)

	rows, err := d.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}

	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (vector.Document, error) {
		var (
			doc      vector.Document
			metaJSON []byte
			emb      pgvector.Vector
		)
		if err := row.Scan(&doc.ID, &doc.Content, &metaJSON, &emb); err != nil {
			return doc, err
		}
		if err := json.Unmarshal(metaJSON, &doc.Metadata); err != nil {
			return doc, err
		}
		doc.Embedding = emb.Slice()
		return doc, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning documents: %w", err)
	}
	return docs, nil
}

// Close releases the connection pool.
func (d *Driver) Close() error {
	d.pool.Close()
	return nil
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return !strings.HasPrefix(s, "pg_")
}
