package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"museum-guide/internal/contextutil"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// PgVectorStore implements VectorStore on PostgreSQL with the pgvector extension.
// Each collection is a table; similarity is reported as a decimal string
// exactly as Postgres renders it.
type PgVectorStore struct {
	pool *pgxpool.Pool
}

// NewPgVectorStore connects to Postgres and verifies the connection.
func NewPgVectorStore(ctx context.Context, dsn string) (*PgVectorStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PgVectorStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PgVectorStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func tableName(collection string) (string, error) {
	if !identifierPattern.MatchString(collection) {
		return "", fmt.Errorf("invalid collection name %q", collection)
	}
	return collection, nil
}

// Upsert inserts or updates rows in the collection table.
func (s *PgVectorStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	table, err := tableName(collection)
	if err != nil {
		return err
	}

	upsertSQL := fmt.Sprintf(`
		INSERT INTO %s (id, tenant_id, content, source_url, metadata, embedding)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			tenant_id = EXCLUDED.tenant_id,
			content = EXCLUDED.content,
			source_url = EXCLUDED.source_url,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding
	`, table)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, point := range points {
		row, err := splitPayload(point.Meta)
		if err != nil {
			return fmt.Errorf("invalid payload for point %s: %w", point.ID, err)
		}

		_, err = tx.Exec(ctx, upsertSQL,
			point.ID, row.tenantID, row.text, row.sourceURL, row.metadata, pgvector.NewVector(point.Vec))
		if err != nil {
			return fmt.Errorf("failed to upsert point %s: %w", point.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

type payloadRow struct {
	tenantID  string
	text      string
	sourceURL string
	metadata  []byte
}

// splitPayload pulls the columns out of a point payload; the remainder goes to metadata.
func splitPayload(meta map[string]any) (payloadRow, error) {
	var row payloadRow
	rest := make(map[string]any, len(meta))
	for k, v := range meta {
		switch k {
		case FieldTenantID:
			s, ok := v.(string)
			if !ok || s == "" {
				return row, ErrTenantFilterRequired
			}
			row.tenantID = s
		case FieldText:
			s, _ := v.(string)
			row.text = s
		case FieldSourceURL:
			s, _ := v.(string)
			row.sourceURL = s
		default:
			rest[k] = v
		}
	}
	if row.tenantID == "" {
		return row, ErrTenantFilterRequired
	}

	metadata, err := json.Marshal(rest)
	if err != nil {
		return row, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	row.metadata = metadata
	return row, nil
}

// Search returns the k nearest rows for one tenant by cosine distance.
func (s *PgVectorStore) Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	tenantID, err := tenantFromFilters(filters)
	if err != nil {
		return nil, err
	}
	if len(filters) > 1 {
		return nil, errors.New("pgvector store only supports the tenant_id filter")
	}

	table, err := tableName(collection)
	if err != nil {
		return nil, err
	}

	searchSQL := fmt.Sprintf(`
		SELECT id::text, tenant_id, content, COALESCE(source_url, ''), metadata,
		       (1 - (embedding <=> $1))::text AS similarity
		FROM %s
		WHERE tenant_id = $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`, table)

	rows, err := s.pool.Query(ctx, searchSQL, pgvector.NewVector(query), tenantID, k)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to execute vector search: %w", err)
	}
	defer rows.Close()

	results := make([]SearchResult, 0, k)
	for rows.Next() {
		var id, rowTenant, content, sourceURL, similarity string
		var metadataBytes []byte
		if err := rows.Scan(&id, &rowTenant, &content, &sourceURL, &metadataBytes, &similarity); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		meta := make(map[string]any)
		if len(metadataBytes) > 0 {
			if err := json.Unmarshal(metadataBytes, &meta); err != nil {
				logger.WarnContext(ctx, "failed to decode row metadata", "id", id, "error", err)
				meta = make(map[string]any)
			}
		}
		meta[FieldTenantID] = rowTenant
		meta[FieldText] = content
		if sourceURL != "" {
			meta[FieldSourceURL] = sourceURL
		}

		results = append(results, SearchResult{
			PointID:    id,
			Similarity: similarity,
			Meta:       meta,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	logger.DebugContext(ctx, "search completed", "collection", collection, "k", k, "results", len(results))
	return results, nil
}

// Delete removes rows by id.
func (s *PgVectorStore) Delete(ctx context.Context, collection string, ids []string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(ids) == 0 {
		return nil
	}

	table, err := tableName(collection)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id::text = ANY($1)`, table), ids)
	if err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}

	logger.InfoContext(ctx, "deleted points", "collection", collection, "count", tag.RowsAffected())
	return nil
}

// CollectionExists reports whether the collection table exists.
func (s *PgVectorStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	table, err := tableName(collection)
	if err != nil {
		return false, err
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// EnsureCollection creates the extension, table and tenant index if missing,
// then checks that the embedding column has the expected dimension.
func (s *PgVectorStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	table, err := tableName(collection)
	if err != nil {
		return err
	}

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			content TEXT NOT NULL,
			source_url TEXT,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			embedding vector(%d) NOT NULL
		)`, table, vectorSize),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_tenant_idx ON %s (tenant_id)`, table, table),
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare collection: %w", err)
		}
	}

	// atttypmod carries the declared dimension for vector columns.
	var actualSize int
	err = s.pool.QueryRow(ctx, `
		SELECT atttypmod FROM pg_attribute
		WHERE attrelid = $1::regclass AND attname = 'embedding'
	`, table).Scan(&actualSize)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("collection %s has no embedding column", collection)
		}
		return fmt.Errorf("failed to read collection vector size: %w", err)
	}
	if actualSize != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, actualSize)
	}

	logger.InfoContext(ctx, "collection validated", "collection", collection, "vector_size", vectorSize)
	return nil
}
