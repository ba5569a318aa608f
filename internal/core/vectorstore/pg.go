package vectorstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/docquery-ai/docquery/internal/models"
)

//go:embed scripts/initdb.sql
var schemaFS embed.FS

// PgStore backs the vector index with Postgres + pgvector. The namespace is
// a column, so one table serves every document and a namespace-level clear
// is a single DELETE.
type PgStore struct {
	db  *sql.DB
	log *zap.Logger
}

var _ Store = (*PgStore)(nil)

// NewPgStore opens the pool, verifies connectivity, and bootstraps the
// schema once with the configured embedding dimension.
func NewPgStore(ctx context.Context, databaseURL string, embedDim int, log *zap.Logger) (*PgStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if embedDim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", embedDim)
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := ensureSchema(ctx, db, embedDim); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	log.Info("vector store ready", zap.Int("embed_dim", embedDim))
	return &PgStore{db: db, log: log}, nil
}

// ensureSchema runs the embedded DDL when the records table is missing.
func ensureSchema(ctx context.Context, db *sql.DB, embedDim int) error {
	bootCtx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	var exists bool
	err := db.QueryRowContext(bootCtx, `
		SELECT EXISTS (
		  SELECT 1 FROM information_schema.tables
		  WHERE table_name = 'vector_records'
		)`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("schema check failed: %w", err)
	}
	if exists {
		return nil
	}

	raw, err := schemaFS.ReadFile("scripts/initdb.sql")
	if err != nil {
		return fmt.Errorf("read initdb.sql: %w", err)
	}
	ddl := fmt.Sprintf(string(raw), embedDim)

	tx, err := db.BeginTx(bootCtx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(bootCtx, ddl); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("exec bootstrap: %w", err)
	}
	return tx.Commit()
}

func (s *PgStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Reset clears a namespace. Deleting zero rows is success: a namespace that
// was never written to simply has nothing to clear.
func (s *PgStore) Reset(ctx context.Context, namespace string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vector_records WHERE namespace = $1`, namespace)
	if err != nil {
		return fmt.Errorf("reset namespace: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.log.Debug("namespace cleared", zap.String("namespace", namespace), zap.Int64("removed", n))
	}
	return nil
}

// Upsert writes one batch in a single transaction. Identical IDs overwrite,
// which is what makes re-embedding identical content idempotent.
func (s *PgStore) Upsert(ctx context.Context, namespace string, records []models.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO vector_records (namespace, id, text, page_number, source_key, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (namespace, id) DO UPDATE
		SET text = EXCLUDED.text,
		    page_number = EXCLUDED.page_number,
		    source_key = EXCLUDED.source_key,
		    embedding = EXCLUDED.embedding
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		vec := pgvector.NewVector(rec.Values)
		if _, err := stmt.ExecContext(ctx,
			namespace, rec.ID, rec.Text, rec.PageNumber, rec.SourceKey, vec,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Query runs a cosine-distance top-K search scoped to one namespace.
// Score is 1 - distance, clamped into [0,1].
func (s *PgStore) Query(ctx context.Context, namespace string, vector []float32, topK int, filter Filter) ([]models.Match, error) {
	if topK <= 0 {
		topK = 5
	}
	vec := pgvector.NewVector(vector)

	q := `
		SELECT text, page_number, source_key, 1 - (embedding <=> $2) AS score
		FROM vector_records
		WHERE namespace = $1
	`
	args := []any{namespace, vec}
	if filter.SourceKey != "" {
		q += ` AND source_key = $3`
		args = append(args, filter.SourceKey)
	}
	q += fmt.Sprintf(` ORDER BY embedding <=> $2 LIMIT %d`, topK)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Match
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.Text, &m.PageNumber, &m.SourceKey, &m.Score); err != nil {
			return nil, err
		}
		if m.Score < 0 {
			m.Score = 0
		}
		if m.Score > 1 {
			m.Score = 1
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
