//go:build sqlite_vec && cgo

package embedding

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/todozi/todozi/internal/apperror"
	"github.com/todozi/todozi/internal/logging"
)

func init() {
	// Registers the sqlite-vec extension with the mattn/go-sqlite3 driver,
	// grounded on the teacher's internal/store/init_vec.go.
	vec.Auto()
}

// SQLiteVecIndex is the cgo-accelerated ANN implementation: a real
// sqlite-vec vec0 virtual table, used only when the binary is built with
// -tags sqlite_vec,cgo (the default build uses SQLiteANNIndex instead).
type SQLiteVecIndex struct {
	db  *sql.DB
	dim int
}

// NewSQLiteVecIndex opens path and creates the vec0 virtual table for
// vectors of the given dimensionality, grounded on the teacher's
// internal/store/vector_store.go initVecIndex/backfillVecIndex.
func NewSQLiteVecIndex(path string, dim int) (*SQLiteVecIndex, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, apperror.Wrap(apperror.Io, "opening sqlite-vec database", err)
	}
	schema := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS vec_index USING vec0(
			content_id TEXT PRIMARY KEY,
			content_type TEXT,
			embedding FLOAT[%d]
		)`, dim)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperror.Wrap(apperror.Io, "creating sqlite-vec table", err)
	}
	logging.Embedding("sqlite-vec ANN index opened at %s (dim=%d)", path, dim)
	return &SQLiteVecIndex{db: db, dim: dim}, nil
}

func (idx *SQLiteVecIndex) Upsert(ctx context.Context, contentID, contentType string, vecBuf []float32) error {
	if len(vecBuf) != idx.dim {
		return apperror.New(apperror.Validation, fmt.Sprintf("sqlite-vec: vector has %d dims, want %d", len(vecBuf), idx.dim))
	}
	blob := encodeVector(vecBuf)
	_, err := idx.db.ExecContext(ctx,
		`INSERT INTO vec_index (content_id, content_type, embedding) VALUES (?, ?, ?)
		 ON CONFLICT(content_id) DO UPDATE SET content_type=excluded.content_type, embedding=excluded.embedding`,
		contentID, contentType, blob)
	if err != nil {
		return apperror.Wrap(apperror.Io, "upserting sqlite-vec row", err)
	}
	return nil
}

func (idx *SQLiteVecIndex) Delete(ctx context.Context, contentID string) error {
	_, err := idx.db.ExecContext(ctx, `DELETE FROM vec_index WHERE content_id = ?`, contentID)
	if err != nil {
		return apperror.Wrap(apperror.Io, "deleting sqlite-vec row", err)
	}
	return nil
}

func (idx *SQLiteVecIndex) Search(ctx context.Context, query []float32, limit int) ([]ANNResult, error) {
	rows, err := idx.db.QueryContext(ctx,
		`SELECT content_id, content_type, distance FROM vec_index
		 WHERE embedding MATCH ? AND k = ?
		 ORDER BY distance`,
		encodeVector(query), limit)
	if err != nil {
		return nil, apperror.Wrap(apperror.Io, "querying sqlite-vec index", err)
	}
	defer rows.Close()

	var out []ANNResult
	for rows.Next() {
		var r ANNResult
		if err := rows.Scan(&r.ContentID, &r.ContentType, &r.Distance); err != nil {
			return nil, apperror.Wrap(apperror.Io, "scanning sqlite-vec result", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (idx *SQLiteVecIndex) Close() error {
	return idx.db.Close()
}
