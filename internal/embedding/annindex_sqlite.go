package embedding

import (
	"context"
	"database/sql"
	driversql "database/sql/driver"
	"fmt"
	"sort"

	sqlitedriver "modernc.org/sqlite"

	"github.com/todozi/todozi/internal/apperror"
	"github.com/todozi/todozi/internal/logging"
)

// SQLiteANNIndex is the default, always-available ANN acceleration layer:
// a modernc.org/sqlite (pure Go, no cgo) database storing one row per
// mirrored cache entry, with a deterministic SQL scalar function computing
// cosine distance so ranking happens inside the query instead of pulling
// every vector back into the process first. It is registered once per
// process, matching the teacher's internal/store/vec_compat.go pattern of
// installing a vector-distance function alongside modernc.org/sqlite
// rather than requiring the cgo sqlite-vec extension.
type SQLiteANNIndex struct {
	db *sql.DB
}

var annFuncRegistered = false

func registerANNFunc() {
	if annFuncRegistered {
		return
	}
	_ = sqlitedriver.RegisterDeterministicScalarFunction("vector_distance_cos", 2, func(ctx *sqlitedriver.FunctionContext, args []driversql.Value) (driversql.Value, error) {
		a, ok1 := args[0].([]byte)
		b, ok2 := args[1].([]byte)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("vector_distance_cos: expected two BLOB arguments")
		}
		return cosineDistance(decodeVector(a), decodeVector(b)), nil
	})
	annFuncRegistered = true
}

// NewSQLiteANNIndex opens (creating if absent) a sqlite database at path
// and ensures the vectors table and vector_distance_cos function exist.
func NewSQLiteANNIndex(path string) (*SQLiteANNIndex, error) {
	registerANNFunc()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperror.Wrap(apperror.Io, "opening ANN sqlite database", err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS vectors (
		content_id TEXT PRIMARY KEY,
		content_type TEXT NOT NULL,
		vec BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperror.Wrap(apperror.Io, "creating ANN vectors table", err)
	}
	logging.Embedding("ANN sqlite index opened at %s", path)
	return &SQLiteANNIndex{db: db}, nil
}

func (idx *SQLiteANNIndex) Upsert(ctx context.Context, contentID, contentType string, vec []float32) error {
	_, err := idx.db.ExecContext(ctx,
		`INSERT INTO vectors (content_id, content_type, vec) VALUES (?, ?, ?)
		 ON CONFLICT(content_id) DO UPDATE SET content_type=excluded.content_type, vec=excluded.vec`,
		contentID, contentType, encodeVector(vec))
	if err != nil {
		return apperror.Wrap(apperror.Io, "upserting ANN vector", err)
	}
	return nil
}

func (idx *SQLiteANNIndex) Delete(ctx context.Context, contentID string) error {
	_, err := idx.db.ExecContext(ctx, `DELETE FROM vectors WHERE content_id = ?`, contentID)
	if err != nil {
		return apperror.Wrap(apperror.Io, "deleting ANN vector", err)
	}
	return nil
}

func (idx *SQLiteANNIndex) Search(ctx context.Context, query []float32, limit int) ([]ANNResult, error) {
	rows, err := idx.db.QueryContext(ctx,
		`SELECT content_id, content_type, vector_distance_cos(vec, ?) AS dist
		 FROM vectors ORDER BY dist ASC LIMIT ?`,
		encodeVector(query), limit)
	if err != nil {
		return nil, apperror.Wrap(apperror.Io, "querying ANN index", err)
	}
	defer rows.Close()

	var out []ANNResult
	for rows.Next() {
		var r ANNResult
		if err := rows.Scan(&r.ContentID, &r.ContentType, &r.Distance); err != nil {
			return nil, apperror.Wrap(apperror.Io, "scanning ANN result", err)
		}
		out = append(out, r)
	}
	// Some modernc.org/sqlite versions push ORDER BY on a scalar function
	// to the engine; sort defensively so callers never depend on that.
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, rows.Err()
}

func (idx *SQLiteANNIndex) Close() error {
	return idx.db.Close()
}
