package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore keeps vector records in a local SQLite file with the embedding
// and metadata serialized as JSON, and scores queries with an in-process
// cosine scan. Fine for a single-org knowledge base of a few thousand chunks.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err = s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS vector_records (
        id TEXT PRIMARY KEY,
        content TEXT NOT NULL,
        embedding_json TEXT NOT NULL, -- JSON array of float32
        metadata_json TEXT NOT NULL,  -- JSON object of string -> string
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Upsert(ctx context.Context, rec VectorRecord) error {
	embJSON, err := json.Marshal(rec.Embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}
	metaJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO vector_records (id, content, embedding_json, metadata_json)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             content = excluded.content,
             embedding_json = excluded.embedding_json,
             metadata_json = excluded.metadata_json`,
		rec.ID, rec.Content, string(embJSON), string(metaJSON))
	if err != nil {
		return fmt.Errorf("failed to upsert vector record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, vector []float32, topK int, minScore float32) ([]Match, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content, embedding_json, metadata_json FROM vector_records")
	if err != nil {
		return nil, fmt.Errorf("failed to query vector records: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			id, content, embJSON, metaJSON string
		)
		if err := rows.Scan(&id, &content, &embJSON, &metaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan vector record: %w", err)
		}

		var embedding []float32
		if err := json.Unmarshal([]byte(embJSON), &embedding); err != nil || len(embedding) == 0 {
			// A record with a corrupt or missing embedding can never match.
			continue
		}

		score, err := cosineSimilarity(vector, embedding)
		if err != nil {
			continue
		}
		if score < minScore {
			continue
		}

		metadata := map[string]string{}
		if err := json.Unmarshal([]byte(metaJSON), &metadata); err != nil {
			metadata = map[string]string{}
		}

		matches = append(matches, Match{
			ID:       id,
			Content:  content,
			Metadata: metadata,
			Score:    score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vector records: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}
