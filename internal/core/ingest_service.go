package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/decoded-cipher/inovus-ama/internal/extract"
	"github.com/decoded-cipher/inovus-ama/internal/store"
)

// IngestInput describes one uploaded file plus caller-supplied metadata.
type IngestInput struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
	FileURL     string
	Metadata    map[string]string
}

// IngestResult summarizes one ingestion run. Skipped chunks and per-chunk
// failures are reported, not fatal.
type IngestResult struct {
	TextExtracted   bool     `json:"textExtracted"`
	ChunksCreated   int      `json:"chunksCreated"`
	ChunksProcessed int      `json:"chunksProcessed"`
	ChunksSkipped   int      `json:"chunksSkipped"`
	Errors          []string `json:"errors,omitempty"`
}

// IngestService turns uploaded files into vector records: extract, chunk,
// embed, upsert. Chunks are processed sequentially; a failing chunk is
// recorded and the rest continue.
type IngestService struct {
	embedder       Embedder
	vstore         store.VectorStore
	chunkSize      int
	minChunkLength int
	logger         *zap.Logger
}

func NewIngestService(embedder Embedder, vstore store.VectorStore, chunkSize, minChunkLength int, logger *zap.Logger) *IngestService {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if minChunkLength <= 0 {
		minChunkLength = 50
	}
	return &IngestService{
		embedder:       embedder,
		vstore:         vstore,
		chunkSize:      chunkSize,
		minChunkLength: minChunkLength,
		logger:         logger,
	}
}

func (s *IngestService) Ingest(ctx context.Context, in IngestInput) (*IngestResult, error) {
	result := &IngestResult{}

	text, err := extract.Text(in.Filename, in.ContentType, in.Data)
	if err != nil {
		// Extraction failure is not fatal to the upload; the file is stored,
		// it just contributes nothing to retrieval.
		s.logger.Warn("text extraction failed",
			zap.String("filename", in.Filename),
			zap.Error(err))
		return result, nil
	}
	if strings.TrimSpace(text) == "" {
		return result, nil
	}
	result.TextExtracted = true

	chunks := extract.SplitIntoChunks(text, s.chunkSize)
	result.ChunksCreated = len(chunks)

	uploadedAt := time.Now().UTC().Format(time.RFC3339)

	for i, chunk := range chunks {
		if len(strings.TrimSpace(chunk)) < s.minChunkLength {
			result.ChunksSkipped++
			continue
		}

		vector, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to vectorize chunk %d: %v", i, err))
			continue
		}

		metadata := map[string]string{
			"filename":    in.Filename,
			"fileType":    fileType(in.ContentType),
			"fileSize":    strconv.FormatInt(in.Size, 10),
			"fileUrl":     in.FileURL,
			"chunkIndex":  strconv.Itoa(i),
			"totalChunks": strconv.Itoa(len(chunks)),
			"uploadedAt":  uploadedAt,
		}
		// Caller-supplied metadata wins on key collisions.
		for k, v := range in.Metadata {
			metadata[k] = v
		}

		rec := store.VectorRecord{
			ID:        uuid.NewString(),
			Embedding: vector,
			Content:   chunk,
			Metadata:  metadata,
		}
		if err := s.vstore.Upsert(ctx, rec); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to store chunk %d: %v", i, err))
			continue
		}

		result.ChunksProcessed++
	}

	s.logger.Info("file ingested",
		zap.String("filename", in.Filename),
		zap.Int("chunks_created", result.ChunksCreated),
		zap.Int("chunks_processed", result.ChunksProcessed),
		zap.Int("chunks_skipped", result.ChunksSkipped),
		zap.Int("chunk_errors", len(result.Errors)))

	return result, nil
}

func fileType(contentType string) string {
	if contentType == "" {
		return "unknown"
	}
	return contentType
}
