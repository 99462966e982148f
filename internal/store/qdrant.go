package store

import (
	"context"
	"fmt"

	qdrantclient "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// payloadContentKey carries the chunk text itself; every other payload field
// is treated as opaque string metadata.
const payloadContentKey = "content"

// QdrantStore talks to a remote Qdrant collection over gRPC.
type QdrantStore struct {
	conn       *grpc.ClientConn
	points     qdrantclient.PointsClient
	collection string
}

func NewQdrantStore(addr, collection string) (*QdrantStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant at %s: %w", addr, err)
	}

	return &QdrantStore{
		conn:       conn,
		points:     qdrantclient.NewPointsClient(conn),
		collection: collection,
	}, nil
}

func (s *QdrantStore) Close() error {
	return s.conn.Close()
}

func (s *QdrantStore) Upsert(ctx context.Context, rec VectorRecord) error {
	payload := map[string]*qdrantclient.Value{
		payloadContentKey: {Kind: &qdrantclient.Value_StringValue{StringValue: rec.Content}},
	}
	for k, v := range rec.Metadata {
		if k == payloadContentKey {
			continue
		}
		payload[k] = &qdrantclient.Value{Kind: &qdrantclient.Value_StringValue{StringValue: v}}
	}

	point := &qdrantclient.PointStruct{
		Id: &qdrantclient.PointId{
			PointIdOptions: &qdrantclient.PointId_Uuid{Uuid: rec.ID},
		},
		Vectors: &qdrantclient.Vectors{
			VectorsOptions: &qdrantclient.Vectors_Vector{
				Vector: &qdrantclient.Vector{Data: rec.Embedding},
			},
		},
		Payload: payload,
	}

	req := &qdrantclient.UpsertPoints{
		CollectionName: s.collection,
		Points:         []*qdrantclient.PointStruct{point},
	}
	if _, err := s.points.Upsert(ctx, req); err != nil {
		return fmt.Errorf("failed to upsert point into qdrant: %w", err)
	}
	return nil
}

func (s *QdrantStore) Query(ctx context.Context, vector []float32, topK int, minScore float32) ([]Match, error) {
	req := &qdrantclient.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		ScoreThreshold: &minScore,
		WithPayload: &qdrantclient.WithPayloadSelector{
			SelectorOptions: &qdrantclient.WithPayloadSelector_Enable{Enable: true},
		},
	}

	resp, err := s.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search qdrant: %w", err)
	}

	matches := make([]Match, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		metadata := map[string]string{}
		content := ""
		for k, v := range point.GetPayload() {
			if k == payloadContentKey {
				content = v.GetStringValue()
				continue
			}
			metadata[k] = v.GetStringValue()
		}

		matches = append(matches, Match{
			ID:       point.GetId().GetUuid(),
			Content:  content,
			Metadata: metadata,
			Score:    point.GetScore(),
		})
	}
	return matches, nil
}
