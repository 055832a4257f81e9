package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"axion/interview-evaluator/internal/models"
)

// TranscriptChunk is one embedded slice of an answer transcript.
type TranscriptChunk struct {
	ResponseID  uuid.UUID
	CandidateID uuid.UUID
	QuestionID  uuid.UUID
	Index       int
	Score       float64
	Text        string
	Embedding   []float32
}

type TranscriptIndex interface {
	InitCollection(ctx context.Context) error
	UpsertChunks(ctx context.Context, chunks []TranscriptChunk) error
	Search(ctx context.Context, queryEmbedding []float32, limit int) ([]models.SearchHit, error)
	DeleteCandidates(ctx context.Context, candidateIDs []uuid.UUID) error
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string) (TranscriptIndex, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	// gRPC port unless the URL names one
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004
	}, nil
}

// InitCollection implements TranscriptIndex.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Printf("✅ Qdrant collection '%s' already exists\n", q.collectionName)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertChunks implements TranscriptIndex. Point ids are derived from the
// response id and chunk index, so re-indexing a response overwrites it.
func (q *qdrantService) UpsertChunks(ctx context.Context, chunks []TranscriptChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, c := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(chunkPointID(c.ResponseID, c.Index).String()),
			Vectors: qdrant.NewVectors(c.Embedding...),
			Payload: qdrant.NewValueMap(chunkPayload(c)),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// Search implements TranscriptIndex.
func (q *qdrantService) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]models.SearchHit, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	hits := make([]models.SearchHit, 0, len(points))
	for _, point := range points {
		hit := hitFromPayload(point.Payload)
		hit.Similarity = point.Score
		hits = append(hits, hit)
	}

	return hits, nil
}

// DeleteCandidates implements TranscriptIndex. Every chunk whose candidate_id
// is in candidateIDs is removed.
func (q *qdrantService) DeleteCandidates(ctx context.Context, candidateIDs []uuid.UUID) error {
	if len(candidateIDs) == 0 {
		return nil
	}

	keywords := make([]string, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		keywords = append(keywords, id.String())
	}

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchKeywords("candidate_id", keywords...),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete chunks of %d candidates: %w", len(candidateIDs), err)
	}

	log.Printf("🗑️  Removed transcript chunks of %d candidates\n", len(candidateIDs))
	return nil
}

func chunkPointID(responseID uuid.UUID, index int) uuid.UUID {
	return uuid.NewSHA1(responseID, []byte(strconv.Itoa(index)))
}

func chunkPayload(c TranscriptChunk) map[string]any {
	return map[string]any{
		"response_id":  c.ResponseID.String(),
		"candidate_id": c.CandidateID.String(),
		"question_id":  c.QuestionID.String(),
		"chunk":        int64(c.Index),
		"score":        c.Score,
		"text":         c.Text,
	}
}

func hitFromPayload(payload map[string]*qdrant.Value) models.SearchHit {
	var hit models.SearchHit
	str := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}

	hit.ResponseID = str("response_id")
	hit.CandidateID = str("candidate_id")
	hit.QuestionID = str("question_id")
	hit.Text = str("text")
	if v, ok := payload["score"]; ok {
		hit.Score = v.GetDoubleValue()
	}
	return hit
}
