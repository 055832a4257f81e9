package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"axion/interview-evaluator/internal/models"
	"axion/interview-evaluator/internal/repositories"
)

const (
	transcriptChunkRunes = 800
	defaultSearchLimit   = 5
	maxSearchLimit       = 50
)

var ErrEmptyQuery = errors.New("search query is empty")

type TranscriptIndexer interface {
	IndexResponse(ctx context.Context, responseID uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error)
	RemoveCandidates(ctx context.Context, candidateIDs []uuid.UUID) error
}

type transcriptIndexer struct {
	responseRepo  repositories.ResponseRepository
	geminiService GeminiService
	index         TranscriptIndex
	chunker       TextChunker
}

func NewTranscriptIndexer(
	responseRepo repositories.ResponseRepository,
	geminiService GeminiService,
	index TranscriptIndex,
	chunker TextChunker,
) TranscriptIndexer {
	return &transcriptIndexer{
		responseRepo:  responseRepo,
		geminiService: geminiService,
		index:         index,
		chunker:       chunker,
	}
}

// IndexResponse implements TranscriptIndexer. Failed judgments carry no real
// transcript and are skipped.
func (t *transcriptIndexer) IndexResponse(ctx context.Context, responseID uuid.UUID) error {
	resp, err := t.responseRepo.FindByID(responseID)
	if err != nil {
		return err
	}

	if resp.Sentiment == string(models.SentimentError) || strings.TrimSpace(resp.Transcript) == "" {
		log.Printf("⏭️  Response %s has no transcript to index\n", responseID)
		return nil
	}

	texts := t.chunker.ChunkText(resp.Transcript, transcriptChunkRunes, 1)
	log.Printf("📝 Indexing response %s in %d chunks\n", responseID, len(texts))

	chunks := make([]TranscriptChunk, 0, len(texts))
	for i, text := range texts {
		embedding, err := t.geminiService.GenerateEmbedding(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d of %s: %w", i, responseID, err)
		}
		chunks = append(chunks, TranscriptChunk{
			ResponseID:  resp.ID,
			CandidateID: resp.CandidateID,
			QuestionID:  resp.QuestionID,
			Index:       i,
			Score:       resp.ScoreRelevance,
			Text:        text,
			Embedding:   embedding,
		})
	}

	if err := t.index.UpsertChunks(ctx, chunks); err != nil {
		return err
	}

	if err := t.responseRepo.MarkIndexed(resp.ID); err != nil {
		return err
	}

	log.Printf("✅ Response %s indexed\n", responseID)
	return nil
}

// Search implements TranscriptIndexer.
func (t *transcriptIndexer) Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	embedding, err := t.geminiService.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	return t.index.Search(ctx, embedding, limit)
}

// RemoveCandidates implements TranscriptIndexer. It drops every indexed answer
// of the given candidates so deleted interviews stop showing up in Search.
func (t *transcriptIndexer) RemoveCandidates(ctx context.Context, candidateIDs []uuid.UUID) error {
	if len(candidateIDs) == 0 {
		return nil
	}
	return t.index.DeleteCandidates(ctx, candidateIDs)
}
