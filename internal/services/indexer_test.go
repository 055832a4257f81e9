package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"axion/interview-evaluator/internal/models"
	"axion/interview-evaluator/internal/repositories"
)

type memResponses struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*models.Response
	indexed []uuid.UUID
}

func newMemResponses(rows ...models.Response) *memResponses {
	m := &memResponses{rows: make(map[uuid.UUID]*models.Response)}
	for i := range rows {
		r := rows[i]
		m.rows[r.ID] = &r
	}
	return m
}

func (m *memResponses) Create(r *models.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.ID] = r
	return nil
}

func (m *memResponses) FindByID(id uuid.UUID) (*models.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memResponses) FindByCandidate(id uuid.UUID) ([]models.Response, error) { return nil, nil }

func (m *memResponses) FindAllScores() ([]float64, error) { return nil, nil }

func (m *memResponses) ScoresByCandidate() (map[uuid.UUID][]float64, error) { return nil, nil }

func (m *memResponses) FindUnindexed(limit int) ([]models.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Response
	for _, r := range m.rows {
		if r.IndexedAt == nil && r.Transcript != "" && r.Sentiment != string(models.SentimentError) {
			out = append(out, *r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memResponses) MarkIndexed(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if r.IndexedAt == nil {
		m.indexed = append(m.indexed, id)
	}
	now := time.Now()
	r.IndexedAt = &now
	return nil
}

func (m *memResponses) indexedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.indexed)
}

type fakeIndex struct {
	mu          sync.Mutex
	chunks      []TranscriptChunk
	upsertErr   error
	hits        []models.SearchHit
	lastLimit   int
	deleteCalls int
}

func (f *fakeIndex) InitCollection(ctx context.Context) error { return nil }

func (f *fakeIndex) UpsertChunks(ctx context.Context, chunks []TranscriptChunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]models.SearchHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	return f.hits, nil
}

func (f *fakeIndex) DeleteCandidates(ctx context.Context, candidateIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	drop := make(map[uuid.UUID]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		drop[id] = true
	}
	kept := f.chunks[:0]
	for _, c := range f.chunks {
		if !drop[c.CandidateID] {
			kept = append(kept, c)
		}
	}
	f.chunks = kept
	return nil
}

func scoredResponse(transcript string, sentiment models.Sentiment) models.Response {
	return models.Response{
		ID:             uuid.New(),
		CandidateID:    uuid.New(),
		QuestionID:     uuid.New(),
		Transcript:     transcript,
		Sentiment:      string(sentiment),
		ScoreRelevance: 77,
	}
}

func TestIndexResponse(t *testing.T) {
	resp := scoredResponse(strings.Repeat("I scaled the queue with worker pools. ", 40), models.SentimentPositive)
	repo := newMemResponses(resp)
	index := &fakeIndex{}
	gemini := &fakeGemini{embedding: []float32{0.1, 0.2}}

	indexer := NewTranscriptIndexer(repo, gemini, index, NewTextChunker())
	if err := indexer.IndexResponse(context.Background(), resp.ID); err != nil {
		t.Fatalf("IndexResponse: %v", err)
	}

	if len(index.chunks) < 2 {
		t.Fatalf("chunks = %d, want several", len(index.chunks))
	}
	if gemini.embedCalls != len(index.chunks) {
		t.Fatalf("embed calls = %d, chunks = %d", gemini.embedCalls, len(index.chunks))
	}
	for i, c := range index.chunks {
		if c.Index != i || c.ResponseID != resp.ID || c.CandidateID != resp.CandidateID || c.Score != 77 {
			t.Fatalf("chunk %d = %+v", i, c)
		}
	}
	if repo.indexedCount() != 1 {
		t.Fatalf("indexed = %d, want 1", repo.indexedCount())
	}
}

func TestIndexResponseSkipsFailedJudgments(t *testing.T) {
	failed := scoredResponse(failedTranscript, models.SentimentError)
	empty := scoredResponse("  ", models.SentimentNeutral)
	repo := newMemResponses(failed, empty)
	index := &fakeIndex{}
	gemini := &fakeGemini{embedding: []float32{1}}

	indexer := NewTranscriptIndexer(repo, gemini, index, NewTextChunker())
	for _, id := range []uuid.UUID{failed.ID, empty.ID} {
		if err := indexer.IndexResponse(context.Background(), id); err != nil {
			t.Fatalf("IndexResponse: %v", err)
		}
	}

	if gemini.embedCalls != 0 || len(index.chunks) != 0 || repo.indexedCount() != 0 {
		t.Fatalf("embed=%d chunks=%d indexed=%d", gemini.embedCalls, len(index.chunks), repo.indexedCount())
	}
}

func TestIndexResponseErrorsLeaveRowUnindexed(t *testing.T) {
	resp := scoredResponse("Good answer.", models.SentimentPositive)

	tests := []struct {
		name   string
		gemini *fakeGemini
		index  *fakeIndex
	}{
		{"embedding fails", &fakeGemini{embedErr: errors.New("quota")}, &fakeIndex{}},
		{"upsert fails", &fakeGemini{embedding: []float32{1}}, &fakeIndex{upsertErr: errors.New("unavailable")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemResponses(resp)
			indexer := NewTranscriptIndexer(repo, tt.gemini, tt.index, NewTextChunker())
			if err := indexer.IndexResponse(context.Background(), resp.ID); err == nil {
				t.Fatal("expected error")
			}
			if repo.indexedCount() != 0 {
				t.Fatal("row must stay unindexed")
			}
		})
	}

	repo := newMemResponses()
	indexer := NewTranscriptIndexer(repo, &fakeGemini{}, &fakeIndex{}, NewTextChunker())
	if err := indexer.IndexResponse(context.Background(), uuid.New()); !repositories.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestSearch(t *testing.T) {
	index := &fakeIndex{hits: []models.SearchHit{{ResponseID: "r1", Similarity: 0.9}}}
	gemini := &fakeGemini{embedding: []float32{1}}
	indexer := NewTranscriptIndexer(newMemResponses(), gemini, index, NewTextChunker())

	if _, err := indexer.Search(context.Background(), "   ", 5); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("err = %v, want ErrEmptyQuery", err)
	}

	hits, err := indexer.Search(context.Background(), "worker pools", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || index.lastLimit != defaultSearchLimit {
		t.Fatalf("hits = %v limit = %d", hits, index.lastLimit)
	}

	if _, err := indexer.Search(context.Background(), "x", 1000); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if index.lastLimit != maxSearchLimit {
		t.Fatalf("limit = %d, want %d", index.lastLimit, maxSearchLimit)
	}
}

func TestWorkerIndexesEnqueuedAndMissedResponses(t *testing.T) {
	enqueued := scoredResponse("Enqueued answer.", models.SentimentPositive)
	missed := scoredResponse("Missed answer.", models.SentimentNeutral)
	repo := newMemResponses(enqueued, missed)
	indexer := NewTranscriptIndexer(repo, &fakeGemini{embedding: []float32{1}}, &fakeIndex{}, NewTextChunker())

	w := NewWorker(repo, indexer, WorkerConfig{Concurrency: 2, PollInterval: 10 * time.Millisecond, BatchSize: 10})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w.Start(ctx)
	w.Enqueue(enqueued.ID)

	deadline := time.Now().Add(2 * time.Second)
	for repo.indexedCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	if got := repo.indexedCount(); got != 2 {
		t.Fatalf("indexed = %d, want 2", got)
	}

	// Enqueue after Stop must not block.
	w.Enqueue(uuid.New())
}

func TestChunkPointIDIsStable(t *testing.T) {
	id := uuid.New()
	if chunkPointID(id, 0) != chunkPointID(id, 0) {
		t.Fatal("point id must be deterministic")
	}
	if chunkPointID(id, 0) == chunkPointID(id, 1) {
		t.Fatal("chunks of one response need distinct ids")
	}
}

func TestRemoveCandidates(t *testing.T) {
	kept := scoredResponse(strings.Repeat("Kept answer. ", 10), models.SentimentPositive)
	gone := scoredResponse(strings.Repeat("Deleted answer. ", 10), models.SentimentNeutral)
	repo := newMemResponses(kept, gone)
	index := &fakeIndex{}
	indexer := NewTranscriptIndexer(repo, &fakeGemini{embedding: []float32{0.1}}, index, NewTextChunker())

	for _, id := range []uuid.UUID{kept.ID, gone.ID} {
		if err := indexer.IndexResponse(context.Background(), id); err != nil {
			t.Fatalf("IndexResponse: %v", err)
		}
	}

	if err := indexer.RemoveCandidates(context.Background(), nil); err != nil || index.deleteCalls != 0 {
		t.Fatalf("empty removal: err = %v, calls = %d", err, index.deleteCalls)
	}
	if err := indexer.RemoveCandidates(context.Background(), []uuid.UUID{gone.CandidateID}); err != nil {
		t.Fatalf("RemoveCandidates: %v", err)
	}

	if len(index.chunks) == 0 {
		t.Fatal("chunks of other candidates must stay")
	}
	for _, c := range index.chunks {
		if c.CandidateID == gone.CandidateID {
			t.Fatalf("chunk of removed candidate still indexed: %+v", c)
		}
	}
}
