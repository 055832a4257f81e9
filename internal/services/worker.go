package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"axion/interview-evaluator/internal/repositories"
)

// Worker indexes answer transcripts in the background. Submissions enqueue the
// stored response and a poller picks up anything that was missed.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(responseID uuid.UUID)
}

type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
	BatchSize    int
	QueueSize    int
}

type worker struct {
	responseRepo repositories.ResponseRepository
	indexer      TranscriptIndexer
	queue        chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	batchSize    int

	inflight sync.Map
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

func NewWorker(responseRepo repositories.ResponseRepository, indexer TranscriptIndexer, cfg WorkerConfig) Worker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 20
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 100
	}

	return &worker{
		responseRepo: responseRepo,
		indexer:      indexer,
		queue:        make(chan uuid.UUID, cfg.QueueSize),
		concurrency:  cfg.Concurrency,
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.BatchSize,
		stopChan:     make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting indexing worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.process(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollUnindexed(ctx)

	log.Println("✅ Indexing worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping indexing worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Indexing worker stopped")
	})
}

// Enqueue implements Worker. It never blocks the caller: a full queue leaves
// the response for the poller.
func (w *worker) Enqueue(responseID uuid.UUID) {
	if _, loaded := w.inflight.LoadOrStore(responseID, struct{}{}); loaded {
		return
	}

	select {
	case <-w.stopChan:
		w.inflight.Delete(responseID)
		log.Printf("⚠️  Worker stopped, cannot enqueue response %s\n", responseID)
	case w.queue <- responseID:
		log.Printf("📥 Response %s enqueued for indexing\n", responseID)
	default:
		w.inflight.Delete(responseID)
		log.Printf("⚠️  Index queue full, response %s left for the poller\n", responseID)
	}
}

func (w *worker) process(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			log.Printf("👷 Worker #%d stopped: %v\n", workerID, ctx.Err())
			return
		case responseID := <-w.queue:
			if err := w.indexer.IndexResponse(ctx, responseID); err != nil {
				log.Printf("❌ Worker #%d failed to index response %s: %v\n", workerID, responseID, err)
			}
			w.inflight.Delete(responseID)
		}
	}
}

func (w *worker) pollUnindexed(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Unindexed responses poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.responseRepo.FindUnindexed(w.batchSize)
			if err != nil {
				log.Printf("⚠️  Failed to fetch unindexed responses: %v\n", err)
				continue
			}

			if len(pending) > 0 {
				log.Printf("📋 Found %d unindexed responses\n", len(pending))
			}

			for _, resp := range pending {
				w.Enqueue(resp.ID)
			}
		}
	}
}
