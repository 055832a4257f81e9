package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"

	"axion/interview-evaluator/internal/models"
	"axion/interview-evaluator/internal/repositories"
	"axion/interview-evaluator/internal/services"
)

// memStore backs the four repository fakes.
type memStore struct {
	mu         sync.Mutex
	jobs       map[uuid.UUID]models.Job
	questions  []models.Question
	candidates map[uuid.UUID]models.Candidate
	responses  []models.Response
}

func newMemStore() *memStore {
	return &memStore{
		jobs:       make(map[uuid.UUID]models.Job),
		candidates: make(map[uuid.UUID]models.Candidate),
	}
}

func (s *memStore) addJob(title string, questions ...models.Question) (models.Job, []models.Question) {
	job := models.Job{ID: uuid.New(), Title: title, Level: "Senior", Skills: "Go"}
	if err := (jobRepo{s}).CreateWithQuestions(&job, questions); err != nil {
		panic(err)
	}
	return job, job.Questions
}

func (s *memStore) addCandidate(jobID uuid.UUID, name string) models.Candidate {
	c := models.Candidate{ID: uuid.New(), JobID: jobID, Name: name, Email: "x@example.com"}
	s.mu.Lock()
	s.candidates[c.ID] = c
	s.mu.Unlock()
	return c
}

func (s *memStore) storedResponses() []models.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Response(nil), s.responses...)
}

type jobRepo struct{ *memStore }

func (r jobRepo) CreateWithQuestions(job *models.Job, questions []models.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	for i := range questions {
		questions[i].ID = uuid.New()
		questions[i].JobID = job.ID
		questions[i].Position = i + 1
	}
	r.questions = append(r.questions, questions...)
	job.Questions = questions
	stored := *job
	stored.Questions = nil
	r.jobs[job.ID] = stored
	return nil
}

func (r jobRepo) FindAll() ([]models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := make([]models.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].Title < jobs[b].Title })
	return jobs, nil
}

func (r jobRepo) FindByID(id uuid.UUID) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &j, nil
}

func (r jobRepo) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.jobs, id)
	return nil
}

type questionRepo struct{ *memStore }

func (r questionRepo) FindByID(id uuid.UUID) (*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.questions {
		if q.ID == id {
			q := q
			return &q, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r questionRepo) FindByJob(jobID uuid.UUID) ([]models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Question
	for _, q := range r.questions {
		if q.JobID == jobID {
			out = append(out, q)
		}
	}
	return out, nil
}

type candidateRepo struct{ *memStore }

func (r candidateRepo) Create(c *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates[c.ID] = *c
	return nil
}

func (r candidateRepo) FindByID(id uuid.UUID) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r candidateRepo) FindByJob(jobID uuid.UUID) ([]models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Candidate
	for _, c := range r.candidates {
		if c.JobID == jobID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r candidateRepo) FindAllWithJob() ([]models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		job := r.jobs[c.JobID]
		c.Job = &job
		out = append(out, c)
	}
	return out, nil
}

func (r candidateRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.candidates)), nil
}

func (r candidateRepo) CountByJob(jobID uuid.UUID) (int64, error) {
	list, _ := r.FindByJob(jobID)
	return int64(len(list)), nil
}

type responseRepo struct {
	*memStore
	createErr error
}

func (r responseRepo) Create(resp *models.Response) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, *resp)
	return nil
}

func (r responseRepo) FindByID(id uuid.UUID) (*models.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range r.responses {
		if resp.ID == id {
			resp := resp
			return &resp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r responseRepo) FindByCandidate(candidateID uuid.UUID) ([]models.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Response
	for _, resp := range r.responses {
		if resp.CandidateID == candidateID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (r responseRepo) FindAllScores() ([]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []float64
	for _, resp := range r.responses {
		out = append(out, resp.ScoreRelevance)
	}
	return out, nil
}

func (r responseRepo) ScoresByCandidate() (map[uuid.UUID][]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uuid.UUID][]float64)
	for _, resp := range r.responses {
		out[resp.CandidateID] = append(out[resp.CandidateID], resp.ScoreRelevance)
	}
	return out, nil
}

func (r responseRepo) FindUnindexed(limit int) ([]models.Response, error) { return nil, nil }

func (r responseRepo) MarkIndexed(id uuid.UUID) error { return nil }

type fakeGenerator struct {
	calls       int
	description string
}

func (g *fakeGenerator) Generate(ctx context.Context, title, level, skills string) models.GeneratedQuestionSet {
	return g.GenerateFromDescription(ctx, title, level, skills, "")
}

func (g *fakeGenerator) GenerateFromDescription(ctx context.Context, title, level, skills, description string) models.GeneratedQuestionSet {
	g.calls++
	g.description = description
	return services.FallbackQuestions(title, skills)
}

type fakePDF struct {
	text string
	err  error
}

func (p fakePDF) ExtractText(data []byte) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.text, nil
}

func (p fakePDF) ExtractTextWithMetaData(data []byte) (*services.PDFContent, error) {
	text, err := p.ExtractText(data)
	if err != nil {
		return nil, err
	}
	return &services.PDFContent{Text: text, PageCount: 1}, nil
}

type fakeMediaStore struct {
	mu          sync.Mutex
	err         error
	folder      string
	publicID    string
	contentType string
	body        []byte
}

func (m *fakeMediaStore) Upload(ctx context.Context, r io.Reader, folder, publicID, contentType string) (*services.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.folder, m.publicID, m.contentType, m.body = folder, publicID, contentType, body
	key := folder + "/" + publicID
	return &services.UploadResult{SecureURL: "https://media.example.com/" + key, Key: key}, nil
}

type fakeScorer struct {
	judgment models.Judgment
	mediaURL string
	calls    int
}

func (s *fakeScorer) Score(ctx context.Context, mediaURL, questionText, idealAnswer string) (models.Judgment, error) {
	return s.ScoreAnswer(ctx, mediaURL, questionText, idealAnswer), nil
}

func (s *fakeScorer) ScoreAnswer(ctx context.Context, mediaURL, questionText, idealAnswer string) models.Judgment {
	s.calls++
	s.mediaURL = mediaURL
	return s.judgment
}

type fakeWorker struct {
	enqueued []uuid.UUID
}

func (w *fakeWorker) Start(ctx context.Context) {}

func (w *fakeWorker) Stop() {}

func (w *fakeWorker) Enqueue(responseID uuid.UUID) { w.enqueued = append(w.enqueued, responseID) }

type fakePublisher struct {
	events []services.AnswerScoredEvent
	err    error
}

func (p *fakePublisher) PublishAnswerScored(ctx context.Context, event services.AnswerScoredEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fakeSearch struct {
	hits      []models.SearchHit
	err       error
	query     string
	limit     int
	removed   [][]uuid.UUID
	removeErr error
}

func (s *fakeSearch) IndexResponse(ctx context.Context, responseID uuid.UUID) error { return nil }

func (s *fakeSearch) RemoveCandidates(ctx context.Context, candidateIDs []uuid.UUID) error {
	s.removed = append(s.removed, candidateIDs)
	return s.removeErr
}

func (s *fakeSearch) Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error) {
	s.query, s.limit = query, limit
	if s.err != nil {
		return nil, s.err
	}
	if query == "" {
		return nil, services.ErrEmptyQuery
	}
	return s.hits, nil
}

var errBoom = errors.New("boom")

type formFile struct {
	field       string
	name        string
	contentType string
	content     []byte
}

// multipartBody encodes fields and an optional file and returns the body with
// its Content-Type header value.
func multipartBody(t *testing.T, fields map[string][]string, file *formFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for key, values := range fields {
		for _, v := range values {
			if err := w.WriteField(key, v); err != nil {
				t.Fatalf("WriteField: %v", err)
			}
		}
	}

	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		if _, err := part.Write(file.content); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return body, w.FormDataContentType()
}
