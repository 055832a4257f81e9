package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"axion/interview-evaluator/internal/config"
	"axion/interview-evaluator/internal/models"
)

const (
	failedTranscript   = "AI processing failed."
	defaultMediaType   = "video/mp4"
	remoteCleanupLimit = 30 * time.Second
)

type ScorerService interface {
	// Score runs the whole pipeline and reports which stage failed.
	Score(ctx context.Context, mediaURL, questionText, idealAnswer string) (models.Judgment, error)
	// ScoreAnswer never fails: pipeline errors become an Error judgment.
	ScoreAnswer(ctx context.Context, mediaURL, questionText, idealAnswer string) models.Judgment
}

type ScorerConfig struct {
	APIKey          string
	ScratchDir      string
	PollInterval    time.Duration
	PollMaxInterval time.Duration
	PollTimeout     time.Duration
	FetchTimeout    time.Duration
	HTTPClient      *http.Client
}

// NewScorerConfig maps the gemini and storage settings onto the scorer.
func NewScorerConfig(cfg *config.Config) ScorerConfig {
	return ScorerConfig{
		APIKey:          cfg.Gemini.APIKey,
		ScratchDir:      cfg.Storage.ScratchDir,
		PollInterval:    cfg.Gemini.PollInterval,
		PollMaxInterval: cfg.Gemini.PollMaxInterval,
		PollTimeout:     cfg.Gemini.PollTimeout,
		FetchTimeout:    cfg.Gemini.FetchTimeout,
	}
}

type scorerService struct {
	apiKey          string
	geminiService   GeminiService
	promptBuilder   *PromptBuilder
	httpClient      *http.Client
	scratchDir      string
	pollInterval    time.Duration
	pollMaxInterval time.Duration
	pollTimeout     time.Duration
	fetchTimeout    time.Duration
}

func NewScorerService(cfg ScorerConfig, geminiService GeminiService) ScorerService {
	s := &scorerService{
		apiKey:          cfg.APIKey,
		geminiService:   geminiService,
		promptBuilder:   NewPromptBuilder(),
		httpClient:      cfg.HTTPClient,
		scratchDir:      cfg.ScratchDir,
		pollInterval:    cfg.PollInterval,
		pollMaxInterval: cfg.PollMaxInterval,
		pollTimeout:     cfg.PollTimeout,
		fetchTimeout:    cfg.FetchTimeout,
	}

	if s.httpClient == nil {
		s.httpClient = http.DefaultClient
	}
	if s.scratchDir == "" {
		s.scratchDir = os.TempDir()
	}
	if s.pollInterval <= 0 {
		s.pollInterval = time.Second
	}
	if s.pollMaxInterval < s.pollInterval {
		s.pollMaxInterval = s.pollInterval
	}
	if s.pollTimeout <= 0 {
		s.pollTimeout = 5 * time.Minute
	}

	return s
}

// ErrorJudgment is the well-formed result reported for a failed pipeline run.
func ErrorJudgment(err error) models.Judgment {
	feedback := "unknown error"
	if err != nil {
		feedback = err.Error()
	}
	return models.Judgment{
		Transcript: failedTranscript,
		Score:      0,
		Sentiment:  models.SentimentError,
		Feedback:   feedback,
	}
}

// ScoreAnswer implements ScorerService.
func (s *scorerService) ScoreAnswer(ctx context.Context, mediaURL, questionText, idealAnswer string) (judgment models.Judgment) {
	defer func() {
		if r := recover(); r != nil {
			err := newPipelineError(ErrKindBackend, "score answer", fmt.Errorf("panic: %v", r))
			log.Printf("❌ Scoring pipeline panicked: %v\n", err)
			judgment = ErrorJudgment(err)
		}
	}()

	result, err := s.Score(ctx, mediaURL, questionText, idealAnswer)
	if err != nil {
		log.Printf("❌ Scoring failed [%s]: %v\n", KindOf(err), err)
		return ErrorJudgment(err)
	}
	return result
}

// Score implements ScorerService.
func (s *scorerService) Score(ctx context.Context, mediaURL, questionText, idealAnswer string) (models.Judgment, error) {
	if s.apiKey == "" || s.geminiService == nil {
		log.Println("❌ Gemini API key is empty, skipping scoring")
		return models.Judgment{}, newPipelineError(ErrKindCredentialMissing, "", ErrCredentialMissing)
	}

	log.Println("📥 Downloading media...")
	scratch, err := s.fetch(ctx, mediaURL)
	if err != nil {
		return models.Judgment{}, err
	}
	defer s.removeScratch(scratch.path)

	log.Println("☁️ Uploading media to Gemini...")
	media, err := s.geminiService.UploadMedia(ctx, scratch.path, scratch.mimeType)
	if err != nil {
		return models.Judgment{}, newPipelineError(ErrKindUpload, "register media", err)
	}
	defer s.deleteRemote(ctx, media.Name)

	media, err = s.waitUntilActive(ctx, media)
	if err != nil {
		return models.Judgment{}, err
	}

	log.Println("🧠 Sending answer to Gemini for judgment...")
	prompt := s.promptBuilder.BuildJudgmentPrompt(questionText, idealAnswer)
	raw, err := s.geminiService.GenerateJSONFromMedia(ctx, prompt, media, judgmentSchema())
	if err != nil {
		return models.Judgment{}, newPipelineError(ErrKindBackend, "generate judgment", err)
	}

	judgment, err := parseJudgment(raw)
	if err != nil {
		return models.Judgment{}, newPipelineError(ErrKindParse, "decode judgment", err)
	}

	if err := CheckRubric(judgment); err != nil {
		log.Printf("⚠️  Rubric violation, keeping backend score: %v\n", err)
	}

	return judgment, nil
}

type scratchFile struct {
	path     string
	mimeType string
}

func (s *scorerService) fetch(ctx context.Context, mediaURL string) (*scratchFile, error) {
	fetchCtx := ctx
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, newPipelineError(ErrKindFetch, "build request", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, newPipelineError(ErrKindFetch, "download media", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newPipelineError(ErrKindFetch, "download media", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	mimeType := detectMediaType(resp.Header.Get("Content-Type"), mediaURL)
	scratchPath := filepath.Join(s.scratchDir, "media_"+uuid.New().String()+mediaExtension(mimeType, mediaURL))

	f, err := os.OpenFile(scratchPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, newPipelineError(ErrKindFetch, "create scratch file", err)
	}

	_, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		s.removeScratch(scratchPath)
		return nil, newPipelineError(ErrKindFetch, "write scratch file", err)
	}

	return &scratchFile{path: scratchPath, mimeType: mimeType}, nil
}

// waitUntilActive polls the transient handle until it leaves PROCESSING. The
// interval doubles up to pollMaxInterval and the whole wait is bounded by
// pollTimeout and ctx.
func (s *scorerService) waitUntilActive(ctx context.Context, media *MediaHandle) (*MediaHandle, error) {
	pollCtx, cancel := context.WithTimeout(ctx, s.pollTimeout)
	defer cancel()

	interval := s.pollInterval
	for media.State == MediaStateProcessing {
		timer := time.NewTimer(interval)
		select {
		case <-pollCtx.Done():
			timer.Stop()
			return nil, newPipelineError(ErrKindPollTimeout, "wait for media "+media.Name, pollCtx.Err())
		case <-timer.C:
		}

		next, err := s.geminiService.GetMedia(pollCtx, media.Name)
		if err != nil {
			if pollCtx.Err() != nil {
				return nil, newPipelineError(ErrKindPollTimeout, "wait for media "+media.Name, pollCtx.Err())
			}
			return nil, newPipelineError(ErrKindUpload, "poll media", err)
		}
		media = next

		interval *= 2
		if interval > s.pollMaxInterval {
			interval = s.pollMaxInterval
		}
	}

	if media.State != MediaStateActive {
		reason := media.Error
		if reason == "" {
			reason = "state " + string(media.State)
		}
		return nil, newPipelineError(ErrKindUpload, "process media", fmt.Errorf("media %s not usable: %s", media.Name, reason))
	}

	return media, nil
}

// deleteRemote drops the transient handle. It runs on a detached context so a
// cancelled request still cleans up, and its failure never reaches the caller.
func (s *scorerService) deleteRemote(ctx context.Context, name string) {
	if name == "" {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), remoteCleanupLimit)
	defer cancel()

	if err := s.geminiService.DeleteMedia(cleanupCtx, name); err != nil {
		log.Printf("⚠️  Failed to delete remote media %s: %v\n", name, err)
	}
}

func (s *scorerService) removeScratch(scratchPath string) {
	if err := os.Remove(scratchPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️  Failed to remove scratch file %s: %v\n", scratchPath, err)
	}
}

var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
}

func detectMediaType(contentType, mediaURL string) string {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	if ext := urlExtension(mediaURL); ext != "" {
		if mt, ok := videoTypes[ext]; ok {
			return mt
		}
		if mt := mime.TypeByExtension(ext); mt != "" {
			if parsed, _, err := mime.ParseMediaType(mt); err == nil {
				return parsed
			}
		}
	}
	return defaultMediaType
}

func mediaExtension(mimeType, mediaURL string) string {
	if ext := urlExtension(mediaURL); ext != "" {
		return ext
	}
	switch mimeType {
	case "video/webm", "audio/webm":
		return ".webm"
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	default:
		return ".mp4"
	}
}

func urlExtension(mediaURL string) string {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	return ext
}
