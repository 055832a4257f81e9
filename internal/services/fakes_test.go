package services

import (
	"context"
	"errors"
	"os"
	"sync"

	"google.golang.org/genai"
)

type fakeGemini struct {
	mu sync.Mutex

	uploadErr   error
	states      []MediaState
	getErr      error
	deleteErr   error
	judgmentRaw string
	judgmentErr error
	panicOnJSON bool
	textResp    string
	textErr     error
	embedding   []float32
	embedErr    error

	uploadCalls   int
	getCalls      int
	deleteCalls   int
	generateCalls int
	textCalls     int
	embedCalls    int

	uploadedMIME      string
	scratchWasPresent bool
	lastPrompt        string
}

func (f *fakeGemini) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploadCalls + f.getCalls + f.deleteCalls + f.generateCalls + f.textCalls + f.embedCalls
}

func (f *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return f.embedding, nil
}

func (f *fakeGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textCalls++
	f.lastPrompt = prompt
	return f.textResp, f.textErr
}

func (f *fakeGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	return f.GenerateText(ctx, prompt, temperature)
}

func (f *fakeGemini) UploadMedia(ctx context.Context, path, mimeType string) (*MediaHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadCalls++
	f.uploadedMIME = mimeType
	_, statErr := os.Stat(path)
	f.scratchWasPresent = statErr == nil
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &MediaHandle{Name: "files/abc", URI: "https://backend/files/abc", MIMEType: mimeType, State: MediaStateProcessing}, nil
}

func (f *fakeGemini) GetMedia(ctx context.Context, name string) (*MediaHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	state := MediaStateActive
	if len(f.states) > 0 {
		state = f.states[0]
		if len(f.states) > 1 {
			f.states = f.states[1:]
		}
	}
	h := &MediaHandle{Name: name, URI: "https://backend/" + name, MIMEType: f.uploadedMIME, State: state}
	if state == MediaStateFailed {
		h.Error = "unsupported codec"
	}
	return h, nil
}

func (f *fakeGemini) DeleteMedia(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if ctx.Err() != nil {
		return errors.New("cleanup context already cancelled")
	}
	return f.deleteErr
}

func (f *fakeGemini) GenerateJSONFromMedia(ctx context.Context, prompt string, media *MediaHandle, schema *genai.Schema) (string, error) {
	f.mu.Lock()
	f.generateCalls++
	f.lastPrompt = prompt
	shouldPanic := f.panicOnJSON
	f.mu.Unlock()
	if shouldPanic {
		panic("backend exploded")
	}
	return f.judgmentRaw, f.judgmentErr
}
