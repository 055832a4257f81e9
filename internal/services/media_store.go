package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrUpload wraps every failure of a MediaStore upload.
var ErrUpload = errors.New("media upload failed")

type UploadResult struct {
	SecureURL string `json:"secure_url"`
	Key       string `json:"key"`
}

// MediaStore durably stores a recorded answer and returns a URL the scoring
// pipeline can fetch. Folder and publicID are naming hints.
type MediaStore interface {
	Upload(ctx context.Context, r io.Reader, folder, publicID, contentType string) (*UploadResult, error)
}

// MediaPublicID names the recording of one candidate's answer to one question.
func MediaPublicID(candidateID, questionID uuid.UUID) string {
	return fmt.Sprintf("cand_%s_q_%s_vid", candidateID, questionID)
}

func mediaKey(folder, publicID, contentType string) string {
	return path.Join(sanitizeSegment(folder), sanitizeSegment(publicID)+extensionForContentType(contentType))
}

func sanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
	if s == "" {
		return uuid.New().String()
	}
	return s
}

func extensionForContentType(contentType string) string {
	mt := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	for ext, t := range videoTypes {
		if t == mt {
			return ext
		}
	}
	if strings.HasPrefix(mt, "video/") {
		return ".mp4"
	}
	return ".webm"
}

func uploadError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpload, op, err)
}
