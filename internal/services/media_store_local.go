package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type localMediaStore struct {
	uploadPath string
	baseURL    string
}

// NewLocalMediaStore keeps recordings below uploadPath. They are served by the
// API under /media, so baseURL is the public origin of the API.
func NewLocalMediaStore(uploadPath, baseURL string) MediaStore {
	return &localMediaStore{
		uploadPath: uploadPath,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (s *localMediaStore) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// Upload implements MediaStore. Uploading the same publicID twice replaces
// the earlier recording.
func (s *localMediaStore) Upload(ctx context.Context, r io.Reader, folder, publicID, contentType string) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, uploadError("local", err)
	}

	key := mediaKey(folder, publicID, contentType)
	filePath := filepath.Join(s.uploadPath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, uploadError("create folder", err)
	}

	// Write next to the target and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".upload_*")
	if err != nil {
		return nil, uploadError("create destination file", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, uploadError("save file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, uploadError("save file", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return nil, uploadError("save file", err)
	}

	return &UploadResult{
		SecureURL: s.baseURL + "/media/" + key,
		Key:       key,
	}, nil
}

// EnsureUploadDir creates the local media root when store is disk backed.
func EnsureUploadDir(store MediaStore) error {
	if local, ok := store.(*localMediaStore); ok {
		return local.EnsureUploadDir()
	}
	return nil
}
