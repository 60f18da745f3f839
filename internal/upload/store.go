package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Result is what the storage collaborator hands back for a stored blob.
type Result struct {
	ContentID string `json:"content_id"`
	URL       string `json:"url"`
}

// Store persists binary payloads. The production implementation pins to
// IPFS; LocalStore keeps dev and tests offline.
type Store interface {
	Upload(ctx context.Context, data []byte, filename, mimeType string) (Result, error)
}

// LocalStore writes blobs under Dir and serves them from BaseURL.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{Dir: dir, BaseURL: "/uploads"}
}

func (s *LocalStore) Upload(ctx context.Context, data []byte, filename, mimeType string) (Result, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("ensure upload dir: %w", err)
	}

	id := uuid.NewString()
	name := id + sanitizeExt(filename)
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("write upload: %w", err)
	}

	return Result{ContentID: id, URL: s.BaseURL + "/" + name}, nil
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".mp3", ".wav", ".md":
		return ext
	default:
		return ""
	}
}
