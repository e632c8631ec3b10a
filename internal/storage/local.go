package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"catalog-api/internal/domain"
)

// LocalStore keeps assets as plain files in a directory on disk.
type LocalStore struct {
	root string
	now  func() time.Time
}

// NewLocalStore creates root if needed and returns a store writing into it.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{root: root, now: time.Now}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

// Save writes the upload as a new file. Two uploads with the same sanitized
// name in the same millisecond overwrite each other.
func (s *LocalStore) Save(ctx context.Context, upload domain.Upload) (domain.AssetRef, error) {
	name, err := FileName(upload.OriginalName, upload.ContentType, s.now())
	if err != nil {
		return domain.AssetRef{}, err
	}

	if err := ctx.Err(); err != nil {
		return domain.AssetRef{}, err
	}

	if err := os.WriteFile(filepath.Join(s.root, name), upload.Data, 0o644); err != nil {
		return domain.AssetRef{}, fmt.Errorf("failed to write asset: %w", err)
	}

	return domain.AssetRef{FileName: name}, nil
}

func (s *LocalStore) ServeAsset(w http.ResponseWriter, r *http.Request, name string) {
	if !validAssetName(name) {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.root, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, path)
}
