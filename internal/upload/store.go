// Package upload stores uploaded files under a per-user directory with
// freshly generated names. The client-supplied name is only trusted for
// its extension.
package upload

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes uploads to {root}/{userID}/{randomID}{ext}.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Save writes data to a freshly named file in the owner's directory and
// returns the stored path.
func (s *Store) Save(userID uuid.UUID, originalName string, data []byte) (string, error) {
	dir := filepath.Join(s.root, userID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString()+filepath.Ext(originalName))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

// Remove deletes a stored file. Absence is not an error; cleanup is
// best-effort.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
