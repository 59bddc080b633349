package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore is an ArtifactStore over a directory tree: one subdirectory per
// stage, artifacts named after the input file.
type LocalStore struct {
	root   string
	policy CollisionPolicy
}

// NewLocalStore creates a local artifact store rooted at dir.
func NewLocalStore(dir string, policy CollisionPolicy) (*LocalStore, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("local artifact store: invalid collision policy %q", policy)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local artifact store: %w", err)
	}
	return &LocalStore{root: dir, policy: policy}, nil
}

// Put writes the artifact under root/stage/filename, applying the collision
// policy when the target already exists.
func (s *LocalStore) Put(_ context.Context, stage, filename string, data []byte) (string, error) {
	dir := filepath.Join(s.root, stage)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact dir %s: %w", dir, err)
	}

	name := filepath.Base(filename)
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		switch s.policy {
		case Reject:
			return "", fmt.Errorf("artifact %s/%s: %w", stage, name, ErrArtifactExists)
		case Rename:
			var renameErr error
			name, renameErr = s.nextFreeName(dir, name)
			if renameErr != nil {
				return "", renameErr
			}
			path = filepath.Join(dir, name)
		}
		// Overwrite falls through and replaces the file.
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", path, err)
	}
	return filepath.Join(stage, name), nil
}

// nextFreeName returns name with the lowest numeric suffix not yet taken,
// e.g. reading.wav -> reading-1.wav.
func (s *LocalStore) nextFreeName(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; i < 10000; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("artifact %s: no free rename slot", name)
}
