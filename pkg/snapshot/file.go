package snapshot

import (
	"context"
	"os"
	"path/filepath"
)

// FileStore writes snapshots into a local directory.
type FileStore struct {
	Dir string
}

// NewFileStore creates a FileStore, creating dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{Dir: dir}, nil
}

// Put writes data to Dir/name. The file is written under a temporary
// name and renamed, so readers never see a partial snapshot.
func (s *FileStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.Dir, filepath.Base(name))
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
