package persist

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FileStore keeps one file per key under dir, replaced atomically on write.
type FileStore struct {
	dir   string
	quota int64
}

func NewFileStore(dir string, quota int64) *FileStore {
	return &FileStore{dir: dir, quota: quota}
}

func (f *FileStore) path(key string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(f.dir, name+".json")
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read snapshot %s", key)
	}
	return data, nil
}

func (f *FileStore) Set(ctx context.Context, key string, data []byte) error {
	if err := checkQuota(f.quota, data); err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create snapshot dir %s", f.dir)
	}

	tmp, err := os.CreateTemp(f.dir, ".snapshot-tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpPath, f.path(key)); err != nil {
		cleanup()
		return errors.Wrapf(err, "replace snapshot %s", key)
	}
	return nil
}

func (f *FileStore) Remove(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "remove snapshot %s", key)
	}
	return nil
}
