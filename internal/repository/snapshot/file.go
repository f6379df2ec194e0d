package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jgivc/darkhammer/internal/common"
	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/spf13/afero"
)

const (
	fileExt      = ".json"
	tempFileExt  = ".tmp"
	dataDirPerm  = 0o755
	dataFilePerm = 0o600
)

// fileRepository keeps one JSON document per key in dir.
type fileRepository struct {
	fs  afero.Fs
	dir string
	log *slog.Logger
}

func NewFileRepository(dir string, log *slog.Logger) (*fileRepository, error) {
	return NewFileRepositoryWithFS(afero.NewOsFs(), dir, log)
}

func NewFileRepositoryWithFS(fs afero.Fs, dir string, log *slog.Logger) (*fileRepository, error) {
	if err := fs.MkdirAll(dir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("cannot create data dir %s: %w", dir, err)
	}

	return &fileRepository{
		fs:  fs,
		dir: dir,
		log: log.With(slog.String("item", "FileSnapshotRepository")),
	}, nil
}

func (r *fileRepository) Load(ctx context.Context, key string) (entity.Snapshot, error) {
	data, err := afero.ReadFile(r.fs, r.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return entity.Snapshot{}, common.ErrSnapshotNotFoundError
		}

		return entity.Snapshot{}, fmt.Errorf("cannot read snapshot %s: %w", key, err)
	}

	return decode(data)
}

// Save replaces the snapshot through a temp file and rename.
func (r *fileRepository) Save(ctx context.Context, key string, snap entity.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}

	path := r.path(key)

	tmp, err := r.writeTemp(key, data)
	if err != nil {
		return fmt.Errorf("cannot write snapshot %s: %w", key, err)
	}

	if err := r.fs.Rename(tmp, path); err != nil {
		_ = r.fs.Remove(tmp)

		return fmt.Errorf("cannot replace snapshot %s: %w", key, err)
	}

	r.log.Debug("Snapshot saved", slog.String("path", path), slog.Int("size", len(data)))

	return nil
}

// writeTemp writes data to a temp file of its own next to the snapshot and returns its name.
func (r *fileRepository) writeTemp(key string, data []byte) (string, error) {
	f, err := afero.TempFile(r.fs, r.dir, filepath.Base(key)+"-*"+tempFileExt)
	if err != nil {
		return "", err
	}
	name := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = r.fs.Remove(name)

		return "", err
	}

	if err := f.Close(); err != nil {
		_ = r.fs.Remove(name)

		return "", err
	}

	if err := r.fs.Chmod(name, dataFilePerm); err != nil {
		_ = r.fs.Remove(name)

		return "", err
	}

	return name, nil
}

func (r *fileRepository) path(key string) string {
	return filepath.Join(r.dir, filepath.Base(key)+fileExt)
}

func encode(snap entity.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("cannot encode snapshot: %w", err)
	}

	return data, nil
}

func decode(data []byte) (entity.Snapshot, error) {
	var snap entity.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return entity.Snapshot{}, fmt.Errorf("cannot decode snapshot: %w", err)
	}

	return snap, nil
}
