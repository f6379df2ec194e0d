package templates

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jgivc/darkhammer/internal/common"
	"github.com/jgivc/darkhammer/internal/config"
	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/spf13/afero"
)

const (
	maxFiles = 500
)

type FSAdapter interface {
	ToTemplate(filePath string) (*entity.TemplateFile, error)
}

type templateStorage struct {
	running atomic.Bool
	fs      afero.Fs
	adapter FSAdapter
	cfg     *config.ImportConfig
	log     *slog.Logger
}

func NewTemplateStorage(adapter FSAdapter, cfg *config.ImportConfig, log *slog.Logger) *templateStorage {
	return NewTemplateStorageWithFS(afero.NewOsFs(), adapter, cfg, log)
}

func NewTemplateStorageWithFS(fs afero.Fs, adapter FSAdapter, cfg *config.ImportConfig, log *slog.Logger) *templateStorage {
	return &templateStorage{
		fs:      fs,
		adapter: adapter,
		cfg:     cfg,
		log:     log.With(slog.String("item", "TemplateStorage")),
	}
}

// Scan parses every template file of the work dir. Files that cannot be parsed are logged and skipped.
// The result is sorted by source path.
func (s *templateStorage) Scan(ctx context.Context) ([]*entity.TemplateFile, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, common.ErrImportProcessHasAlreadyStarted
	}
	defer s.running.Store(false)

	files, err := s.listFiles()
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return []*entity.TemplateFile{}, nil
	}

	workers := max(s.cfg.Workers, 1)

	in := make(chan string, len(files))
	out := make(chan *entity.TemplateFile, len(files))

	for _, file := range files {
		in <- file
	}
	close(in)

	var wg sync.WaitGroup
	wg.Add(workers)
	for n := 0; n < workers; n++ {
		go s.worker(ctx, n, in, out, &wg)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	templates := make([]*entity.TemplateFile, 0, len(files))
	for tf := range out {
		s.log.Info("Found template", slog.String("id", tf.Template.ID), slog.String("path", tf.SourcePath))
		templates = append(templates, tf)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].SourcePath < templates[j].SourcePath
	})

	return templates, nil
}

func (s *templateStorage) listFiles() ([]string, error) {
	if s.cfg.WorkDir == "" {
		return nil, fmt.Errorf("import work dir is not set")
	}

	entries, err := afero.ReadDir(s.fs, s.cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read import dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		if s.cfg.Extension != "" && !strings.EqualFold(filepath.Ext(name), s.cfg.Extension) {
			continue
		}

		if slices.Contains(s.cfg.SkipFiles, name) {
			continue
		}

		files = append(files, filepath.Join(s.cfg.WorkDir, name))
		if len(files) >= maxFiles {
			s.log.Warn("Too many template files, the rest are ignored", slog.Int("max", maxFiles))

			break
		}
	}

	return files, nil
}

func (s *templateStorage) worker(ctx context.Context, n int, in chan string, out chan *entity.TemplateFile, wg *sync.WaitGroup) {
	defer wg.Done()

	log := s.log.With(slog.Int("worker_id", n))
	log.Debug("Started")

	for filePath := range in {
		tf, err := s.adapter.ToTemplate(filePath)
		if err != nil {
			log.Error("Cannot parse template", slog.String("file_path", filePath), slog.Any("error", err))

			continue
		}

		select {
		case <-ctx.Done():
			log.Info("Interrupted")

			return
		case out <- tf:
		}
	}

	log.Debug("Done")
}
