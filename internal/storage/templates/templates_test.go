package templates

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jgivc/darkhammer/internal/adapter/fsadapter"
	"github.com/jgivc/darkhammer/internal/common"
	"github.com/jgivc/darkhammer/internal/config"
	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type blockingAdapter struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingAdapter) ToTemplate(filePath string) (*entity.TemplateFile, error) {
	close(b.started)
	<-b.release

	return &entity.TemplateFile{SourcePath: filePath}, nil
}

func TestScan(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/import/b.md":       "---\nname: B\n---\nb",
		"/import/a.MD":       "---\nname: A\nvisibility: private\n---\na",
		"/import/broken.md":  "---\nvisibility: nope\n---\n",
		"/import/README.md":  "skip me",
		"/import/notes.txt":  "wrong extension",
		"/import/.hidden.md": "hidden",
		"/import/sub/c.md":   "nested",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0644))
	}

	cfg := &config.ImportConfig{
		WorkDir:   "/import",
		Workers:   3,
		Extension: ".md",
		SkipFiles: []string{"README.md"},
	}

	s := NewTemplateStorageWithFS(fs, fsadapter.NewFSAdapterWithFS(fs, testLogger()), cfg, testLogger())

	res, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, "/import/a.MD", res[0].SourcePath)
	require.Equal(t, "A", res[0].Template.Name)
	require.Equal(t, entity.VisibilityPrivate, res[0].Template.Visibility)
	require.Equal(t, "/import/b.md", res[1].SourcePath)
}

func TestScanEmptyAndMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/empty", 0755))

	a := fsadapter.NewFSAdapterWithFS(fs, testLogger())

	s := NewTemplateStorageWithFS(fs, a, &config.ImportConfig{WorkDir: "/empty", Workers: 1}, testLogger())
	res, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Empty(t, res)

	s = NewTemplateStorageWithFS(fs, a, &config.ImportConfig{WorkDir: "/missing", Workers: 1}, testLogger())
	_, err = s.Scan(context.Background())
	require.Error(t, err)

	s = NewTemplateStorageWithFS(fs, a, &config.ImportConfig{Workers: 1}, testLogger())
	_, err = s.Scan(context.Background())
	require.Error(t, err)
}

func TestScanAlreadyRunning(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/import/a.md", []byte("a"), 0644))

	adapter := &blockingAdapter{started: make(chan struct{}), release: make(chan struct{})}
	s := NewTemplateStorageWithFS(fs, adapter, &config.ImportConfig{WorkDir: "/import", Workers: 1}, testLogger())

	done := make(chan error, 1)
	go func() {
		_, err := s.Scan(context.Background())
		done <- err
	}()

	<-adapter.started
	_, err := s.Scan(context.Background())
	require.ErrorIs(t, err, common.ErrImportProcessHasAlreadyStarted)

	close(adapter.release)
	require.NoError(t, <-done)
}
