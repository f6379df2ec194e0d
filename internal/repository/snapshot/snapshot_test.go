package snapshot

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jgivc/darkhammer/internal/common"
	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testKey = "dark-hammer-storage"

type repository interface {
	Load(ctx context.Context, key string) (entity.Snapshot, error)
	Save(ctx context.Context, key string, snap entity.Snapshot) error
}

func testSnapshot() entity.Snapshot {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	scheduled := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	selected := "UC1"
	apiKey := "AIza-test"
	channelID := "UC2"

	return entity.Snapshot{
		Theme:             entity.ThemeLight,
		SidebarCollapsed:  true,
		SelectedChannelID: &selected,
		DateRange:         entity.DateRangeCustom,
		CustomDateRange:   entity.CustomDateRange{StartDate: &start, EndDate: &end},
		YouTubeAPIKey:     &apiKey,
		IsAuthenticated:   false,
		UserName:          "Dana",
		UploadTemplates: []entity.UploadTemplate{
			{
				ID:            "t1",
				ChannelID:     &channelID,
				Name:          "Weekly",
				Title:         "Weekly update",
				Description:   "Every week #news",
				Tags:          []string{"news", "weekly"},
				Visibility:    entity.VisibilityUnlisted,
				ScheduledDate: &scheduled,
			},
			{ID: "t2", Name: "Global", Tags: []string{}, Visibility: entity.VisibilityPublic},
		},
		Channels: []entity.Channel{
			{ID: "UC1", Title: "Main", Thumbnail: "https://example.com/1.jpg", IsConnected: true},
			{ID: "UC2", Title: "Second"},
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRepositories(t *testing.T) {
	testCases := []struct {
		name string
		repo func(t *testing.T) repository
	}{
		{
			name: "file",
			repo: func(t *testing.T) repository {
				r, err := NewFileRepositoryWithFS(afero.NewMemMapFs(), "/data", testLogger())
				require.NoError(t, err)

				return r
			},
		},
		{
			name: "sqlite",
			repo: func(t *testing.T) repository {
				r, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"), testLogger())
				require.NoError(t, err)
				t.Cleanup(func() { r.Close() })

				return r
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			repo := tc.repo(t)

			_, err := repo.Load(ctx, testKey)
			require.ErrorIs(t, err, common.ErrSnapshotNotFoundError)

			want := testSnapshot()
			require.NoError(t, repo.Save(ctx, testKey, want))

			got, err := repo.Load(ctx, testKey)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
			}

			want.Theme = entity.ThemeDark
			want.Channels = want.Channels[:1]
			require.NoError(t, repo.Save(ctx, testKey, want))

			got, err = repo.Load(ctx, testKey)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("snapshot mismatch after overwrite (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFileRepositoryLayout(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo, err := NewFileRepositoryWithFS(fs, "/data", testLogger())
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), testKey, testSnapshot()))

	exists, err := afero.Exists(fs, "/data/"+testKey+".json")
	require.NoError(t, err)
	require.True(t, exists)

	entries, err := afero.ReadDir(fs, "/data")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, afero.WriteFile(fs, "/data/broken.json", []byte("{"), 0o600))
	_, err = repo.Load(context.Background(), "broken")
	require.Error(t, err)
	require.NotErrorIs(t, err, common.ErrSnapshotNotFoundError)
}

func TestFileRepositoryConcurrentSave(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepository(dir, testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	const writers = 8

	for round := 0; round < 20; round++ {
		names := make(map[string]struct{}, writers)
		errs := make(chan error, writers)

		var wg sync.WaitGroup
		for n := 0; n < writers; n++ {
			snap := testSnapshot()
			snap.UserName = strings.Repeat("x", 1+n*512)
			names[snap.UserName] = struct{}{}

			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- repo.Save(ctx, testKey, snap)
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		got, err := repo.Load(ctx, testKey)
		require.NoError(t, err, "round %d", round)
		require.Contains(t, names, got.UserName)
	}

	entries, err := afero.ReadDir(afero.NewOsFs(), dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, testKey+".json", entries[0].Name())
}
