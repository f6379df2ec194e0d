package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jgivc/darkhammer/internal/adapter/descadapter"
	"github.com/jgivc/darkhammer/internal/adapter/fsadapter"
	"github.com/jgivc/darkhammer/internal/config"
	httphandler "github.com/jgivc/darkhammer/internal/handler/http"
	"github.com/jgivc/darkhammer/internal/repository/snapshot"
	"github.com/jgivc/darkhammer/internal/service/mockdata"
	"github.com/jgivc/darkhammer/internal/service/persist"
	srvtemplate "github.com/jgivc/darkhammer/internal/service/template"
	"github.com/jgivc/darkhammer/internal/state"
	"github.com/jgivc/darkhammer/internal/storage/templates"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v2"
)

const (
	restoreTimeout  = 5 * time.Second
	importTimeout   = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

type App struct {
	cfgPath   string
	cfg       *config.Config
	srv       *http.Server
	store     *state.Store
	persister *persist.Persister
	templates *srvtemplate.TemplateService
	closers   []io.Closer
	log       *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

func (a *App) Start() {
	a.cfg = config.MustLoad(a.cfgPath)

	lo := &slog.HandlerOptions{}
	switch a.cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, lo))
	a.log = log

	repo, err := a.newSnapshotRepository(log)
	if err != nil {
		panic(err)
	}

	a.store = state.New(state.WithLogger(log))
	a.persister = persist.NewPersister(repo, a.store, a.cfg.StorageConfig.Key, a.cfg.StorageConfig.SaveTimeout, log)

	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	if err := a.persister.Restore(ctx); err != nil {
		panic(err)
	}

	if key := a.cfg.YouTubeAPIKey; key != "" && a.store.Snapshot().YouTubeAPIKey == nil {
		a.store.SetYouTubeAPIKey(&key)
	}

	a.persister.Start()

	fixtures := mockdata.DefaultFixtures()
	if a.cfg.MockConfig.FixturesFile != "" {
		data, err := os.ReadFile(a.cfg.MockConfig.FixturesFile)
		if err != nil {
			panic(err)
		}

		if fixtures, err = mockdata.ParseFixtures(data); err != nil {
			panic(err)
		}
	}
	data := mockdata.NewService(fixtures, log,
		mockdata.WithDelay(a.cfg.MockConfig.Delay),
		mockdata.WithStaleTime(a.cfg.MockConfig.StaleTime),
	)

	desc, err := descadapter.NewDescAdapter("", "", log)
	if err != nil {
		panic(err)
	}

	fsa := fsadapter.NewFSAdapter(log)
	tplStorage := templates.NewTemplateStorage(fsa, &a.cfg.ImportConfig, log)
	a.templates = srvtemplate.NewTemplateService(tplStorage, a.store, desc, log)

	mux := httphandler.NewRouter(httphandler.Deps{
		Store:     a.store,
		Templates: a.templates,
		Data:      data,
	}, log)

	a.srv = &http.Server{
		Addr:    a.cfg.Listen,
		Handler: mux,
	}

	go func() {
		log.Info("Start listen", slog.String("addr", a.cfg.Listen), slog.String("url", a.cfg.HandlerConfig.URL))

		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Could not serve", slog.String("listen_addr", a.cfg.Listen), slog.Any("error", err))
			os.Exit(2)
		}
	}()
}

func (a *App) newSnapshotRepository(log *slog.Logger) (persist.SnapshotRepository, error) {
	sc := a.cfg.StorageConfig

	switch sc.Backend {
	case config.BackendRedis:
		opt, err := redis.ParseURL(sc.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("cannot parse redis url: %w", err)
		}

		rdb := redis.NewClient(opt)
		ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
		defer cancel()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			return nil, fmt.Errorf("cannot connect to redis: %w", err)
		}
		a.closers = append(a.closers, rdb)

		return snapshot.NewRedisRepository(rdb, log), nil
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(sc.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("cannot create database dir: %w", err)
		}

		repo, err := snapshot.NewSQLiteRepository(sc.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo)

		return repo, nil
	}

	repo, err := snapshot.NewFileRepository(sc.DataDir, log)
	if err != nil {
		return nil, err
	}

	return repo, nil
}

// Dump writes the current state as YAML to the dump file.
func (a *App) Dump() {
	data, err := yaml.Marshal(a.store.Snapshot())
	if err != nil {
		a.log.Error("Cannot marshal snapshot", slog.Any("error", err))

		return
	}

	if err := os.WriteFile(a.cfg.DumpFileName, data, 0644); err != nil {
		a.log.Error("Cannot dump snapshot", slog.String("file", a.cfg.DumpFileName), slog.Any("error", err))

		return
	}

	a.log.Info("Snapshot dumped", slog.String("file", a.cfg.DumpFileName))
}

func (a *App) Import() {
	ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
	defer cancel()

	fmt.Println("Importing templates...")

	res, err := a.templates.Import(ctx)
	if err != nil {
		fmt.Printf("Cannot import templates: %s\n", err)

		return
	}

	for i, t := range a.store.Snapshot().UploadTemplates {
		fmt.Printf("%d. %s (%s)\n", i+1, t.Name, t.ID)
	}

	fmt.Printf("Done. Added: %d, updated: %d.\n", res.Added, res.Updated)
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.srv != nil {
		if err := a.srv.Shutdown(ctx); err != nil {
			a.log.Error("Cannot shutdown server", slog.Any("error", err))
		}
	}

	if a.persister != nil {
		a.persister.Stop()
		if err := a.persister.Flush(ctx); err != nil {
			a.log.Error("Cannot flush snapshot", slog.Any("error", err))
		}
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Error("Cannot close", slog.Any("error", err))
		}
	}
}
