package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jgivc/darkhammer/internal/common"
	"github.com/jgivc/darkhammer/internal/entity"
)

const (
	serviceName        = "persist"
	defaultSaveTimeout = 2 * time.Second
)

type SnapshotRepository interface {
	Load(ctx context.Context, key string) (entity.Snapshot, error)
	Save(ctx context.Context, key string, snap entity.Snapshot) error
}

type StateStore interface {
	Versioned() (uint64, entity.Snapshot)
	Restore(snap entity.Snapshot)
	Subscribe(fn func(seq uint64, snap entity.Snapshot)) func()
}

// Persister restores the store once and then saves it after every change.
// Saves run one at a time and a snapshot older than the last written one is dropped.
type Persister struct {
	repo        SnapshotRepository
	store       StateStore
	key         string
	saveTimeout time.Duration
	unsubscribe func()

	mu      sync.Mutex
	lastSeq uint64
	written bool

	log *slog.Logger
}

func NewPersister(repo SnapshotRepository, store StateStore, key string, saveTimeout time.Duration, log *slog.Logger) *Persister {
	if saveTimeout <= 0 {
		saveTimeout = defaultSaveTimeout
	}

	return &Persister{
		repo:        repo,
		store:       store,
		key:         key,
		saveTimeout: saveTimeout,
		log:         log.With(slog.String("service", serviceName), slog.String("key", key)),
	}
}

// Restore loads the persisted snapshot into the store. A missing snapshot keeps the defaults.
func (p *Persister) Restore(ctx context.Context) error {
	snap, err := p.repo.Load(ctx, p.key)
	if err != nil {
		if errors.Is(err, common.ErrSnapshotNotFoundError) {
			p.log.Info("No persisted snapshot, using defaults")

			return nil
		}

		p.log.Error("Cannot load snapshot", slog.Any("error", err))

		return fmt.Errorf("cannot load snapshot: %w", err)
	}

	p.store.Restore(snap)

	return nil
}

// Start subscribes to store changes. Calling it twice has no effect.
func (p *Persister) Start() {
	if p.unsubscribe != nil {
		return
	}

	p.unsubscribe = p.store.Subscribe(p.save)
	p.log.Info("Persistence started")
}

func (p *Persister) Stop() {
	if p.unsubscribe == nil {
		return
	}

	p.unsubscribe()
	p.unsubscribe = nil
	p.log.Info("Persistence stopped")
}

// Flush saves the current state right away.
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	seq, snap := p.store.Versioned()
	if err := p.repo.Save(ctx, p.key, snap); err != nil {
		return fmt.Errorf("cannot save snapshot: %w", err)
	}
	p.mark(seq)

	return nil
}

func (p *Persister) save(seq uint64, snap entity.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.written && seq <= p.lastSeq {
		p.log.Debug("Stale snapshot dropped", slog.Uint64("seq", seq), slog.Uint64("last_seq", p.lastSeq))

		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.saveTimeout)
	defer cancel()

	// lastSeq advances even when the write fails.
	p.mark(seq)

	if err := p.repo.Save(ctx, p.key, snap); err != nil {
		p.log.Error("Cannot save snapshot", slog.Uint64("seq", seq), slog.Any("error", err))
	}
}

func (p *Persister) mark(seq uint64) {
	if !p.written || seq > p.lastSeq {
		p.lastSeq = seq
	}
	p.written = true
}
