package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jgivc/darkhammer/internal/common"
	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/redis/go-redis/v9"
)

type redisRepository struct {
	cl  *redis.Client
	log *slog.Logger
}

func NewRedisRepository(cl *redis.Client, log *slog.Logger) *redisRepository {
	return &redisRepository{
		cl:  cl,
		log: log.With(slog.String("item", "RedisSnapshotRepository")),
	}
}

func (r *redisRepository) Load(ctx context.Context, key string) (entity.Snapshot, error) {
	data, err := r.cl.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entity.Snapshot{}, common.ErrSnapshotNotFoundError
		}

		return entity.Snapshot{}, fmt.Errorf("cannot get snapshot %s: %w", key, err)
	}

	return decode(data)
}

func (r *redisRepository) Save(ctx context.Context, key string, snap entity.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}

	if _, err := r.cl.Set(ctx, key, data, 0).Result(); err != nil {
		return fmt.Errorf("cannot set snapshot %s: %w", key, err)
	}

	r.log.Debug("Snapshot saved", slog.String("key", key), slog.Int("size", len(data)))

	return nil
}
