package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/bookshelf/internal/domain/book"
	"github.com/geocoder89/bookshelf/internal/utils"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// RedisBookLists shares list caches across API instances.
type RedisBookLists struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewRedisBookLists(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *RedisBookLists {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &RedisBookLists{rdb: rdb, ttl: ttl, log: log}
}

func (r *RedisBookLists) Get(ctx context.Context, ownerID string) ([]book.Book, bool) {
	raw, err := r.rdb.Get(ctx, utils.BuildBooksListCacheKey(ownerID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WarnContext(ctx, "books_cache_get_failed", "err", err)
		}
		return nil, false
	}

	var books []book.Book
	if err := json.Unmarshal(raw, &books); err != nil {
		r.log.WarnContext(ctx, "books_cache_decode_failed", "err", err)
		return nil, false
	}

	return books, true
}

func (r *RedisBookLists) Set(ctx context.Context, ownerID string, books []book.Book) {
	raw, err := json.Marshal(books)
	if err != nil {
		return
	}

	if err := r.rdb.Set(ctx, utils.BuildBooksListCacheKey(ownerID), raw, r.ttl).Err(); err != nil {
		r.log.WarnContext(ctx, "books_cache_set_failed", "err", err)
	}
}

func (r *RedisBookLists) Invalidate(ctx context.Context, ownerID string) {
	if err := r.rdb.Del(ctx, utils.BuildBooksListCacheKey(ownerID)).Err(); err != nil {
		r.log.WarnContext(ctx, "books_cache_invalidate_failed", "err", err)
	}
}
