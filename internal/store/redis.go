package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"letraz-autoapply/pkg/models"
)

// maxHistory bounds the attempts list kept in Redis
const maxHistory = 1000

// RedisOptions configures a RedisStore
type RedisOptions struct {
	URL       string
	Password  string
	DB        int
	Timeout   time.Duration
	KeyPrefix string
}

// RedisStore keeps the ledger in Redis so several machines can share it.
// Submitted job keys live in a set; every attempt is pushed to a capped list.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if opts.Password != "" {
		redisOpts.Password = opts.Password
	}
	if opts.DB != 0 {
		redisOpts.DB = opts.DB
	}
	if opts.Timeout > 0 {
		redisOpts.DialTimeout = opts.Timeout
		redisOpts.ReadTimeout = opts.Timeout
		redisOpts.WriteTimeout = opts.Timeout
	}

	client := redis.NewClient(redisOpts)
	s := &RedisStore{client: client, prefix: opts.KeyPrefix, timeout: opts.Timeout}
	if s.prefix == "" {
		s.prefix = "autoapply"
	}

	pingCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return s, nil
}

func (s *RedisStore) appliedKey() string  { return s.prefix + ":applied" }
func (s *RedisStore) attemptsKey() string { return s.prefix + ":attempts" }

func (s *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *RedisStore) HasApplied(ctx context.Context, jobKey string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := s.client.SIsMember(ctx, s.appliedKey(), jobKey).Result()
	if err != nil {
		return false, fmt.Errorf("checking applied status for %s: %w", jobKey, err)
	}
	return ok, nil
}

func (s *RedisStore) Record(ctx context.Context, rec models.ApplicationRecord) error {
	if rec.AttemptedAt.IsZero() {
		rec.AttemptedAt = time.Now()
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding attempt: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.attemptsKey(), payload)
	pipe.LTrim(ctx, s.attemptsKey(), 0, maxHistory-1)
	if rec.Outcome == models.OutcomeSubmitted {
		pipe.SAdd(ctx, s.appliedKey(), rec.JobID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("recording attempt for %s: %w", rec.JobID, err)
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, limit int) ([]models.ApplicationRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.client.LRange(ctx, s.attemptsKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing recent attempts: %w", err)
	}
	out := make([]models.ApplicationRecord, 0, len(raw))
	for _, item := range raw {
		var rec models.ApplicationRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decoding attempt: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
