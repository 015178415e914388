// Package redis holds the Redis-backed stores. Link codes are short-lived
// one-shot values, which maps onto SET EX + GETDEL.
package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/platform/envutil"
)

const linkCodeKeyPrefix = "wa:link:"

// LinkCodeStore keeps the short numeric codes users send over WhatsApp to
// attach their phone number to an account. Codes expire on their own and
// are consumed on first use.
type LinkCodeStore interface {
	Put(ctx context.Context, code string, userID uuid.UUID, ttl time.Duration) error
	Take(ctx context.Context, code string) (uuid.UUID, error)
	Close() error
}

type linkCodeStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewLinkCodeStore(log *logger.Logger) (LinkCodeStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &linkCodeStore{
		log: log.With("service", "LinkCodeStore"),
		rdb: rdb,
	}, nil
}

func (s *linkCodeStore) Put(ctx context.Context, code string, userID uuid.UUID, ttl time.Duration) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("link code store not initialized")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("link code required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return s.rdb.Set(ctx, linkCodeKeyPrefix+code, userID.String(), ttl).Err()
}

// Take returns the user the code was issued for and deletes it, so a code
// can never link two numbers. Unknown or expired codes yield ErrNotFound.
func (s *linkCodeStore) Take(ctx context.Context, code string) (uuid.UUID, error) {
	if s == nil || s.rdb == nil {
		return uuid.Nil, fmt.Errorf("link code store not initialized")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return uuid.Nil, fmt.Errorf("link code required: %w", pkgerrors.ErrInvalidArgument)
	}

	raw, err := s.rdb.GetDel(ctx, linkCodeKeyPrefix+code).Result()
	if errors.Is(err, goredis.Nil) {
		return uuid.Nil, fmt.Errorf("link code %q: %w", code, pkgerrors.ErrNotFound)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("redis getdel: %w", err)
	}

	userID, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse stored user id: %w", err)
	}
	return userID, nil
}

func (s *linkCodeStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
