package leaderboard

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/infra/logging"
	"github.com/fastprodman/guildledger/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/guildledger/internal/repos/accounts/postgres"
	"github.com/fastprodman/guildledger/internal/repos/activity"
	pgactivity "github.com/fastprodman/guildledger/internal/repos/activity/postgres"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Cache stores encoded leaderboard pages. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type noCache struct{}

func (noCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noCache) Set(context.Context, string, []byte) error         { return nil }

// Service is the read side over balances, stats and activity.
type Service struct {
	accounts accounts.Accounts
	activity activity.Activity
	cache    Cache
	now      func() time.Time
}

type Option func(*Service)

// WithCache serves Top from c when possible. Cached pages may lag writes by
// the cache's TTL.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(dbx *sql.DB, opts ...Option) *Service {
	s := &Service{
		accounts: pgaccounts.New(dbx),
		activity: pgactivity.New(dbx),
		cache:    noCache{},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Top ranks the guild by stat. Equal values share a rank and older accounts
// come first within a rank.
func (s *Service) Top(ctx context.Context, guild economy.GuildID, stat economy.Stat, limit int) ([]accounts.Ranked, error) {
	if guild == 0 {
		return nil, economy.ErrInvalidID
	}

	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	key := fmt.Sprintf("top:%s:%s:%d", guild, stat, limit)
	log := logging.FromContext(ctx)

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("leaderboard cache get", slog.String("key", key), slog.Any("err", err))
	}

	if ok {
		var rows []accounts.Ranked

		err = json.Unmarshal(raw, &rows)
		if err == nil {
			return rows, nil
		}

		log.Warn("leaderboard cache decode", slog.String("key", key), slog.Any("err", err))
	}

	rows, err := s.accounts.Top(ctx, guild, stat, limit)
	if err != nil {
		return nil, fmt.Errorf("top: %w", err)
	}

	raw, err = json.Marshal(rows)
	if err == nil {
		err = s.cache.Set(ctx, key, raw)
	}

	if err != nil {
		log.Warn("leaderboard cache set", slog.String("key", key), slog.Any("err", err))
	}

	return rows, nil
}

func (s *Service) window(days int) (time.Time, error) {
	if days <= 0 {
		return time.Time{}, economy.ErrInvalidWindow
	}

	return s.now().Add(-time.Duration(days) * 24 * time.Hour), nil
}

// Active lists members seen within the last days days.
func (s *Service) Active(ctx context.Context, guild economy.GuildID, days int) ([]economy.UserID, error) {
	since, err := s.window(days)
	if err != nil {
		return nil, err
	}

	users, err := s.activity.ActiveUsers(ctx, guild, since)
	if err != nil {
		return nil, fmt.Errorf("active users: %w", err)
	}

	return users, nil
}

// Inactive lists members not seen within the last days days.
func (s *Service) Inactive(ctx context.Context, guild economy.GuildID, days int) ([]economy.UserID, error) {
	since, err := s.window(days)
	if err != nil {
		return nil, err
	}

	users, err := s.activity.InactiveUsers(ctx, guild, since)
	if err != nil {
		return nil, fmt.Errorf("inactive users: %w", err)
	}

	return users, nil
}

// Touch marks users as active now.
func (s *Service) Touch(ctx context.Context, guild economy.GuildID, users ...economy.UserID) error {
	if len(users) == 0 {
		return nil
	}

	for _, u := range users {
		err := economy.ValidateAccount(u, guild)
		if err != nil {
			return err
		}
	}

	var err error
	if len(users) == 1 {
		err = s.activity.Touch(ctx, users[0], guild, s.now())
	} else {
		err = s.activity.TouchMany(ctx, guild, users, s.now())
	}

	if err != nil {
		return fmt.Errorf("touch: %w", err)
	}

	return nil
}
