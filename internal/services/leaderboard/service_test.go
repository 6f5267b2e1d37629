package leaderboard

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/infra/pgtestutil"
	"github.com/fastprodman/guildledger/internal/repos/accounts"
)

const g1 economy.GuildID = 1001

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	failGet bool
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gets++

	if c.failGet {
		return nil, false, errors.New("cache down")
	}

	v, ok := c.entries[key]

	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = value

	return nil
}

func seed(t *testing.T, exec func(string, ...any) error, user economy.UserID, balance int64) {
	t.Helper()

	require.NoError(t, exec(`INSERT INTO accounts (guild_id, user_id, balance) VALUES ($1, $2, $3)`, g1, user, balance))
}

func TestLeaderboard_TopIsCached(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	exec := func(q string, args ...any) error {
		_, err := db.Exec(q, args...)
		return err
	}

	seed(t, exec, 1, 30)
	seed(t, exec, 2, 90)

	cache := &mapCache{entries: map[string][]byte{}}
	s := New(db, WithCache(cache))
	ctx := context.Background()

	first, err := s.Top(ctx, g1, economy.StatCurrency, 0)
	require.NoError(t, err)
	require.Equal(t, []accounts.Ranked{{Rank: 1, UserID: 2, Value: 90}, {Rank: 2, UserID: 1, Value: 30}}, first)
	require.Len(t, cache.entries, 1)

	// a write after caching is not visible until the entry expires
	require.NoError(t, exec(`UPDATE accounts SET balance = 500 WHERE user_id = 1`))

	second, err := s.Top(ctx, g1, economy.StatCurrency, 0)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// cache errors fall back to storage
	cache.failGet = true

	third, err := s.Top(ctx, g1, economy.StatCurrency, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, third[0].UserID)
}

func TestLeaderboard_ActivityWindows(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now.Add(-10 * 24 * time.Hour)

	s := New(db, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	require.NoError(t, s.Touch(ctx, g1, 1, 2))

	clock = now
	require.NoError(t, s.Touch(ctx, g1, 3))

	active, err := s.Active(ctx, g1, 7)
	require.NoError(t, err)
	require.Equal(t, []economy.UserID{3}, active)

	inactive, err := s.Inactive(ctx, g1, 7)
	require.NoError(t, err)
	require.Equal(t, []economy.UserID{1, 2}, inactive)

	_, err = s.Active(ctx, g1, 0)
	require.ErrorIs(t, err, economy.ErrInvalidWindow)
}

func TestLeaderboard_AdjustStat(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	s := New(db)
	ctx := context.Background()

	v, ok, err := s.AdjustStat(ctx, 1, g1, economy.StatXP, 20)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 20, v)

	_, ok, err = s.AdjustStat(ctx, 1, g1, economy.StatXP, -21)
	require.NoError(t, err)
	require.False(t, ok)

	v, ok, err = s.AdjustStat(ctx, 1, g1, economy.StatXP, -5)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 15, v)

	_, _, err = s.AdjustStat(ctx, 1, g1, economy.StatBumps, -1)
	require.ErrorIs(t, err, economy.ErrStatNotAdjustable)

	_, _, err = s.AdjustStat(ctx, 1, g1, economy.StatCurrency, 5)
	require.ErrorIs(t, err, economy.ErrStatNotAdjustable)

	_, _, err = s.AdjustStat(ctx, 1, g1, economy.StatLevel, 1)
	require.ErrorIs(t, err, economy.ErrStatNotAdjustable)

	_, _, err = s.AdjustStat(ctx, 1, g1, economy.StatXP, math.MinInt64)
	require.ErrorIs(t, err, economy.ErrAmountOverflow)
	require.ErrorIs(t, err, economy.ErrInvalidInput)

	_, _, err = s.AdjustStat(ctx, 1, g1, economy.StatBumps, 2)
	require.NoError(t, err)

	top, err := s.Top(ctx, g1, economy.StatBumps, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.EqualValues(t, 2, top[0].Value)

	got, err := s.Stat(ctx, 1, g1, economy.StatXP)
	require.NoError(t, err)
	require.EqualValues(t, 15, got)

	// level = floor((15 - 6) ^ (1 / 2.5))
	got, err = s.Stat(ctx, 1, g1, economy.StatLevel)
	require.NoError(t, err)
	require.EqualValues(t, 2, got)
}
