package activity

import (
	"context"
	"time"

	"github.com/fastprodman/guildledger/internal/economy"
)

// Activity tracks when each member of a guild was last seen.
type Activity interface {
	Touch(ctx context.Context, user economy.UserID, guild economy.GuildID, at time.Time) error
	TouchMany(ctx context.Context, guild economy.GuildID, users []economy.UserID, at time.Time) error

	// ActiveUsers lists members seen at or after since, most recent first.
	ActiveUsers(ctx context.Context, guild economy.GuildID, since time.Time) ([]economy.UserID, error)
	// InactiveUsers lists members last seen before since, longest idle first.
	InactiveUsers(ctx context.Context, guild economy.GuildID, since time.Time) ([]economy.UserID, error)
}
