package economy

import (
	"fmt"
	"strconv"
)

// UserID is a platform user snowflake.
type UserID uint64

// GuildID is a platform guild snowflake.
type GuildID uint64

// PositionID identifies a leveraged position owned by the trading subsystem.
type PositionID uint64

func (u UserID) String() string     { return strconv.FormatUint(uint64(u), 10) }
func (g GuildID) String() string    { return strconv.FormatUint(uint64(g), 10) }
func (p PositionID) String() string { return strconv.FormatUint(uint64(p), 10) }

// ParticipantKind tags the variants of Participant.
type ParticipantKind string

const (
	KindUser           ParticipantKind = "USER"
	KindSystem         ParticipantKind = "SYSTEM"
	KindCollateralPool ParticipantKind = "COLLATERAL_POOL"
)

// Participant is the sender or receiver of a ledger event. Only KindUser carries an id.
type Participant struct {
	Kind ParticipantKind
	ID   UserID
}

var (
	// System is the issuing authority: the sender of every MINT and the receiver of every BURN.
	System = Participant{Kind: KindSystem}
	// CollateralPool is the sender of burns taken from position collateral.
	CollateralPool = Participant{Kind: KindCollateralPool}
)

// User returns the participant for a real account holder.
func User(id UserID) Participant {
	return Participant{Kind: KindUser, ID: id}
}

func (p Participant) IsUser() bool { return p.Kind == KindUser }

// UserID returns the account holder and true, or false for the reserved participants.
func (p Participant) UserID() (UserID, bool) {
	if p.Kind != KindUser {
		return 0, false
	}

	return p.ID, true
}

func (p Participant) String() string {
	if p.Kind == KindUser {
		return "user:" + p.ID.String()
	}

	return string(p.Kind)
}

// ParseParticipant rebuilds a participant from its stored kind and nullable id.
func ParseParticipant(kind string, id *int64) (Participant, error) {
	switch ParticipantKind(kind) {
	case KindUser:
		if id == nil || *id <= 0 {
			return Participant{}, fmt.Errorf("user participant without id: %w", ErrInvalidID)
		}

		return User(UserID(*id)), nil
	case KindSystem:
		return System, nil
	case KindCollateralPool:
		return CollateralPool, nil
	default:
		return Participant{}, fmt.Errorf("unknown participant kind %q", kind)
	}
}
