package economy

import (
	"fmt"
	"strings"
)

// EventType classifies a ledger event by its effect on total supply.
type EventType string

const (
	EventMint     EventType = "MINT"
	EventBurn     EventType = "BURN"
	EventTransfer EventType = "TRANSFER"
)

// Reason is the business cause of a ledger event. The set is closed: new codes
// must be added here and to the ledger_events CHECK constraint together.
type Reason string

const (
	ReasonAdminSet    Reason = "ADMIN_SET"
	ReasonAdminMint   Reason = "ADMIN_MINT"
	ReasonAdminRemove Reason = "ADMIN_REMOVE"
	ReasonP2PTransfer Reason = "P2P_TRANSFER"

	ReasonWealthTax           Reason = "WEALTH_TAX"
	ReasonWealthTaxCollateral Reason = "WEALTH_TAX_COLLATERAL"

	ReasonBlackjackBet             Reason = "BLACKJACK_BET"
	ReasonBlackjackDoubleDown      Reason = "BLACKJACK_DOUBLE_DOWN"
	ReasonBlackjackSplit           Reason = "BLACKJACK_SPLIT"
	ReasonBlackjackWin             Reason = "BLACKJACK_WIN"
	ReasonBlackjackBlackjack       Reason = "BLACKJACK_BLACKJACK"
	ReasonBlackjackPush            Reason = "BLACKJACK_PUSH"
	ReasonBlackjackSurrenderReturn Reason = "BLACKJACK_SURRENDER_RETURN"
)

var knownReasons = map[Reason]struct{}{
	ReasonAdminSet:                 {},
	ReasonAdminMint:                {},
	ReasonAdminRemove:              {},
	ReasonP2PTransfer:              {},
	ReasonWealthTax:                {},
	ReasonWealthTaxCollateral:      {},
	ReasonBlackjackBet:             {},
	ReasonBlackjackDoubleDown:      {},
	ReasonBlackjackSplit:           {},
	ReasonBlackjackWin:             {},
	ReasonBlackjackBlackjack:       {},
	ReasonBlackjackPush:            {},
	ReasonBlackjackSurrenderReturn: {},
}

func (r Reason) Valid() bool {
	_, ok := knownReasons[r]
	return ok
}

// ParseReason accepts a reason code in any case and rejects codes outside the closed set.
func ParseReason(s string) (Reason, error) {
	r := Reason(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownReason, s)
	}

	return r, nil
}

func ParseEventType(s string) (EventType, error) {
	switch t := EventType(s); t {
	case EventMint, EventBurn, EventTransfer:
		return t, nil
	default:
		return "", fmt.Errorf("unknown event type %q", s)
	}
}
