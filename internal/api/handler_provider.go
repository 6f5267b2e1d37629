package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fastprodman/guildledger/internal/economy"
	"github.com/fastprodman/guildledger/internal/infra/logging"
	"github.com/fastprodman/guildledger/internal/repos/accounts"
	"github.com/fastprodman/guildledger/internal/services/ledger"
)

// Ledger is the write side used by the handlers.
type Ledger interface {
	Balance(ctx context.Context, user economy.UserID, guild economy.GuildID) (uint64, error)
	Mint(ctx context.Context, user economy.UserID, guild economy.GuildID, amount uint64, reason economy.Reason, initiator economy.UserID) (uint64, error)
	Burn(ctx context.Context, user economy.UserID, guild economy.GuildID, amount uint64, reason economy.Reason, initiator economy.UserID) (uint64, bool, error)
	Transfer(ctx context.Context, sender, receiver economy.UserID, guild economy.GuildID, amount uint64) (bool, error)
	SetBalance(ctx context.Context, user economy.UserID, guild economy.GuildID, balance uint64, reason economy.Reason, initiator economy.UserID) (ledger.SetResult, error)
	ApplyWealthTax(ctx context.Context, guild economy.GuildID, exponent float64, initiator economy.UserID) (ledger.TaxResult, error)
	Audit(ctx context.Context, guild economy.GuildID) (ledger.AuditReport, error)
	History(ctx context.Context, guild economy.GuildID, before int64, limit int) ([]economy.LedgerEvent, error)
}

// Board is the read side used by the handlers.
type Board interface {
	Top(ctx context.Context, guild economy.GuildID, stat economy.Stat, limit int) ([]accounts.Ranked, error)
	Active(ctx context.Context, guild economy.GuildID, days int) ([]economy.UserID, error)
	Inactive(ctx context.Context, guild economy.GuildID, days int) ([]economy.UserID, error)
	Touch(ctx context.Context, guild economy.GuildID, users ...economy.UserID) error
	Stat(ctx context.Context, user economy.UserID, guild economy.GuildID, stat economy.Stat) (int64, error)
	AdjustStat(ctx context.Context, user economy.UserID, guild economy.GuildID, stat economy.Stat, delta int64) (int64, bool, error)
}

// HandlerProvider exposes the ledger and leaderboard over HTTP.
type HandlerProvider struct {
	ledger Ledger
	board  Board
}

func NewHandler(l Ledger, b Board) *HandlerProvider {
	return &HandlerProvider{ledger: l, board: b}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to encode JSON response", slog.Any("err", err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps service errors to statuses. Faults were already
// logged by the service; their detail is not exposed.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, economy.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case ledger.IsFault(err):
		writeError(w, r, http.StatusInternalServerError, "internal error")
	default:
		logging.FromContext(r.Context()).Error("request failed", slog.Any("err", err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func insufficientFunds(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusConflict, economy.ErrInsufficientFunds.Error())
}

func parseIDParam(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s", name)
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}

	return id, nil
}

func pathGuild(w http.ResponseWriter, r *http.Request) (economy.GuildID, bool) {
	id, err := parseIDParam(r, "guildId")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return 0, false
	}

	return economy.GuildID(id), true
}

func pathAccount(w http.ResponseWriter, r *http.Request) (economy.UserID, economy.GuildID, bool) {
	guild, ok := pathGuild(w, r)
	if !ok {
		return 0, 0, false
	}

	id, err := parseIDParam(r, "userId")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}

	return economy.UserID(id), guild, true
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}

	return v, nil
}

// decodeBody reads a JSON body of at most 64KiB and rejects unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, r, http.StatusBadRequest, "empty body")
			return false
		}

		writeError(w, r, http.StatusBadRequest, "invalid JSON")

		return false
	}

	return true
}

func parseReason(w http.ResponseWriter, r *http.Request, raw string) (economy.Reason, bool) {
	reason, err := economy.ParseReason(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return "", false
	}

	return reason, true
}

// --- Wire types ---

type movementRequest struct {
	Amount    uint64         `json:"amount"`
	Reason    string         `json:"reason"`
	Initiator economy.UserID `json:"initiator,string"`
}

type setBalanceRequest struct {
	Balance   uint64         `json:"balance"`
	Reason    string         `json:"reason"`
	Initiator economy.UserID `json:"initiator,string"`
}

type transferRequest struct {
	From   economy.UserID `json:"from,string"`
	To     economy.UserID `json:"to,string"`
	Amount uint64         `json:"amount"`
}

type wealthTaxRequest struct {
	Exponent  float64        `json:"exponent"`
	Initiator economy.UserID `json:"initiator,string"`
}

type activityRequest struct {
	Users []string `json:"users"`
}

type statRequest struct {
	Delta int64 `json:"delta"`
}

type balanceResponse struct {
	UserID  string `json:"userId"`
	GuildID string `json:"guildId"`
	Balance uint64 `json:"balance"`
}

type eventResponse struct {
	ID         int64      `json:"id"`
	Type       string     `json:"type"`
	Reason     string     `json:"reason"`
	Sender     string     `json:"sender"`
	Receiver   string     `json:"receiver"`
	Amount     uint64     `json:"amount"`
	Initiator  string     `json:"initiator"`
	PositionID *string    `json:"positionId,omitempty"`
	BatchID    *uuid.UUID `json:"batchId,omitempty"`
	CreatedAt  string     `json:"createdAt"`
}

func toEventResponse(e economy.LedgerEvent) eventResponse {
	out := eventResponse{
		ID:        e.ID,
		Type:      string(e.Type),
		Reason:    string(e.Reason),
		Sender:    e.Sender.String(),
		Receiver:  e.Receiver.String(),
		Amount:    e.Amount,
		Initiator: e.Initiator.String(),
		BatchID:   e.BatchID,
		CreatedAt: e.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000Z07:00"),
	}

	if e.Position != nil {
		p := e.Position.String()
		out.PositionID = &p
	}

	return out
}

func userIDs(users []economy.UserID) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.String()
	}

	return out
}
