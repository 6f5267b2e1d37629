package api

import (
	"net/http"
	"strconv"
)

// GetBalanceHandler handles GET /guilds/{guildId}/users/{userId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	user, guild, ok := pathAccount(w, r)
	if !ok {
		return
	}

	bal, err := h.ledger.Balance(r.Context(), user, guild)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, balanceResponse{UserID: user.String(), GuildID: guild.String(), Balance: bal})
}

// SetBalanceHandler handles PUT /guilds/{guildId}/users/{userId}/balance
func (h *HandlerProvider) SetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	user, guild, ok := pathAccount(w, r)
	if !ok {
		return
	}

	var req setBalanceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reason, ok := parseReason(w, r, req.Reason)
	if !ok {
		return
	}

	res, err := h.ledger.SetBalance(r.Context(), user, guild, req.Balance, reason, req.Initiator)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := map[string]any{
		"userId":   user.String(),
		"previous": res.Previous,
		"balance":  res.Current,
		"delta":    res.Delta,
	}
	if res.Event != nil {
		resp["event"] = toEventResponse(*res.Event)
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// MintHandler handles POST /guilds/{guildId}/users/{userId}/mint
func (h *HandlerProvider) MintHandler(w http.ResponseWriter, r *http.Request) {
	user, guild, ok := pathAccount(w, r)
	if !ok {
		return
	}

	var req movementRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reason, ok := parseReason(w, r, req.Reason)
	if !ok {
		return
	}

	bal, err := h.ledger.Mint(r.Context(), user, guild, req.Amount, reason, req.Initiator)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, balanceResponse{UserID: user.String(), GuildID: guild.String(), Balance: bal})
}

// BurnHandler handles POST /guilds/{guildId}/users/{userId}/burn
func (h *HandlerProvider) BurnHandler(w http.ResponseWriter, r *http.Request) {
	user, guild, ok := pathAccount(w, r)
	if !ok {
		return
	}

	var req movementRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reason, ok := parseReason(w, r, req.Reason)
	if !ok {
		return
	}

	bal, ok, err := h.ledger.Burn(r.Context(), user, guild, req.Amount, reason, req.Initiator)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if !ok {
		insufficientFunds(w, r)
		return
	}

	writeJSON(w, r, http.StatusOK, balanceResponse{UserID: user.String(), GuildID: guild.String(), Balance: bal})
}

// TransferHandler handles POST /guilds/{guildId}/transfers
func (h *HandlerProvider) TransferHandler(w http.ResponseWriter, r *http.Request) {
	guild, ok := pathGuild(w, r)
	if !ok {
		return
	}

	var req transferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ok, err := h.ledger.Transfer(r.Context(), req.From, req.To, guild, req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if !ok {
		insufficientFunds(w, r)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// WealthTaxHandler handles POST /guilds/{guildId}/wealth-tax
func (h *HandlerProvider) WealthTaxHandler(w http.ResponseWriter, r *http.Request) {
	guild, ok := pathGuild(w, r)
	if !ok {
		return
	}

	var req wealthTaxRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.ledger.ApplyWealthTax(r.Context(), guild, req.Exponent, req.Initiator)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"batchId":           res.BatchID,
		"affectedUsers":     res.AffectedCount(),
		"totalRemoved":      res.TotalRemoved,
		"cashRemoved":       res.CashRemoved,
		"collateralRemoved": res.CollateralRemoved,
		"positionsSkipped":  res.PositionsSkipped,
	})
}

// EventsHandler handles GET /guilds/{guildId}/events?before=&limit=
func (h *HandlerProvider) EventsHandler(w http.ResponseWriter, r *http.Request) {
	guild, ok := pathGuild(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var before int64
	if raw := r.URL.Query().Get("before"); raw != "" {
		before, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid before")
			return
		}
	}

	evs, err := h.ledger.History(r.Context(), guild, before, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]eventResponse, len(evs))
	for i, e := range evs {
		out[i] = toEventResponse(e)
	}

	resp := map[string]any{"events": out}
	if len(evs) > 0 {
		resp["next"] = strconv.FormatInt(evs[len(evs)-1].ID, 10)
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// AuditHandler handles GET /guilds/{guildId}/audit
func (h *HandlerProvider) AuditHandler(w http.ResponseWriter, r *http.Request) {
	guild, ok := pathGuild(w, r)
	if !ok {
		return
	}

	rep, err := h.ledger.Audit(r.Context(), guild)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"guildId":    guild.String(),
		"balanceSum": rep.BalanceSum,
		"minted":     rep.Minted,
		"burned":     rep.Burned,
		"drift":      rep.Drift(),
		"balanced":   rep.Balanced(),
	})
}
