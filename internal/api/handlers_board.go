package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fastprodman/guildledger/internal/economy"
)

// LeaderboardHandler handles GET /guilds/{guildId}/leaderboard?stat=&limit=
func (h *HandlerProvider) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	guild, ok := pathGuild(w, r)
	if !ok {
		return
	}

	rawStat := r.URL.Query().Get("stat")
	if rawStat == "" {
		rawStat = string(economy.StatCurrency)
	}

	stat, err := economy.ParseStat(rawStat)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.board.Top(r.Context(), guild, stat, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type entry struct {
		Rank   int    `json:"rank"`
		UserID string `json:"userId"`
		Value  int64  `json:"value"`
	}

	out := make([]entry, len(rows))
	for i, rk := range rows {
		out[i] = entry{Rank: rk.Rank, UserID: rk.UserID.String(), Value: rk.Value}
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"stat": stat, "entries": out})
}

func (h *HandlerProvider) activityList(w http.ResponseWriter, r *http.Request, active bool) {
	guild, ok := pathGuild(w, r)
	if !ok {
		return
	}

	days, err := queryInt(r, "days", 30)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	list := h.board.Inactive
	if active {
		list = h.board.Active
	}

	users, err := list(r.Context(), guild, days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"days": days, "users": userIDs(users)})
}

// ActiveUsersHandler handles GET /guilds/{guildId}/users/active?days=
func (h *HandlerProvider) ActiveUsersHandler(w http.ResponseWriter, r *http.Request) {
	h.activityList(w, r, true)
}

// InactiveUsersHandler handles GET /guilds/{guildId}/users/inactive?days=
func (h *HandlerProvider) InactiveUsersHandler(w http.ResponseWriter, r *http.Request) {
	h.activityList(w, r, false)
}

// ActivityHandler handles POST /guilds/{guildId}/activity
func (h *HandlerProvider) ActivityHandler(w http.ResponseWriter, r *http.Request) {
	guild, ok := pathGuild(w, r)
	if !ok {
		return
	}

	var req activityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	users := make([]economy.UserID, 0, len(req.Users))

	for _, raw := range req.Users {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid user id "+strconv.Quote(raw))
			return
		}

		users = append(users, economy.UserID(id))
	}

	err := h.board.Touch(r.Context(), guild, users...)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathStat(w http.ResponseWriter, r *http.Request) (economy.Stat, bool) {
	stat, err := economy.ParseStat(chi.URLParam(r, "stat"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return "", false
	}

	return stat, true
}

// GetStatHandler handles GET /guilds/{guildId}/users/{userId}/stats/{stat}
func (h *HandlerProvider) GetStatHandler(w http.ResponseWriter, r *http.Request) {
	user, guild, ok := pathAccount(w, r)
	if !ok {
		return
	}

	stat, ok := pathStat(w, r)
	if !ok {
		return
	}

	v, err := h.board.Stat(r.Context(), user, guild, stat)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"userId": user.String(), "stat": stat, "value": v})
}

// AdjustStatHandler handles POST /guilds/{guildId}/users/{userId}/stats/{stat}
func (h *HandlerProvider) AdjustStatHandler(w http.ResponseWriter, r *http.Request) {
	user, guild, ok := pathAccount(w, r)
	if !ok {
		return
	}

	stat, ok := pathStat(w, r)
	if !ok {
		return
	}

	var req statRequest
	if !decodeBody(w, r, &req) {
		return
	}

	v, ok, err := h.board.AdjustStat(r.Context(), user, guild, stat, req.Delta)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if !ok {
		writeError(w, r, http.StatusConflict, string(stat)+" would go below zero")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"userId": user.String(), "stat": stat, "value": v})
}
