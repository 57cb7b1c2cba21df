package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kofflo/cobram/internal/app"
	"github.com/kofflo/cobram/internal/draw"
)

type setPlayerRequest struct {
	Place   int    `json:"place"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Seed    int    `json:"seed,omitempty"`
	Force   bool   `json:"force,omitempty"`
}

type assignPlayersRequest struct {
	Place1 int  `json:"place_1"`
	Place2 int  `json:"place_2"`
	Force  bool `json:"force,omitempty"`
}

type resultRequest struct {
	// Score lists the sets in match order; null clears the result.
	Score []draw.SetScore `json:"score"`
	Force bool            `json:"force,omitempty"`
}

type betRequest struct {
	Score []draw.SetScore `json:"score"`
	Joker bool            `json:"joker,omitempty"`
	Force bool            `json:"force,omitempty"`
}

// tournamentID extracts the tournament identity from the URL
func tournamentID(r *http.Request) (string, int, error) {
	name := chi.URLParam(r, "name")
	if name == "" {
		return "", 0, BadRequest("Missing name parameter")
	}
	year, err := parseIntParam(r, "year")
	if err != nil {
		return "", 0, err
	}
	return name, year, nil
}

func (h *Handlers) handleGetTournaments(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Store.Tournaments())
}

func (h *Handlers) handleCreateTournament(w http.ResponseWriter, r *http.Request) {
	var params app.TournamentParams
	if err := decodeJSON(r, &params); err != nil {
		respondError(w, err)
		return
	}
	info, err := h.Store.CreateTournament(params)
	if err != nil {
		respondError(w, err)
		return
	}
	h.commit(r.Context(), "tournament_created", info)
	respondCreated(w, info)
}

func (h *Handlers) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	name, year, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	info, err := h.Store.Tournament(name, year)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, info)
}

func (h *Handlers) handleDeleteTournament(w http.ResponseWriter, r *http.Request) {
	name, year, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Store.RemoveTournament(name, year); err != nil {
		respondError(w, err)
		return
	}
	h.commit(r.Context(), "tournament_removed", map[string]interface{}{"name": name, "year": year})
	respondDeleted(w)
}

func (h *Handlers) handleCloseTournament(w http.ResponseWriter, r *http.Request) {
	name, year, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Store.CloseTournament(name, year); err != nil {
		respondError(w, err)
		return
	}
	h.commit(r.Context(), "tournament_closed", map[string]interface{}{"name": name, "year": year})
	respondSuccess(w, "Tournament closed")
}

func (h *Handlers) handleOpenTournament(w http.ResponseWriter, r *http.Request) {
	name, year, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Store.OpenTournament(name, year); err != nil {
		respondError(w, err)
		return
	}
	h.commit(r.Context(), "tournament_opened", map[string]interface{}{"name": name, "year": year})
	respondSuccess(w, "Tournament opened")
}

func (h *Handlers) handleGetTournamentPlayers(w http.ResponseWriter, r *http.Request) {
	name, year, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	slots, err := h.Store.TournamentPlayers(name, year)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, slots)
}

func (h *Handlers) handleSetTournamentPlayer(w http.ResponseWriter, r *http.Request) {
	name, year, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req setPlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	err = h.Store.SetTournamentPlayer(name, year, req.Place, req.Name, req.Surname, req.Seed, req.Force)
	if err != nil {
		respondError(w, err)
		return
	}
	h.commit(r.Context(), "player_placed", map[string]interface{}{
		"name": name, "year": year, "place": req.Place,
	})
	respondSuccess(w, "Player set")
}

func (h *Handlers) handleGetMatches(w http.ResponseWriter, r *http.Request) {
	name, year, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	matches, err := h.Store.TournamentMatches(name, year)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, matches)
}

func (h *Handlers) handleAssignMatchPlayers(w http.ResponseWriter, r *http.Request) {
	name, year, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	matchID := draw.MatchID(chi.URLParam(r, "matchID"))
	var req assignPlayersRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.Store.AssignMatchPlayers(name, year, matchID, req.Place1, req.Place2, req.Force); err != nil {
		respondError(w, err)
		return
	}
	h.commit(r.Context(), "match_players_assigned", map[string]interface{}{
		"name": name, "year": year, "match_id": matchID,
	})
	respondSuccess(w, "Players assigned")
}

func (h *Handlers) handleSetResult(w http.ResponseWriter, r *http.Request) {
	name, year, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	matchID := draw.MatchID(chi.URLParam(r, "matchID"))
	var req resultRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.Store.SetResult(name, year, matchID, req.Score, req.Force); err != nil {
		respondError(w, err)
		return
	}
	h.commit(r.Context(), "result_set", map[string]interface{}{
		"name": name, "year": year, "match_id": matchID, "score": req.Score,
	})
	respondSuccess(w, "Result set")
}

func (h *Handlers) handleGetBets(w http.ResponseWriter, r *http.Request) {
	name, year, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	nickname := chi.URLParam(r, "nickname")
	bets, err := h.Store.GamblerBets(name, year, nickname)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, bets)
}

func (h *Handlers) handleSetBet(w http.ResponseWriter, r *http.Request) {
	name, year, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	nickname := chi.URLParam(r, "nickname")
	matchID := draw.MatchID(chi.URLParam(r, "matchID"))
	var req betRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.Store.SetBet(name, year, nickname, matchID, req.Score, req.Joker, req.Force); err != nil {
		respondError(w, err)
		return
	}
	h.commit(r.Context(), "bet_set", map[string]interface{}{
		"name": name, "year": year, "match_id": matchID, "nickname": nickname,
	})
	respondSuccess(w, "Bet set")
}

func (h *Handlers) handleGetScores(w http.ResponseWriter, r *http.Request) {
	name, year, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	scores, err := h.Store.TournamentScores(name, year)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, scoresView(scores))
}

func (h *Handlers) handleGetPreviousYearScores(w http.ResponseWriter, r *http.Request) {
	name, year, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	scores, err := h.Store.PreviousYearScores(name, year)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, scores)
}
