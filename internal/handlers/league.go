package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createNationRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type createPlayerRequest struct {
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	NationCode string `json:"nation_code"`
}

type createGamblerRequest struct {
	Nickname     string  `json:"nickname"`
	InitialScore float64 `json:"initial_score,omitempty"`
}

// handleGetLeague returns the league summary
func (h *Handlers) handleGetLeague(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]interface{}{
		"name":        h.Store.LeagueName(),
		"gamblers":    h.Store.Gamblers(),
		"tournaments": h.Store.Tournaments(),
	})
}

// handleGetRanking returns the league standings
func (h *Handlers) handleGetRanking(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Store.Ranking())
}

func (h *Handlers) handleGetNations(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Store.Nations())
}

func (h *Handlers) handleCreateNation(w http.ResponseWriter, r *http.Request) {
	var req createNationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	nation, err := h.Store.CreateNation(req.Name, req.Code)
	if err != nil {
		respondError(w, err)
		return
	}
	h.commit(r.Context(), "nation_created", nation)
	respondCreated(w, nation)
}

func (h *Handlers) handleGetPlayers(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Store.Players())
}

func (h *Handlers) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	player, err := h.Store.CreatePlayer(req.Name, req.Surname, req.NationCode)
	if err != nil {
		respondError(w, err)
		return
	}
	h.commit(r.Context(), "player_created", player)
	respondCreated(w, player)
}

func (h *Handlers) handleGetGamblers(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Store.Gamblers())
}

func (h *Handlers) handleCreateGambler(w http.ResponseWriter, r *http.Request) {
	var req createGamblerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	gambler, err := h.Store.CreateGambler(req.Nickname, req.InitialScore)
	if err != nil {
		respondError(w, err)
		return
	}
	h.commit(r.Context(), "gambler_created", gambler)
	respondCreated(w, gambler)
}

func (h *Handlers) handleDeleteGambler(w http.ResponseWriter, r *http.Request) {
	nickname := chi.URLParam(r, "nickname")
	if err := h.Store.RemoveGambler(nickname); err != nil {
		respondError(w, err)
		return
	}
	h.commit(r.Context(), "gambler_removed", map[string]string{"nickname": nickname})
	respondDeleted(w)
}
