package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sakshamaitools/clash-point-forge/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: ms,
	}
}

// ListHandler godoc
// @Summary Матчи турнира
// @Tags matches
// @Produce json
// @Param tournamentID path string true "Tournament ID (UUID)"
// @Success 200 {object} map[string]interface{} "Матчи по порядку раундов"
// @Failure 400 {object} map[string]string "Некорректный ID"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID}/matches [get]
func (h *MatchHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeclareWinnerHandler godoc
// @Summary Зафиксировать победителя матча
// @Tags matches
// @Description Сохраняет результат и продвигает победителя в следующий раунд в той же транзакции.
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID (UUID)"
// @Param body body object true "{\"winner_participant_id\": \"<uuid>\"}"
// @Success 200 {object} map[string]interface{} "Результат сохранен"
// @Failure 400 {object} map[string]string "Некорректные данные"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "Матч не готов / победитель не участник / уже решен"
// @Security BearerAuth
// @Router /matches/{matchID}/winner [post]
func (h *MatchHandler) DeclareWinnerHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		WinnerParticipantID uuid.UUID `json:"winner_participant_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.WinnerParticipantID == uuid.Nil {
		badRequestResponse(w, r, errors.New("winner_participant_id is required"))
		return
	}

	match, err := h.matchService.DeclareWinner(r.Context(), matchID, input.WinnerParticipantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartHandler godoc
// @Summary Начать матч
// @Tags matches
// @Produce json
// @Param matchID path string true "Match ID (UUID)"
// @Success 200 {object} map[string]interface{} "Матч начат"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "Матч нельзя начать"
// @Security BearerAuth
// @Router /matches/{matchID}/start [post]
func (h *MatchHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.StartMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DisputeHandler godoc
// @Summary Оспорить результат матча
// @Tags matches
// @Description Матч переходит в disputed, победитель снимается из следующего раунда до повторного решения.
// @Produce json
// @Param matchID path string true "Match ID (UUID)"
// @Success 200 {object} map[string]interface{} "Результат оспорен"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "Результат уже нельзя оспорить"
// @Security BearerAuth
// @Router /matches/{matchID}/dispute [post]
func (h *MatchHandler) DisputeHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.DisputeMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvanceHandler godoc
// @Summary Продвинуть турнир
// @Tags matches
// @Description Повторно запускает продвижение сетки. Повторный вызов без новых результатов ничего не меняет.
// @Produce json
// @Param tournamentID path string true "Tournament ID (UUID)"
// @Success 200 {object} map[string]interface{} "Результат продвижения"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 409 {object} map[string]string "Турнир не идет"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/advance [post]
func (h *MatchHandler) AdvanceHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.AdvanceTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
