package handlers

import (
	"net/http"

	"github.com/sakshamaitools/clash-point-forge/models"
	"github.com/sakshamaitools/clash-point-forge/services"
)

type BracketHandler struct {
	bracketService   services.BracketService
	standingsService services.StandingsService
}

func NewBracketHandler(bs services.BracketService, ss services.StandingsService) *BracketHandler {
	return &BracketHandler{
		bracketService:   bs,
		standingsService: ss,
	}
}

// GenerateHandler godoc
// @Summary Сгенерировать сетку турнира
// @Tags brackets
// @Description Строит сетку из оплативших участников и переводит турнир в in_progress. Формат в теле необязателен и должен совпадать с форматом турнира.
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID (UUID)"
// @Param body body object false "{\"format\": \"single_elimination\"}"
// @Success 201 {object} map[string]interface{} "Сетка создана"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 409 {object} map[string]string "Сетка уже есть / турнир не открыт / мало участников"
// @Failure 422 {object} map[string]string "Формат не поддерживается"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket [post]
func (h *BracketHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Format models.TournamentFormat `json:"format"`
	}
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	matches, err := h.bracketService.GenerateBracket(r.Context(), tournamentID, input.Format)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler godoc
// @Summary Получить сетку турнира
// @Tags brackets
// @Produce json
// @Param tournamentID path string true "Tournament ID (UUID)"
// @Success 200 {object} map[string]interface{} "Турнир, участники и матчи по раундам"
// @Failure 400 {object} map[string]string "Некорректный ID"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID}/bracket [get]
func (h *BracketHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GetBracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler godoc
// @Summary Турнирная таблица
// @Tags brackets
// @Description Доступна после старта турнира. Порядок: место, затем победы.
// @Produce json
// @Param tournamentID path string true "Tournament ID (UUID)"
// @Success 200 {object} map[string]interface{} "Таблица"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 409 {object} map[string]string "Турнир еще не начат"
// @Router /tournaments/{tournamentID}/standings [get]
func (h *BracketHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.standingsService.GetStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
