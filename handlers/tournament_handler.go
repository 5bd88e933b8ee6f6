package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sakshamaitools/clash-point-forge/middleware"
	"github.com/sakshamaitools/clash-point-forge/models"
	"github.com/sakshamaitools/clash-point-forge/repositories"
	"github.com/sakshamaitools/clash-point-forge/services"
)

const defaultListLimit = 20

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
	}
}

// CreateHandler обрабатывает POST /tournaments
// @Summary Создать турнир
// @Tags tournaments
// @Description Создает турнир в статусе draft. Организатором становится текущий пользователь.
// @Accept json
// @Produce json
// @Param body body services.CreateTournamentInput true "Данные турнира (title, format, max_participants, ...)"
// @Success 201 {object} map[string]interface{} "Турнир создан"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 500 {object} map[string]string "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /tournaments [post]
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create tournament")
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.CreatorID = currentUserID

	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /tournaments/{tournamentID}
// @Summary Получить турнир по ID
// @Tags tournaments
// @Produce json
// @Param tournamentID path string true "Tournament ID (UUID)"
// @Success 200 {object} map[string]interface{} "Турнир найден"
// @Failure 400 {object} map[string]string "Некорректный ID"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /tournaments
// @Summary Список турниров
// @Tags tournaments
// @Description Фильтры: creator_id, status, format. Пагинация через limit/offset.
// @Produce json
// @Param creator_id query string false "ID организатора"
// @Param status query string false "Статус турнира"
// @Param format query string false "Формат сетки"
// @Param limit query int false "Лимит (по умолчанию 20)"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]interface{} "Список турниров"
// @Failure 400 {object} map[string]string "Некорректные параметры"
// @Router /tournaments [get]
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListTournamentsFilter
	query := r.URL.Query()

	if creatorStr := query.Get("creator_id"); creatorStr != "" {
		id, err := uuid.Parse(creatorStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid creator_id query parameter"))
			return
		}
		filter.CreatorID = &id
	}
	if statusStr := query.Get("status"); statusStr != "" {
		status := models.TournamentStatus(statusStr)
		if !status.Valid() {
			badRequestResponse(w, r, errors.New("invalid status query parameter"))
			return
		}
		filter.Status = &status
	}
	if formatStr := query.Get("format"); formatStr != "" {
		format := models.TournamentFormat(formatStr)
		if !format.Valid() {
			badRequestResponse(w, r, errors.New("invalid format query parameter"))
			return
		}
		filter.Format = &format
	}

	var err error
	if filter.Limit, err = readIntQuery(r, "limit", defaultListLimit); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.Limit == 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Offset, err = readIntQuery(r, "offset", 0); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.tournamentService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStatusHandler обрабатывает PATCH /tournaments/{tournamentID}/status
// @Summary Изменить статус турнира
// @Tags tournaments
// @Description Ручные переходы: draft→open, draft/open/in_progress→cancelled. in_progress и completed выставляет движок сетки.
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID (UUID)"
// @Param body body object true "{\"status\": \"open\"}"
// @Success 200 {object} map[string]interface{} "Статус обновлен"
// @Failure 400 {object} map[string]string "Некорректный статус"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 409 {object} map[string]string "Недопустимый переход"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/status [patch]
func (h *TournamentHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var statusInput struct {
		Status models.TournamentStatus `json:"status"`
	}
	if err := readJSON(w, r, &statusInput); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.UpdateStatus(r.Context(), id, statusInput.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
