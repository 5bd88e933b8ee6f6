package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/sakshamaitools/clash-point-forge/middleware"
	"github.com/sakshamaitools/clash-point-forge/models"
	"github.com/sakshamaitools/clash-point-forge/services"
)

type ParticipantHandler struct {
	participantService services.ParticipantService
}

func NewParticipantHandler(ps services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: ps,
	}
}

// Register godoc
// @Summary Подать заявку на участие в турнире
// @Tags participants
// @Description Игрок регистрируется от своего имени. Организатор или админ может указать user_id другого игрока и seed_number.
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID (UUID)"
// @Param body body services.RegisterInput false "user_id и seed_number (необязательно)"
// @Success 201 {object} map[string]interface{} "Заявка создана"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 409 {object} map[string]string "Регистрация закрыта / турнир полон / уже зарегистрирован"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/participants [post]
func (h *ParticipantHandler) Register(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.RegisterInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	// Чужой user_id может передать только организатор или админ
	role, _ := middleware.GetUserRoleFromContext(r.Context())
	if input.UserID == uuid.Nil || (role != models.RoleOrganizer && role != models.RoleAdmin) {
		input.UserID = currentUserID
	}

	participant, err := h.participantService.Register(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List godoc
// @Summary Участники турнира
// @Tags participants
// @Produce json
// @Param tournamentID path string true "Tournament ID (UUID)"
// @Success 200 {object} map[string]interface{} "Список участников"
// @Failure 400 {object} map[string]string "Некорректный ID"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID}/participants [get]
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participants, err := h.participantService.ListParticipants(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdatePaymentStatus godoc
// @Summary Обновить статус оплаты участника
// @Tags participants
// @Description Фиксирует результат, полученный от платежного провайдера. В сетку попадают только участники со статусом completed.
// @Accept json
// @Produce json
// @Param participantID path string true "Participant ID (UUID)"
// @Param body body object true "{\"payment_status\": \"completed\"}"
// @Success 200 {object} map[string]interface{} "Статус обновлен"
// @Failure 400 {object} map[string]string "Некорректный статус"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Участник не найден"
// @Security BearerAuth
// @Router /participants/{participantID}/payment [patch]
func (h *ParticipantHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		PaymentStatus models.PaymentStatus `json:"payment_status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.SetPaymentStatus(r.Context(), participantID, input.PaymentStatus)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
