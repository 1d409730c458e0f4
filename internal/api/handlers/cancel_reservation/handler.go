package cancel_reservation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUser          = "пользователь не определён"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "доступ запрещен"
	msgTooLate              = "до начала бронирования осталось меньше допустимого срока отмены"
	msgCannotCancel         = "бронирование не может быть отменено"
	msgInvalidReason        = "некорректная причина отмены"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /reservations/{id}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем reservationId из URL
	reservationID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || reservationID <= 0 {
		h.logger.Warn("PATCH /reservations/{id}/cancel - Invalid reservation ID: %q", mux.Vars(r)["id"])
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	// Получаем actor из контекста (через middleware Auth)
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PATCH /reservations/{id}/cancel - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	// Декодируем body (причина отмены необязательна)
	var body CancelReservationRequest
	if err := handlers.DecodeOptionalJSON(r, &body); err != nil {
		h.logger.Warn("PATCH /reservations/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Отменяем бронирование (сервис сам проверит права и политику отмены)
	cancelled, err := h.service.Cancel(r.Context(), models.TransitionRequest{
		Actor:         actor,
		ReservationID: reservationID,
		Reason:        body.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrAuthorization):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Access denied: reservation_id=%d, user_id=%d", reservationID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, domain.ErrPolicy):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Lead time violated: reservation_id=%d", reservationID)
			handlers.RespondPolicyViolation(w, msgTooLate)

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Cannot cancel: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondInvalidTransition(w, msgCannotCancel)

		case errors.Is(err, domain.ErrInvalidState):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Cannot cancel: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondInvalidState(w, msgCannotCancel)

		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Invalid reason: reservation_id=%d", reservationID)
			handlers.RespondBadRequest(w, msgInvalidReason)

		default:
			h.logger.Error("PATCH /reservations/{id}/cancel - Failed to cancel reservation: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/cancel - Reservation cancelled: reservation_id=%d, user_id=%d", reservationID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, handlers.FromDomain(cancelled))
}
