package confirm_reservation

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
	msgMissingUser          = "пользователь не определён"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "доступ запрещен"
	msgCannotConfirm        = "бронирование не может быть подтверждено"
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

// Handle PATCH /reservations/{id}/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем reservationId из URL
	reservationID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || reservationID <= 0 {
		h.logger.Warn("PATCH /reservations/{id}/confirm - Invalid reservation ID: %q", mux.Vars(r)["id"])
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PATCH /reservations/{id}/confirm - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	// Подтверждаем бронирование (сервис сам проверит роль оператора)
	confirmed, err := h.service.Confirm(r.Context(), models.TransitionRequest{
		Actor:         actor,
		ReservationID: reservationID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn("PATCH /reservations/{id}/confirm - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrAuthorization):
			h.logger.Warn("PATCH /reservations/{id}/confirm - Access denied: reservation_id=%d, user_id=%d", reservationID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("PATCH /reservations/{id}/confirm - Invalid transition: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondInvalidTransition(w, msgCannotConfirm)

		case errors.Is(err, domain.ErrInvalidState):
			h.logger.Warn("PATCH /reservations/{id}/confirm - Invalid state: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondInvalidState(w, msgCannotConfirm)

		default:
			h.logger.Error("PATCH /reservations/{id}/confirm - Failed to confirm reservation: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/confirm - Reservation confirmed: reservation_id=%d, by user_id=%d", reservationID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, handlers.FromDomain(confirmed))
}
