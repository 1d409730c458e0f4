package complete_reservation

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
	msgCannotComplete       = "бронирование не может быть завершено"
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

// Handle PATCH /reservations/{id}/complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем reservationId из URL
	reservationID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || reservationID <= 0 {
		h.logger.Warn("PATCH /reservations/{id}/complete - Invalid reservation ID: %q", mux.Vars(r)["id"])
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PATCH /reservations/{id}/complete - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	// Декодируем body
	var body CompleteReservationRequest
	if err := handlers.DecodeOptionalJSON(r, &body); err != nil {
		h.logger.Warn("PATCH /reservations/{id}/complete - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Завершаем бронирование
	completed, err := h.service.Complete(r.Context(), models.TransitionRequest{
		Actor:         actor,
		ReservationID: reservationID,
		At:            body.CompletedAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn("PATCH /reservations/{id}/complete - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrAuthorization):
			h.logger.Warn("PATCH /reservations/{id}/complete - Access denied: reservation_id=%d, user_id=%d", reservationID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("PATCH /reservations/{id}/complete - Invalid transition: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondInvalidTransition(w, msgCannotComplete)

		case errors.Is(err, domain.ErrInvalidState):
			h.logger.Warn("PATCH /reservations/{id}/complete - Invalid state: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondInvalidState(w, msgCannotComplete)

		default:
			h.logger.Error("PATCH /reservations/{id}/complete - Failed to complete reservation: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/complete - Reservation completed: reservation_id=%d, by user_id=%d", reservationID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, handlers.FromDomain(completed))
}
