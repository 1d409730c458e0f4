package update_reservation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime          = "некорректный формат времени, ожидается HH:MM"
	msgMissingUser          = "пользователь не определён"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "доступ запрещен"
	msgNotEditable          = "изменить можно только бронирование в статусе PENDING"
	msgSlotNotAvailable     = "выбранный слот уже занят"
	msgInvalidChange        = "некорректные данные изменения"
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

// Handle PUT /reservations/{id}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем reservationId из URL
	reservationID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || reservationID <= 0 {
		h.logger.Warn("PUT /reservations/{id} - Invalid reservation ID: %q", mux.Vars(r)["id"])
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PUT /reservations/{id} - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	// Декодируем body
	var body UpdateReservationRequest
	if err := handlers.DecodeJSON(r, &body); err != nil {
		h.logger.Warn("PUT /reservations/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем в модель сервиса
	req, err := body.ToServiceRequest(actor, reservationID)
	if err != nil {
		h.logger.Warn("PUT /reservations/{id} - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	// Переносим бронирование (сервис сам проверит статус и занятость слота)
	updated, err := h.service.Update(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn("PUT /reservations/{id} - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrAuthorization):
			h.logger.Warn("PUT /reservations/{id} - Access denied: reservation_id=%d, user_id=%d", reservationID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, domain.ErrInvalidState):
			h.logger.Warn("PUT /reservations/{id} - Reservation not editable: reservation_id=%d", reservationID)
			handlers.RespondInvalidState(w, msgNotEditable)

		case errors.Is(err, domain.ErrConflict):
			h.logger.Warn("PUT /reservations/{id} - Slot not available: reservation_id=%d", reservationID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("PUT /reservations/{id} - Validation failed: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondBadRequest(w, handlers.ValidationMessage(err, msgInvalidChange))

		default:
			h.logger.Error("PUT /reservations/{id} - Failed to update reservation: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /reservations/{id} - Reservation updated: reservation_id=%d, user_id=%d", reservationID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, handlers.FromDomain(updated))
}
