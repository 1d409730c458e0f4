package create_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени, ожидается HH:MM"
	msgMissingUser        = "пользователь не определён"
	msgSlotNotAvailable   = "выбранный слот уже занят"
	msgVehicleNotOwned    = "автомобиль принадлежит другому пользователю"
	msgVehicleNotFound    = "автомобиль не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgServiceInactive    = "услуга недоступна для записи"
	msgInvalidReservation = "некорректные данные бронирования"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем actor из контекста (через middleware Auth)
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	// Декодируем body
	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(actor)
	if err != nil {
		h.logger.Warn("POST /reservations - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			h.logger.Warn("POST /reservations - Slot not available: user_id=%d, date=%s, time=%s",
				actor.UserID, req.Date, req.Time)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createReservation.ErrVehicleNotOwned):
			h.logger.Warn("POST /reservations - Vehicle not owned: user_id=%d, vehicle_id=%d", actor.UserID, req.VehicleID)
			handlers.RespondForbidden(w, msgVehicleNotOwned)

		case errors.Is(err, createReservation.ErrVehicleNotFound):
			h.logger.Warn("POST /reservations - Vehicle not found: vehicle_id=%d", req.VehicleID)
			handlers.RespondBadRequest(w, msgVehicleNotFound)

		case errors.Is(err, createReservation.ErrServiceNotFound):
			h.logger.Warn("POST /reservations - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondBadRequest(w, msgServiceNotFound)

		case errors.Is(err, createReservation.ErrServiceInactive):
			h.logger.Warn("POST /reservations - Service inactive: service_id=%d", req.ServiceID)
			handlers.RespondBadRequest(w, msgServiceInactive)

		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /reservations - Validation failed: user_id=%d, error=%v", actor.UserID, err)
			handlers.RespondBadRequest(w, handlers.ValidationMessage(err, msgInvalidReservation))

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: user_id=%d, error=%v", actor.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations - Reservation created successfully: reservation_id=%d, user_id=%d",
		result.ID, result.UserID)
	handlers.RespondJSON(w, http.StatusCreated, handlers.FromDomain(result))
}
