package list_reservations

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

const (
	msgMissingUser   = "пользователь не определён"
	msgInvalidStatus = "некорректный статус, ожидается PENDING, CONFIRMED, CANCELLED или COMPLETED"
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

// Handle GET /reservations[?status=]
// Клиент получает свои бронирования, администратор - все.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /reservations - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	req := models.ListRequest{Actor: actor}
	// Получаем опциональный фильтр по статусу
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	// Получаем бронирования пользователя (оператор видит все)
	list, err := h.service.List(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			h.logger.Warn("GET /reservations - Invalid status filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /reservations - Failed to list reservations: user_id=%d, error=%v", actor.UserID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /reservations - Found %d reservations for user_id=%d", len(list), actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, handlers.FromDomainList(list))
}
