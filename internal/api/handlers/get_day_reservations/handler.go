package get_day_reservations

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const (
	msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingUser = "пользователь не определён"
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

// Handle GET /reservations/date/{date}
// Возвращает активные и отменённые бронирования даты.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем date из URL
	dateStr := mux.Vars(r)["date"]
	date, err := domain.ParseDate(dateStr)
	if err != nil {
		h.logger.Warn("GET /reservations/date/{date} - Invalid date: %q", dateStr)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /reservations/date/{date} - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	// Получаем бронирования на дату
	list, err := h.service.ListByDate(r.Context(), date)
	if err != nil {
		h.logger.Error("GET /reservations/date/{date} - Failed to list reservations: date=%s, error=%v", dateStr, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /reservations/date/{date} - Found %d reservations: date=%s", len(list), dateStr)
	handlers.RespondJSON(w, http.StatusOK, handlers.ForViewerList(list, actor))
}
