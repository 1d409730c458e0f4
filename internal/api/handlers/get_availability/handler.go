package get_availability

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /availability/{date}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем date из URL
	dateStr := mux.Vars(r)["date"]
	date, err := domain.ParseDate(dateStr)
	if err != nil {
		h.logger.Warn("GET /availability/{date} - Invalid date: %q", dateStr)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Вызываем use case
	day, err := h.useCase.Execute(r.Context(), date)
	if err != nil {
		h.logger.Error("GET /availability/{date} - Failed to get availability: date=%s, error=%v", dateStr, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /availability/{date} - date=%s, occupied=%d/%d", dateStr, day.Occupied, day.Total)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(day))
}
