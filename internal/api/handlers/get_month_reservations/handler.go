package get_month_reservations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	getMonthView "github.com/m04kA/SMC-ReservationService/internal/usecase/get_month_view"
)

const (
	msgInvalidYear  = "некорректный год"
	msgInvalidMonth = "некорректный месяц, ожидается число от 1 до 12"
	msgInvalidFlag  = "некорректное значение includeInactive"
	msgMissingUser  = "пользователь не определён"
)

type Handler struct {
	useCase GetMonthViewUseCase
	logger  Logger
}

func NewHandler(useCase GetMonthViewUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /reservations/month/{year}/{month}[?includeInactive=true]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		h.logger.Warn("GET /reservations/month/{year}/{month} - Invalid year: %q", vars["year"])
		handlers.RespondBadRequest(w, msgInvalidYear)
		return
	}

	month, err := strconv.Atoi(vars["month"])
	if err != nil {
		h.logger.Warn("GET /reservations/month/{year}/{month} - Invalid month: %q", vars["month"])
		handlers.RespondBadRequest(w, msgInvalidMonth)
		return
	}

	includeInactive := false
	// Получаем опциональные query параметры
	if raw := r.URL.Query().Get("includeInactive"); raw != "" {
		includeInactive, err = strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("GET /reservations/month/{year}/{month} - Invalid includeInactive: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidFlag)
			return
		}
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /reservations/month/{year}/{month} - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	// Вызываем use case
	view, err := h.useCase.Execute(r.Context(), getMonthView.Request{
		Year:            year,
		Month:           month,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		switch {
		case errors.Is(err, getMonthView.ErrInvalidMonth):
			h.logger.Warn("GET /reservations/month/{year}/{month} - Month out of range: %d", month)
			handlers.RespondBadRequest(w, msgInvalidMonth)

		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("GET /reservations/month/{year}/{month} - Year out of range: %d", year)
			handlers.RespondBadRequest(w, msgInvalidYear)

		default:
			h.logger.Error("GET /reservations/month/{year}/{month} - Failed to build month: %d-%02d, error=%v", year, month, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /reservations/month/{year}/{month} - Month built: %d-%02d", year, month)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(view, actor))
}
