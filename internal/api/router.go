package api

import (
	"net/http"

	"github.com/gorilla/mux"

	cancelReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/cancel_reservation"
	completeReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/complete_reservation"
	confirmReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/confirm_reservation"
	createReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/create_reservation"
	deleteReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/delete_reservation"
	getAvailabilityHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_availability"
	getDayReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_day_reservations"
	getMonthReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_month_reservations"
	getReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_reservation"
	getSlotsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_slots"
	healthHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/health"
	listReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/list_reservations"
	updateReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_reservation"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
)

// Handlers обработчики всех маршрутов
type Handlers struct {
	CreateReservation    *createReservationHandler.Handler
	ListReservations     *listReservationsHandler.Handler
	GetReservation       *getReservationHandler.Handler
	GetDayReservations   *getDayReservationsHandler.Handler
	GetMonthReservations *getMonthReservationsHandler.Handler
	UpdateReservation    *updateReservationHandler.Handler
	CancelReservation    *cancelReservationHandler.Handler
	ConfirmReservation   *confirmReservationHandler.Handler
	CompleteReservation  *completeReservationHandler.Handler
	DeleteReservation    *deleteReservationHandler.Handler
	GetAvailability      *getAvailabilityHandler.Handler
	GetSlots             *getSlotsHandler.Handler
	Health               *healthHandler.Handler
}

// Options необязательные части роутера
type Options struct {
	Metrics        middleware.HTTPObserver // nil - метрики выключены
	MetricsPath    string
	MetricsHandler http.Handler
}

// NewRouter настраивает маршруты сервиса
func NewRouter(h Handlers, auth middleware.Authenticator, opts Options, log middleware.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID(log))

	if opts.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(opts.Metrics))
	}
	if opts.MetricsHandler != nil && opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, opts.MetricsHandler).Methods(http.MethodGet)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	if h.Health != nil {
		r.HandleFunc("/health", h.Health.Handle).Methods(http.MethodGet)
	}
	r.HandleFunc("/slots", h.GetSlots.Handle).Methods(http.MethodGet)
	r.HandleFunc("/availability/{date}", h.GetAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (Authorization: Bearer <token>)
	// ============================================================

	protected := r.PathPrefix("/reservations").Subrouter()
	protected.Use(middleware.Auth(auth, log))

	protected.HandleFunc("", h.CreateReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("", h.ListReservations.Handle).Methods(http.MethodGet)

	// Календарь
	protected.HandleFunc("/date/{date}", h.GetDayReservations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/month/{year:[0-9]+}/{month:[0-9]+}", h.GetMonthReservations.Handle).Methods(http.MethodGet)

	// Отдельное бронирование
	protected.HandleFunc("/{id:[0-9]+}", h.GetReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/{id:[0-9]+}", h.UpdateReservation.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/{id:[0-9]+}", h.DeleteReservation.Handle).Methods(http.MethodDelete)

	// Жизненный цикл
	protected.HandleFunc("/{id:[0-9]+}/cancel", h.CancelReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/{id:[0-9]+}/confirm", h.ConfirmReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/{id:[0-9]+}/complete", h.CompleteReservation.Handle).Methods(http.MethodPatch)

	return r
}
