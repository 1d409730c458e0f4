package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	listReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/list_reservations"
	updateReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_reservation"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/cache/availability"
	"github.com/m04kA/SMC-ReservationService/internal/infra/events"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/userservice"
	"github.com/m04kA/SMC-ReservationService/internal/service/cancellation"
	"github.com/m04kA/SMC-ReservationService/internal/service/conflictguard"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	"github.com/m04kA/SMC-ReservationService/internal/testutil"
	"github.com/m04kA/SMC-ReservationService/internal/testutil/memstore"
	createReservationUC "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	getAvailabilityUC "github.com/m04kA/SMC-ReservationService/internal/usecase/get_availability"
	getMonthViewUC "github.com/m04kA/SMC-ReservationService/internal/usecase/get_month_view"
)

const (
	ownerToken = "owner"
	otherToken = "other"
	adminToken = "admin"

	ownerID = int64(5)
	otherID = int64(6)
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type tokenAuth struct{}

func (tokenAuth) Authenticate(_ context.Context, token string) (*userservice.Identity, error) {
	switch token {
	case ownerToken:
		return &userservice.Identity{UserID: ownerID, Role: "client"}, nil
	case otherToken:
		return &userservice.Identity{UserID: otherID, Role: "client"}, nil
	case adminToken:
		return &userservice.Identity{UserID: 1, Role: "admin"}, nil
	}
	return nil, userservice.ErrUnauthorized
}

// vehicles: ID автомобиля совпадает с ID владельца, кроме vehicle 1, который принадлежит ownerID
type vehicles struct{}

func (vehicles) GetVehicle(_ context.Context, id int64) (*userservice.Vehicle, error) {
	owner := id
	if id == 1 {
		owner = ownerID
	}
	return &userservice.Vehicle{ID: id, UserID: owner}, nil
}

type services struct{}

func (services) GetService(_ context.Context, id int64) (*catalogservice.Service, error) {
	return &catalogservice.Service{ID: id, Name: "wash", DurationMinutes: 60, Active: true}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

type reservationJSON struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	VehicleID int64  `json:"vehicleId"`
	ServiceID int64  `json:"serviceId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Status    string `json:"status"`
}

func newTestRouter(t *testing.T, now time.Time) http.Handler {
	t.Helper()

	store := memstore.New()
	tx := store.TxManager()
	log := &testutil.Logger{}
	metrics := &testutil.Metrics{}
	clock := fixedClock{now: now}
	catalog := domain.DefaultSlotCatalog(time.UTC)

	guard := conflictguard.NewGuard(store, tx, metrics, log)
	policy := cancellation.NewPolicy(24*time.Hour, time.UTC)
	service := reservations.NewService(
		store, guard, policy, catalog, availability.Noop{}, events.Noop{}, metrics, tx, log,
	).WithTimeProvider(clock)

	createUC := createReservationUC.NewUseCase(
		guard, catalog, vehicles{}, services{}, availability.Noop{}, events.Noop{}, log,
	).WithTimeProvider(clock)
	availabilityUC := getAvailabilityUC.NewUseCase(store, catalog, availability.Noop{}, metrics, log).WithTimeProvider(clock)
	monthUC := getMonthViewUC.NewUseCase(store, catalog, log).WithTimeProvider(clock)

	return NewRouter(Handlers{
		CreateReservation:    createReservationHandler.NewHandler(createUC, log),
		ListReservations:     listReservationsHandler.NewHandler(service, log),
		GetReservation:       getReservationHandler.NewHandler(service, log),
		GetDayReservations:   getDayReservationsHandler.NewHandler(service, log),
		GetMonthReservations: getMonthReservationsHandler.NewHandler(monthUC, log),
		UpdateReservation:    updateReservationHandler.NewHandler(service, log),
		CancelReservation:    cancelReservationHandler.NewHandler(service, log),
		ConfirmReservation:   confirmReservationHandler.NewHandler(service, log),
		CompleteReservation:  completeReservationHandler.NewHandler(service, log),
		DeleteReservation:    deleteReservationHandler.NewHandler(service, log),
		GetAvailability:      getAvailabilityHandler.NewHandler(availabilityUC, log),
		GetSlots:             getSlotsHandler.NewHandler(catalog),
	}, tokenAuth{}, Options{}, log)
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func createBody() map[string]interface{} {
	return map[string]interface{}{"vehicleId": 1, "serviceId": 2, "date": "2025-03-10", "time": "09:00"}
}

func TestRouter_CreateThenListByDate(t *testing.T) {
	h := newTestRouter(t, now)

	status, env := do(t, h, http.MethodPost, "/reservations", ownerToken, createBody())
	require.Equal(t, http.StatusCreated, status, env.Message)
	created := decode[reservationJSON](t, env.Data)

	status, env = do(t, h, http.MethodGet, "/reservations/date/2025-03-10", ownerToken, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]reservationJSON](t, env.Data)

	require.Len(t, list, 1)
	assert.Equal(t, reservationJSON{
		ID:        created.ID,
		UserID:    ownerID,
		VehicleID: 1,
		ServiceID: 2,
		Date:      "2025-03-10",
		Time:      "09:00",
		Status:    "PENDING",
	}, list[0])
}

func TestRouter_SlotConflict(t *testing.T) {
	h := newTestRouter(t, now)

	status, _ := do(t, h, http.MethodPost, "/reservations", ownerToken, createBody())
	require.Equal(t, http.StatusCreated, status)

	body := createBody()
	body["vehicleId"] = otherID
	status, env := do(t, h, http.MethodPost, "/reservations", otherToken, body)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, "CONFLICT", env.Code)
}

func TestRouter_Validation(t *testing.T) {
	h := newTestRouter(t, now)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "past date", body: map[string]interface{}{"vehicleId": 1, "serviceId": 2, "date": "2025-02-28", "time": "09:00"}},
		{name: "malformed date", body: map[string]interface{}{"vehicleId": 1, "serviceId": 2, "date": "10.03.2025", "time": "09:00"}},
		{name: "missing time", body: map[string]interface{}{"vehicleId": 1, "serviceId": 2, "date": "2025-03-10"}},
		{name: "break slot", body: map[string]interface{}{"vehicleId": 1, "serviceId": 2, "date": "2025-03-10", "time": "13:00"}},
		{name: "missing vehicle", body: map[string]interface{}{"serviceId": 2, "date": "2025-03-10", "time": "09:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, h, http.MethodPost, "/reservations", ownerToken, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION_ERROR", env.Code)
		})
	}

	status, env := do(t, h, http.MethodGet, "/reservations/date/2025-3-1x", ownerToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestRouter_ValidationMessagesAreFixed(t *testing.T) {
	h := newTestRouter(t, now)

	tests := []struct {
		name        string
		method      string
		path        string
		body        map[string]interface{}
		wantMessage string
	}{
		{
			name:        "past date",
			method:      http.MethodPost,
			path:        "/reservations",
			body:        map[string]interface{}{"vehicleId": 1, "serviceId": 2, "date": "2025-02-28", "time": "09:00"},
			wantMessage: "нельзя записаться на прошедшую дату",
		},
		{
			name:        "break slot",
			method:      http.MethodPost,
			path:        "/reservations",
			body:        map[string]interface{}{"vehicleId": 1, "serviceId": 2, "date": "2025-03-10", "time": "13:00"},
			wantMessage: "указанное время не входит в расписание слотов",
		},
		{
			name:        "slot already started today",
			method:      http.MethodPost,
			path:        "/reservations",
			body:        map[string]interface{}{"vehicleId": 1, "serviceId": 2, "date": "2025-03-01", "time": "09:00"},
			wantMessage: "выбранный слот уже начался",
		},
		{
			name:        "empty update",
			method:      http.MethodPut,
			path:        "/reservations/1",
			body:        map[string]interface{}{},
			wantMessage: "не указано ни одного изменяемого поля",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, h, tt.method, tt.path, ownerToken, tt.body)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION_ERROR", env.Code)
			assert.Equal(t, tt.wantMessage, env.Message)
			assert.NotContains(t, env.Message, "validation error")
		})
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	h := newTestRouter(t, now)

	status, env := do(t, h, http.MethodGet, "/reservations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Code)

	status, _ = do(t, h, http.MethodGet, "/reservations", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, h, http.MethodGet, "/slots", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_DayViewRedactsForeignReservations(t *testing.T) {
	h := newTestRouter(t, now)

	status, _ := do(t, h, http.MethodPost, "/reservations", ownerToken, createBody())
	require.Equal(t, http.StatusCreated, status)

	_, env := do(t, h, http.MethodGet, "/reservations/date/2025-03-10", otherToken, nil)
	list := decode[[]reservationJSON](t, env.Data)
	require.Len(t, list, 1)
	assert.Zero(t, list[0].UserID)
	assert.Zero(t, list[0].VehicleID)
	assert.Equal(t, "09:00", list[0].Time)

	_, env = do(t, h, http.MethodGet, "/reservations/date/2025-03-10", adminToken, nil)
	list = decode[[]reservationJSON](t, env.Data)
	require.Len(t, list, 1)
	assert.Equal(t, ownerID, list[0].UserID)
}

func TestRouter_Lifecycle(t *testing.T) {
	h := newTestRouter(t, now)

	_, env := do(t, h, http.MethodPost, "/reservations", ownerToken, createBody())
	id := decode[reservationJSON](t, env.Data).ID
	path := fmt.Sprintf("/reservations/%d", id)

	// клиент не может подтвердить
	status, env := do(t, h, http.MethodPatch, path+"/confirm", ownerToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_TRANSITION", env.Code)

	// чужой клиент не может отменить
	status, env = do(t, h, http.MethodPatch, path+"/cancel", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Code)

	// перенос владельцем
	status, env = do(t, h, http.MethodPut, path, ownerToken, map[string]string{"time": "10:00"})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "10:00", decode[reservationJSON](t, env.Data).Time)

	status, env = do(t, h, http.MethodPatch, path+"/cancel", ownerToken, map[string]string{"reason": "plans changed"})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "CANCELLED", decode[reservationJSON](t, env.Data).Status)

	// отменённое бронирование неизменяемо
	status, env = do(t, h, http.MethodPut, path, ownerToken, map[string]string{"time": "11:00"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_STATE", env.Code)

	status, env = do(t, h, http.MethodPatch, path+"/complete", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_TRANSITION", env.Code)

	// слот освобождён
	status, _ = do(t, h, http.MethodPost, "/reservations", ownerToken, map[string]interface{}{
		"vehicleId": 1, "serviceId": 2, "date": "2025-03-10", "time": "10:00",
	})
	assert.Equal(t, http.StatusCreated, status)
}

func TestRouter_AdminConfirmCompleteDelete(t *testing.T) {
	h := newTestRouter(t, now)

	_, env := do(t, h, http.MethodPost, "/reservations", ownerToken, createBody())
	path := fmt.Sprintf("/reservations/%d", decode[reservationJSON](t, env.Data).ID)

	status, env := do(t, h, http.MethodPatch, path+"/confirm", adminToken, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "CONFIRMED", decode[reservationJSON](t, env.Data).Status)

	status, env = do(t, h, http.MethodPatch, path+"/complete", adminToken, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "COMPLETED", decode[reservationJSON](t, env.Data).Status)

	status, _ = do(t, h, http.MethodDelete, path, ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = do(t, h, http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = do(t, h, http.MethodGet, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestRouter_MonthAndAvailabilityAgree(t *testing.T) {
	h := newTestRouter(t, now)

	status, _ := do(t, h, http.MethodPost, "/reservations", ownerToken, createBody())
	require.Equal(t, http.StatusCreated, status)

	_, env := do(t, h, http.MethodGet, "/reservations/month/2025/3", ownerToken, nil)
	month := decode[getMonthReservationsHandler.MonthResponse](t, env.Data)
	require.Len(t, month.Days, 31)

	day := month.Days[9]
	assert.Equal(t, "2025-03-10", day.Date)
	assert.Equal(t, "partial", day.State)

	_, env = do(t, h, http.MethodGet, "/availability/2025-03-10", "", nil)
	availability := decode[getAvailabilityHandler.AvailabilityResponse](t, env.Data)
	assert.Equal(t, availability.OccupiedSlots, day.OccupiedSlots)
	assert.Equal(t, availability.TotalSlots, day.TotalSlots)
	assert.Equal(t, availability.State, day.State)

	status, env = do(t, h, http.MethodGet, "/reservations/month/2025/13", ownerToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}
