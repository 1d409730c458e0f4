package userservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestClient_Authenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/auth/verify", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userId": 42, "role": "admin"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nopLogger{})

	identity, err := c.Authenticate(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, &Identity{UserID: 42, Role: "admin"}, identity)

	_, err = c.Authenticate(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_GetVehicle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/vehicles/1":
			_, _ = w.Write([]byte(`{"id": 1, "userId": 42, "brand": "Lada", "model": "Vesta", "licensePlate": "A001AA"}`))
		case "/internal/vehicles/500":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("oops"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nopLogger{})

	v, err := c.GetVehicle(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.UserID)
	assert.Equal(t, "Vesta", v.Model)

	_, err = c.GetVehicle(context.Background(), 2)
	assert.ErrorIs(t, err, ErrVehicleNotFound)

	_, err = c.GetVehicle(context.Background(), 500)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
