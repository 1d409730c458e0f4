package health

import (
	"context"
	"net/http"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
)

const pingTimeout = 2 * time.Second

// Pinger проверка доступности зависимости
type Pinger interface {
	PingContext(ctx context.Context) error
}

// StatusResponse HTTP response model
type StatusResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type Handler struct {
	db Pinger
}

func NewHandler(db Pinger) *Handler {
	return &Handler{db: db}
}

// Handle GET /health
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		handlers.RespondJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "degraded", Database: "unavailable"})
		return
	}
	handlers.RespondJSON(w, http.StatusOK, StatusResponse{Status: "ok", Database: "ok"})
}
