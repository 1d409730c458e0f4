package get_slots

import (
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// SlotsResponse HTTP response model
type SlotsResponse struct {
	Slots           []string `json:"slots"`
	Breaks          []string `json:"breaks"`
	DurationMinutes int      `json:"durationMinutes"`
	Timezone        string   `json:"timezone"`
}

type Handler struct {
	response SlotsResponse
}

// NewHandler каталог неизменен, ответ собирается один раз
func NewHandler(catalog *domain.SlotCatalog) *Handler {
	resp := SlotsResponse{
		Slots:           make([]string, 0),
		Breaks:          make([]string, 0),
		DurationMinutes: catalog.SlotDuration(),
		Timezone:        catalog.Location().String(),
	}
	for _, s := range catalog.All() {
		resp.Slots = append(resp.Slots, s.String())
	}
	for _, b := range catalog.Breaks() {
		resp.Breaks = append(resp.Breaks, b.String())
	}
	return &Handler{response: resp}
}

// Handle GET /slots
func (h *Handler) Handle(w http.ResponseWriter, _ *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.response)
}
