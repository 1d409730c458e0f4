package cancellation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

func TestPolicy_CanCancel(t *testing.T) {
	policy := NewPolicy(24*time.Hour, time.UTC)
	r := &domain.Reservation{
		Date:   time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Time:   "10:00",
		Status: domain.StatusConfirmed,
	}

	early := time.Date(2025, 1, 14, 9, 0, 0, 0, time.UTC)
	late := time.Date(2025, 1, 14, 11, 0, 0, 0, time.UTC)
	exactly := time.Date(2025, 1, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		now        time.Time
		role       domain.Role
		want       bool
		wantReason string
	}{
		{name: "client early", now: early, role: domain.RoleClient, want: true},
		{name: "client late", now: late, role: domain.RoleClient, want: false, wantReason: ReasonLeadTimeViolated},
		{name: "client at boundary", now: exactly, role: domain.RoleClient, want: false, wantReason: ReasonLeadTimeViolated},
		{name: "admin early", now: early, role: domain.RoleAdmin, want: true},
		{name: "admin late", now: late, role: domain.RoleAdmin, want: true},
		{name: "system late", now: late, role: domain.RoleSystem, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := policy.CanCancel(r, tt.now, tt.role)

			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestPolicy_UsesBusinessTimeZone(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	policy := NewPolicy(24*time.Hour, loc)
	r := &domain.Reservation{Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), Time: "10:00"}

	// 10:00 по UTC+3 это 07:00 UTC; за 24 часа - 14 января 07:00 UTC
	assert.NoError(t, policy.Check(r, time.Date(2025, 1, 14, 6, 59, 0, 0, time.UTC), domain.RoleClient))
	assert.ErrorIs(t, policy.Check(r, time.Date(2025, 1, 14, 7, 30, 0, 0, time.UTC), domain.RoleClient), domain.ErrPolicy)
}
