package cancellation

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ReasonLeadTimeViolated причина отказа в отмене
const ReasonLeadTimeViolated = "lead time violated"

// Policy правило отмены: клиент может отменить бронирование не позже чем за leadTime до его начала.
// Администратор (и системные сигналы) правило обходят; роль берётся из проверенного токена.
type Policy struct {
	leadTime time.Duration
	loc      *time.Location
}

// NewPolicy создает политику отмены для часового пояса бизнеса
func NewPolicy(leadTime time.Duration, loc *time.Location) *Policy {
	if loc == nil {
		loc = time.UTC
	}
	return &Policy{leadTime: leadTime, loc: loc}
}

// LeadTime минимальный запас времени до начала бронирования
func (p *Policy) LeadTime() time.Duration {
	return p.leadTime
}

// CanCancel разрешена ли отмена в момент now; при отказе возвращает причину
func (p *Policy) CanCancel(r *domain.Reservation, now time.Time, role domain.Role) (bool, string) {
	if role == domain.RoleAdmin || role == domain.RoleSystem {
		return true, ""
	}

	start := domain.ReservationDateTime(r.Date, r.Time, p.loc)
	if now.Before(start.Add(-p.leadTime)) {
		return true, ""
	}

	return false, ReasonLeadTimeViolated
}

// Check то же, что CanCancel, но в виде ошибки domain.ErrPolicy
func (p *Policy) Check(r *domain.Reservation, now time.Time, role domain.Role) error {
	if ok, reason := p.CanCancel(r, now, role); !ok {
		return fmt.Errorf("%w: %s", domain.ErrPolicy, reason)
	}
	return nil
}
