package domain

// Role роль пользователя, подтверждённая сервисом аутентификации
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
	// RoleSystem внутренние сигналы (например, из истории обслуживания)
	RoleSystem Role = "system"
)

// Actor инициатор операции
type Actor struct {
	UserID int64
	Role   Role
}

// SystemActor инициатор для внутренних сигналов
func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}

// IsOperator true для администратора и системных сигналов
func (a Actor) IsOperator() bool {
	return a.Role == RoleAdmin || a.Role == RoleSystem
}

// IsAdmin true только для администратора
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess true, если инициатор владелец или оператор
func (a Actor) CanAccess(r *Reservation) bool {
	return a.IsOperator() || r.IsOwnedBy(a.UserID)
}
