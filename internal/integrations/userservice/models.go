package userservice

// Identity пользователь, которому принадлежит токен
type Identity struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"` // client | admin
}

// Vehicle автомобиль пользователя
type Vehicle struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"userId"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	LicensePlate string `json:"licensePlate"`
}

// ErrorResponse модель ошибки от UserService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
