package conflictguard

import "errors"

// errSlotHeld слот занят по результатам проверки внутри транзакции
var errSlotHeld = errors.New("conflictguard: slot held by another reservation")
