package app

import "fmt"

var (
	ErrScheduleExists       = fmt.Errorf("assignments already exist in the requested range")
	ErrRegenerationConflict = fmt.Errorf("range contains notified or overridden assignments")
	ErrInactiveMember       = fmt.Errorf("member is not active")
	ErrSelfOverride         = fmt.Errorf("override member matches the scheduled member")
	ErrDuplicateOverride    = fmt.Errorf("assignment already has an active override")
	ErrRecipientUnresolved  = fmt.Errorf("recipient has no usable address")
	ErrNothingToRenew       = fmt.Errorf("no existing assignments to extend")
)
