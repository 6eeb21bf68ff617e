package dashboard

import "errors"

var (
	ErrUnknownResource = errors.New("dashboard: unknown resource")
	ErrInvalidInput    = errors.New("dashboard: invalid input")
	ErrNoParent        = errors.New("dashboard: resource has no parent")
	ErrInvalidSchedule = errors.New("dashboard: invalid stats schedule")
)
