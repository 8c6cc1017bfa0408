package domain

import "errors"

var (
	ErrInvalidTag           = errors.New("invalid tag id")
	ErrInvalidMemberID      = errors.New("invalid member id")
	ErrMissingActor         = errors.New("scanner identity unavailable")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrIneligibleAction     = errors.New("ineligible action")
	ErrNoMealWindow         = errors.New("no meal window matches the current time")
	ErrUnknownMealSlot      = errors.New("unknown meal slot")
	ErrInvalidMealWindow    = errors.New("invalid meal window")
	ErrUnknownServiceOption = errors.New("unknown service option")
)
