package domain

import "slices"

type Category string

const (
	CategoryMeal       Category = "meal"
	CategoryGiftTshirt Category = "tshirt"
	CategoryGiftJacket Category = "jacket"
	CategoryService    Category = "service"
)

var giftCategories = []Category{CategoryGiftTshirt, CategoryGiftJacket}

func (c Category) IsGift() bool {
	return slices.Contains(giftCategories, c)
}

func (c Category) Label() string {
	switch c {
	case CategoryMeal:
		return "Meal"
	case CategoryGiftTshirt:
		return "T-Shirt"
	case CategoryGiftJacket:
		return "Jacket"
	case CategoryService:
		return "Service"
	default:
		return string(c)
	}
}

// GiftActivityID maps a gift category to the ledger's numeric activity id.
func GiftActivityID(c Category) (int, bool) {
	switch c {
	case CategoryGiftTshirt:
		return 1, true
	case CategoryGiftJacket:
		return 2, true
	default:
		return 0, false
	}
}

type Action string

const (
	ActionApprove     Action = "approve"
	ActionDisapprove  Action = "disapprove"
	ActionFulfill     Action = "fulfill"
	ActionUnfulfill   Action = "unfulfill"
	ActionAdd         Action = "add"
	ActionRemove      Action = "remove"
	ActionAcknowledge Action = "acknowledge"
)

var giftActions = []Action{ActionApprove, ActionDisapprove, ActionFulfill, ActionUnfulfill}

// IsRemoval reports whether the action reverses a prior ledger entry.
func (a Action) IsRemoval() bool {
	return a == ActionDisapprove || a == ActionUnfulfill || a == ActionRemove
}

func (a Action) appliesTo(c Category) bool {
	switch {
	case c.IsGift():
		return slices.Contains(giftActions, a)
	case c == CategoryMeal:
		return a == ActionAdd || a == ActionRemove
	case c == CategoryService:
		return a == ActionAcknowledge
	default:
		return false
	}
}

// Wire names the ledger uses for the activity field of an update.
const (
	ActivityGiftApproval  = "giftapproval"
	ActivityGiftFulfilled = "giftfulfilled"
	ActivityServiceScan   = "servicescan"
	ActivityRegCheck      = "regCheck"
)

// WireCategoryGiftTracking tags gift and service updates on the wire.
const WireCategoryGiftTracking = "gifttracking"
