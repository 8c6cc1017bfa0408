package domain

import (
	"fmt"
	"slices"
	"time"
)

type MealSlot string

const (
	MealFriDinner    MealSlot = "friDinner"
	MealSatBreakfast MealSlot = "satBreakfast"
	MealSatLunch     MealSlot = "satLunch"
	MealSatDinner    MealSlot = "satDinner"
	MealSunBreakfast MealSlot = "sunBreakfast"
	MealSunLunch     MealSlot = "sunLunch"
	MealSunDinner    MealSlot = "sunDinner"
	MealMonBreakfast MealSlot = "monBreakfast"
	MealMonLunch     MealSlot = "monLunch"
)

var mealSlots = []MealSlot{
	MealFriDinner,
	MealSatBreakfast,
	MealSatLunch,
	MealSatDinner,
	MealSunBreakfast,
	MealSunLunch,
	MealSunDinner,
	MealMonBreakfast,
	MealMonLunch,
}

func MealSlots() []MealSlot {
	return slices.Clone(mealSlots)
}

func ValidMealSlot(s MealSlot) bool {
	return slices.Contains(mealSlots, s)
}

func (s MealSlot) Label() string {
	switch s {
	case MealFriDinner:
		return "Friday Dinner"
	case MealSatBreakfast:
		return "Saturday Breakfast"
	case MealSatLunch:
		return "Saturday Lunch"
	case MealSatDinner:
		return "Saturday Dinner"
	case MealSunBreakfast:
		return "Sunday Breakfast"
	case MealSunLunch:
		return "Sunday Lunch"
	case MealSunDinner:
		return "Sunday Dinner"
	case MealMonBreakfast:
		return "Monday Breakfast"
	case MealMonLunch:
		return "Monday Lunch"
	default:
		return string(s)
	}
}

type MealWindow struct {
	Slot  MealSlot
	Start time.Time
	End   time.Time
}

// Schedule holds the retreat's meal windows in resolution order. Windows may
// overlap; the first match wins.
type Schedule struct {
	windows []MealWindow
}

func NewSchedule(windows []MealWindow) (Schedule, error) {
	for _, w := range windows {
		if !ValidMealSlot(w.Slot) {
			return Schedule{}, fmt.Errorf("%w: %q", ErrUnknownMealSlot, w.Slot)
		}
		if !w.Start.Before(w.End) {
			return Schedule{}, fmt.Errorf("%w: %s start %s is not before end %s", ErrInvalidMealWindow, w.Slot, w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
		}
	}
	return Schedule{windows: slices.Clone(windows)}, nil
}

// Resolve returns the slot whose window contains the given instant. Both
// window edges are inclusive.
func (s Schedule) Resolve(at time.Time) (MealSlot, error) {
	for _, w := range s.windows {
		if !at.Before(w.Start) && !at.After(w.End) {
			return w.Slot, nil
		}
	}
	return "", ErrNoMealWindow
}

func (s Schedule) Windows() []MealWindow {
	return slices.Clone(s.windows)
}

// LaneLabel maps a numeric lane code to the location string recorded with a
// meal scan.
func LaneLabel(code int) string {
	switch {
	case code >= 1 && code <= 8:
		return fmt.Sprintf("custom lane %d", code)
	case code == 9:
		return "Vegan lane"
	case code == 10:
		return "VIP lane"
	default:
		return "fast lane"
	}
}
