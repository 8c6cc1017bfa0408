package domain

import "strings"

type GiftCounts struct {
	Approved  int
	Fulfilled int
}

// Outstanding is the number of approved units not yet handed over.
func (g GiftCounts) Outstanding() int {
	return g.Approved - g.Fulfilled
}

type ServiceOption struct {
	ID           string
	ServiceName  string
	DisplayKey   string
	DisplayValue string
	SignedUp     bool
	Acknowledged bool
}

type ActivityCounters struct {
	TagID    string
	Tshirt   GiftCounts
	Jacket   GiftCounts
	Meal     int
	Services []ServiceOption
}

type CountersSnapshot struct {
	TagID           string
	TshirtApproved  int
	TshirtFulfilled int
	JacketApproved  int
	JacketFulfilled int
	MealCount       int
	Services        []ServiceOption
}

// CountersFromSnapshot builds counters from a fetched ledger snapshot. Absent
// fields decode as zero, so a tag with no history yields all-zero counters.
func CountersFromSnapshot(in CountersSnapshot) (ActivityCounters, error) {
	in.TagID = strings.TrimSpace(in.TagID)
	if in.TagID == "" {
		return ActivityCounters{}, ErrInvalidTag
	}
	return ActivityCounters{
		TagID:    in.TagID,
		Tshirt:   GiftCounts{Approved: in.TshirtApproved, Fulfilled: in.TshirtFulfilled},
		Jacket:   GiftCounts{Approved: in.JacketApproved, Fulfilled: in.JacketFulfilled},
		Meal:     in.MealCount,
		Services: in.Services,
	}, nil
}

func (c ActivityCounters) Counts(cat Category) (GiftCounts, bool) {
	switch cat {
	case CategoryGiftTshirt:
		return c.Tshirt, true
	case CategoryGiftJacket:
		return c.Jacket, true
	default:
		return GiftCounts{}, false
	}
}

func (c ActivityCounters) MealCount() int {
	return c.Meal
}

func (c ActivityCounters) Service(optionID string) (ServiceOption, bool) {
	for _, opt := range c.Services {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return ServiceOption{}, false
}
