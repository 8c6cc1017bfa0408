package domain

import (
	"fmt"
	"strings"
)

// UpdateRequest is a fully validated ledger mutation, ready for submission.
// MemberID is the scanned member's own id when the snapshot carried one; the
// operator is identified separately by ScannerID.
type UpdateRequest struct {
	ClientRequestID string
	TagID           string
	MemberID        string
	ScannerID       string
	Category        Category
	Activity        string
	GiftActivityID  int
	ServiceOptionID string
	Quantity        int
	Remove          bool
	Location        string
}

type UpdateRequestInput struct {
	ClientRequestID string
	TagID           string
	MemberID        string
	ScannerID       string
	Action          Action
	Category        Category
	Quantity        int
	MealSlot        MealSlot
	ServiceOptionID string
	Location        string
}

// BuildUpdateRequest assembles the wire-ready request for an already
// eligibility-checked action. It validates shape, not eligibility: callers
// run ValidateQuantity against fresh counters first.
func BuildUpdateRequest(in UpdateRequestInput) (UpdateRequest, error) {
	in.ClientRequestID = strings.TrimSpace(in.ClientRequestID)
	in.TagID = strings.TrimSpace(in.TagID)
	in.MemberID = strings.TrimSpace(in.MemberID)
	in.ScannerID = strings.TrimSpace(in.ScannerID)
	in.ServiceOptionID = strings.TrimSpace(in.ServiceOptionID)
	in.Location = strings.TrimSpace(in.Location)

	if in.TagID == "" {
		return UpdateRequest{}, ErrInvalidTag
	}
	if in.ScannerID == "" {
		return UpdateRequest{}, ErrMissingActor
	}
	if !in.Action.appliesTo(in.Category) {
		return UpdateRequest{}, fmt.Errorf("%w: %s does not apply to %s", ErrIneligibleAction, in.Action, in.Category.Label())
	}

	req := UpdateRequest{
		ClientRequestID: in.ClientRequestID,
		TagID:           in.TagID,
		MemberID:        in.MemberID,
		ScannerID:       in.ScannerID,
		Category:        in.Category,
		Remove:          in.Action.IsRemoval(),
		Location:        in.Location,
	}

	switch {
	case in.Category.IsGift():
		if in.Quantity < 1 {
			return UpdateRequest{}, fmt.Errorf("%w: quantity %d, want at least 1", ErrInvalidQuantity, in.Quantity)
		}
		req.Quantity = in.Quantity
		req.GiftActivityID, _ = GiftActivityID(in.Category)
		if in.Action == ActionApprove || in.Action == ActionDisapprove {
			req.Activity = ActivityGiftApproval
		} else {
			req.Activity = ActivityGiftFulfilled
		}

	case in.Category == CategoryMeal:
		if !ValidMealSlot(in.MealSlot) {
			return UpdateRequest{}, fmt.Errorf("%w: %q", ErrUnknownMealSlot, in.MealSlot)
		}
		req.Quantity = 1
		req.Activity = string(in.MealSlot)

	case in.Category == CategoryService:
		if in.ServiceOptionID == "" {
			return UpdateRequest{}, ErrUnknownServiceOption
		}
		req.Quantity = 1
		req.Activity = ActivityServiceScan
		req.ServiceOptionID = in.ServiceOptionID
	}

	return req, nil
}
