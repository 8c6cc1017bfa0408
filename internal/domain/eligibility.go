package domain

import "fmt"

// MaxApproveQuantity caps a single multi-approve submission.
const MaxApproveQuantity = 100

type EligibilityResult struct {
	Allowed     bool
	MaxQuantity int
	Reason      string
}

func denied(reason string) EligibilityResult {
	return EligibilityResult{Reason: reason}
}

func allowed(maxQuantity int) EligibilityResult {
	return EligibilityResult{Allowed: true, MaxQuantity: maxQuantity}
}

// Eligibility decides whether an action may be offered for a category given
// the freshest counters and the operator's permissions. It is consulted both
// to gate the UI and as the authoritative re-check before submission.
func Eligibility(action Action, cat Category, counters ActivityCounters, perms Permissions) EligibilityResult {
	if !action.appliesTo(cat) {
		return denied(fmt.Sprintf("%s does not apply to %s", action, cat.Label()))
	}

	switch action {
	case ActionApprove:
		if !perms.CanApprove(cat) {
			return denied(fmt.Sprintf("not permitted to approve %s", cat.Label()))
		}
		counts, _ := counters.Counts(cat)
		if !perms.CanApproveMultiple {
			if counts.Approved >= 1 {
				return denied(fmt.Sprintf("%s already approved", cat.Label()))
			}
			return allowed(1)
		}
		return allowed(MaxApproveQuantity)

	case ActionDisapprove:
		if !perms.CanApprove(cat) {
			return denied(fmt.Sprintf("not permitted to approve %s", cat.Label()))
		}
		counts, _ := counters.Counts(cat)
		if counts.Approved == 0 {
			return denied(fmt.Sprintf("no approved %s to disapprove", cat.Label()))
		}
		if counts.Outstanding() <= 0 {
			return denied(fmt.Sprintf("cannot disapprove fulfilled %s", cat.Label()))
		}
		return allowed(counts.Outstanding())

	case ActionFulfill:
		if !perms.CanFulfill(cat) {
			return denied(fmt.Sprintf("not permitted to fulfill %s", cat.Label()))
		}
		counts, _ := counters.Counts(cat)
		if counts.Approved == 0 {
			return denied(fmt.Sprintf("%s must be approved before fulfillment", cat.Label()))
		}
		if counts.Outstanding() <= 0 {
			return denied(fmt.Sprintf("all approved %s already fulfilled", cat.Label()))
		}
		return allowed(counts.Outstanding())

	case ActionUnfulfill:
		if !perms.CanFulfill(cat) {
			return denied(fmt.Sprintf("not permitted to fulfill %s", cat.Label()))
		}
		counts, _ := counters.Counts(cat)
		if counts.Fulfilled == 0 {
			return denied(fmt.Sprintf("no fulfilled %s to return", cat.Label()))
		}
		return allowed(counts.Fulfilled)

	case ActionAdd, ActionRemove:
		return allowed(1)

	default:
		return denied(fmt.Sprintf("unsupported action %s", action))
	}
}

// ServiceEligibility decides whether a service option may be acknowledged.
func ServiceEligibility(counters ActivityCounters, optionID string) EligibilityResult {
	opt, ok := counters.Service(optionID)
	if !ok {
		return denied("service option not offered on this tag")
	}
	if opt.SignedUp && opt.Acknowledged {
		return denied(fmt.Sprintf("%s already acknowledged", opt.ServiceName))
	}
	return allowed(1)
}

// ValidateQuantity re-runs the eligibility decision against fresh counters
// and checks the requested quantity against the resulting cap.
func ValidateQuantity(action Action, cat Category, counters ActivityCounters, perms Permissions, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity %d, want at least 1", ErrInvalidQuantity, quantity)
	}
	res := Eligibility(action, cat, counters, perms)
	if !res.Allowed {
		return fmt.Errorf("%w: %s", ErrIneligibleAction, res.Reason)
	}
	if quantity > res.MaxQuantity {
		return fmt.Errorf("%w: cannot %s %d %s units, at most %d", ErrIneligibleAction, action, quantity, cat.Label(), res.MaxQuantity)
	}
	return nil
}

// MealAssessment is the outcome of checking a tag's count for a meal window.
type MealAssessment struct {
	Slot    MealSlot
	Count   int
	Valid   bool
	AutoAdd bool
}

// AssessMeal interprets a meal-slot count: zero means the tag has not eaten
// this window and should be recorded automatically, one means the meal was
// already taken, anything else is out of band and left for manual correction.
func AssessMeal(slot MealSlot, count int) MealAssessment {
	a := MealAssessment{Slot: slot, Count: count}
	if count == 0 {
		a.Valid = true
		a.AutoAdd = true
	}
	return a
}
