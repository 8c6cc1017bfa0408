package domain

import (
	"errors"
	"testing"
	"time"
)

func countersWith(approved, fulfilled int) ActivityCounters {
	return ActivityCounters{
		TagID:  "TAG1",
		Tshirt: GiftCounts{Approved: approved, Fulfilled: fulfilled},
	}
}

func approverPerms() Permissions {
	return Permissions{CanApproveTshirt: true, CanApproveJacket: true}
}

func fulfillerPerms() Permissions {
	return Permissions{CanFulfillTshirt: true, CanFulfillJacket: true}
}

func TestCountersFromSnapshotZeroDefaults(t *testing.T) {
	c, err := CountersFromSnapshot(CountersSnapshot{TagID: " TAG1 "})
	if err != nil {
		t.Fatalf("CountersFromSnapshot() error = %v", err)
	}
	if c.TagID != "TAG1" {
		t.Fatalf("unexpected tag id %q", c.TagID)
	}
	if c.Tshirt != (GiftCounts{}) || c.Jacket != (GiftCounts{}) || c.Meal != 0 {
		t.Fatalf("expected all-zero counters, got %#v", c)
	}
	if _, err := CountersFromSnapshot(CountersSnapshot{}); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag, got %v", err)
	}
}

func TestApproveSingleOnly(t *testing.T) {
	perms := approverPerms()

	res := Eligibility(ActionApprove, CategoryGiftTshirt, countersWith(0, 0), perms)
	if !res.Allowed || res.MaxQuantity != 1 {
		t.Fatalf("expected single approve allowed, got %#v", res)
	}
	res = Eligibility(ActionApprove, CategoryGiftTshirt, countersWith(1, 0), perms)
	if res.Allowed {
		t.Fatalf("expected approve denied with prior approval, got %#v", res)
	}
}

func TestApproveMultiple(t *testing.T) {
	perms := approverPerms()
	perms.CanApproveMultiple = true

	res := Eligibility(ActionApprove, CategoryGiftTshirt, countersWith(5, 2), perms)
	if !res.Allowed || res.MaxQuantity != MaxApproveQuantity {
		t.Fatalf("expected multi approve capped at %d, got %#v", MaxApproveQuantity, res)
	}
}

func TestApproveWithoutPermission(t *testing.T) {
	res := Eligibility(ActionApprove, CategoryGiftTshirt, countersWith(0, 0), Permissions{})
	if res.Allowed {
		t.Fatalf("expected approve denied without permission, got %#v", res)
	}
}

func TestDisapproveCaps(t *testing.T) {
	perms := approverPerms()

	res := Eligibility(ActionDisapprove, CategoryGiftTshirt, countersWith(3, 1), perms)
	if !res.Allowed || res.MaxQuantity != 2 {
		t.Fatalf("expected disapprove cap 2, got %#v", res)
	}
	res = Eligibility(ActionDisapprove, CategoryGiftTshirt, countersWith(3, 3), perms)
	if res.Allowed {
		t.Fatalf("expected disapprove denied when all fulfilled, got %#v", res)
	}
	res = Eligibility(ActionDisapprove, CategoryGiftTshirt, countersWith(0, 0), perms)
	if res.Allowed {
		t.Fatalf("expected disapprove denied with nothing approved, got %#v", res)
	}
}

func TestFulfillCaps(t *testing.T) {
	perms := fulfillerPerms()

	res := Eligibility(ActionFulfill, CategoryGiftTshirt, countersWith(0, 0), perms)
	if res.Allowed {
		t.Fatalf("expected fulfill denied without approval, got %#v", res)
	}
	res = Eligibility(ActionFulfill, CategoryGiftTshirt, countersWith(4, 1), perms)
	if !res.Allowed || res.MaxQuantity != 3 {
		t.Fatalf("expected fulfill cap 3, got %#v", res)
	}
	res = Eligibility(ActionFulfill, CategoryGiftTshirt, countersWith(2, 2), perms)
	if res.Allowed {
		t.Fatalf("expected fulfill denied when outstanding is zero, got %#v", res)
	}
}

func TestUnfulfillCap(t *testing.T) {
	perms := fulfillerPerms()

	res := Eligibility(ActionUnfulfill, CategoryGiftTshirt, countersWith(4, 3), perms)
	if !res.Allowed || res.MaxQuantity != 3 {
		t.Fatalf("expected unfulfill cap 3, got %#v", res)
	}
	res = Eligibility(ActionUnfulfill, CategoryGiftTshirt, countersWith(4, 0), perms)
	if res.Allowed {
		t.Fatalf("expected unfulfill denied with nothing fulfilled, got %#v", res)
	}
}

func TestActionCategoryMismatch(t *testing.T) {
	res := Eligibility(ActionApprove, CategoryMeal, ActivityCounters{TagID: "TAG1"}, approverPerms())
	if res.Allowed {
		t.Fatalf("expected approve denied for meal category, got %#v", res)
	}
}

func TestValidateQuantity(t *testing.T) {
	perms := approverPerms()
	perms.CanApproveMultiple = true
	counters := countersWith(0, 0)

	if err := ValidateQuantity(ActionApprove, CategoryGiftTshirt, counters, perms, 10); err != nil {
		t.Fatalf("ValidateQuantity() error = %v", err)
	}
	err := ValidateQuantity(ActionApprove, CategoryGiftTshirt, counters, perms, MaxApproveQuantity+1)
	if !errors.Is(err, ErrIneligibleAction) {
		t.Fatalf("expected ErrIneligibleAction over cap, got %v", err)
	}
	err = ValidateQuantity(ActionApprove, CategoryGiftTshirt, counters, perms, 0)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	err = ValidateQuantity(ActionFulfill, CategoryGiftTshirt, counters, fulfillerPerms(), 1)
	if !errors.Is(err, ErrIneligibleAction) {
		t.Fatalf("expected ErrIneligibleAction for unapproved fulfill, got %v", err)
	}
}

func TestServiceEligibility(t *testing.T) {
	counters := ActivityCounters{
		TagID: "TAG1",
		Services: []ServiceOption{
			{ID: "svc-1", ServiceName: "Kitchen", SignedUp: true},
			{ID: "svc-2", ServiceName: "Parking", SignedUp: true, Acknowledged: true},
		},
	}

	if res := ServiceEligibility(counters, "svc-1"); !res.Allowed {
		t.Fatalf("expected svc-1 acknowledgeable, got %#v", res)
	}
	if res := ServiceEligibility(counters, "svc-2"); res.Allowed {
		t.Fatalf("expected svc-2 denied, got %#v", res)
	}
	if res := ServiceEligibility(counters, "nope"); res.Allowed {
		t.Fatalf("expected unknown option denied, got %#v", res)
	}
}

func TestAssessMeal(t *testing.T) {
	a := AssessMeal(MealSatLunch, 0)
	if !a.Valid || !a.AutoAdd {
		t.Fatalf("expected count 0 valid with auto add, got %#v", a)
	}
	a = AssessMeal(MealSatLunch, 1)
	if a.Valid || a.AutoAdd {
		t.Fatalf("expected count 1 invalid without auto add, got %#v", a)
	}
	a = AssessMeal(MealSatLunch, 3)
	if a.Valid || a.AutoAdd {
		t.Fatalf("expected count 3 invalid without auto add, got %#v", a)
	}
}

func TestBuildUpdateRequestGift(t *testing.T) {
	req, err := BuildUpdateRequest(UpdateRequestInput{
		ClientRequestID: "req-1",
		TagID:           "TAG1",
		MemberID:        " 1234 ",
		ScannerID:       "9001",
		Action:          ActionApprove,
		Category:        CategoryGiftJacket,
		Quantity:        2,
	})
	if err != nil {
		t.Fatalf("BuildUpdateRequest() error = %v", err)
	}
	if req.Activity != ActivityGiftApproval || req.GiftActivityID != 2 {
		t.Fatalf("unexpected gift request %#v", req)
	}
	if req.Remove || req.Quantity != 2 {
		t.Fatalf("unexpected gift request %#v", req)
	}
	if req.MemberID != "1234" || req.ScannerID != "9001" {
		t.Fatalf("unexpected gift request %#v", req)
	}

	req, err = BuildUpdateRequest(UpdateRequestInput{
		TagID:     "TAG1",
		ScannerID: "9001",
		Action:    ActionUnfulfill,
		Category:  CategoryGiftTshirt,
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("BuildUpdateRequest() error = %v", err)
	}
	if req.Activity != ActivityGiftFulfilled || !req.Remove || req.GiftActivityID != 1 {
		t.Fatalf("unexpected unfulfill request %#v", req)
	}
}

func TestBuildUpdateRequestMeal(t *testing.T) {
	req, err := BuildUpdateRequest(UpdateRequestInput{
		TagID:     "TAG1",
		ScannerID: "9001",
		Action:    ActionAdd,
		Category:  CategoryMeal,
		Quantity:  5,
		MealSlot:  MealSunDinner,
		Location:  "Vegan lane",
	})
	if err != nil {
		t.Fatalf("BuildUpdateRequest() error = %v", err)
	}
	if req.Activity != "sunDinner" || req.Quantity != 1 || req.Remove {
		t.Fatalf("unexpected meal request %#v", req)
	}
	if req.Location != "Vegan lane" {
		t.Fatalf("unexpected location %q", req.Location)
	}

	req, err = BuildUpdateRequest(UpdateRequestInput{
		TagID:     "TAG1",
		ScannerID: "9001",
		Action:    ActionRemove,
		Category:  CategoryMeal,
		MealSlot:  MealSunDinner,
	})
	if err != nil {
		t.Fatalf("BuildUpdateRequest() error = %v", err)
	}
	if !req.Remove {
		t.Fatalf("expected remove flag set, got %#v", req)
	}

	_, err = BuildUpdateRequest(UpdateRequestInput{
		TagID:     "TAG1",
		ScannerID: "9001",
		Action:    ActionAdd,
		Category:  CategoryMeal,
		MealSlot:  MealSlot("brunch"),
	})
	if !errors.Is(err, ErrUnknownMealSlot) {
		t.Fatalf("expected ErrUnknownMealSlot, got %v", err)
	}
}

func TestBuildUpdateRequestService(t *testing.T) {
	req, err := BuildUpdateRequest(UpdateRequestInput{
		TagID:           "TAG1",
		ScannerID:       "9001",
		Action:          ActionAcknowledge,
		Category:        CategoryService,
		ServiceOptionID: "svc-7",
	})
	if err != nil {
		t.Fatalf("BuildUpdateRequest() error = %v", err)
	}
	if req.Activity != ActivityServiceScan || req.ServiceOptionID != "svc-7" || req.Remove {
		t.Fatalf("unexpected service request %#v", req)
	}

	_, err = BuildUpdateRequest(UpdateRequestInput{
		TagID:     "TAG1",
		ScannerID: "9001",
		Action:    ActionAcknowledge,
		Category:  CategoryService,
	})
	if !errors.Is(err, ErrUnknownServiceOption) {
		t.Fatalf("expected ErrUnknownServiceOption, got %v", err)
	}
}

func TestBuildUpdateRequestValidation(t *testing.T) {
	_, err := BuildUpdateRequest(UpdateRequestInput{
		ScannerID: "9001",
		Action:    ActionApprove,
		Category:  CategoryGiftTshirt,
		Quantity:  1,
	})
	if !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag, got %v", err)
	}

	_, err = BuildUpdateRequest(UpdateRequestInput{
		TagID:    "TAG1",
		Action:   ActionApprove,
		Category: CategoryGiftTshirt,
		Quantity: 1,
	})
	if !errors.Is(err, ErrMissingActor) {
		t.Fatalf("expected ErrMissingActor, got %v", err)
	}

	_, err = BuildUpdateRequest(UpdateRequestInput{
		TagID:     "TAG1",
		ScannerID: "9001",
		Action:    ActionApprove,
		Category:  CategoryGiftTshirt,
		Quantity:  0,
	})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}

	_, err = BuildUpdateRequest(UpdateRequestInput{
		TagID:     "TAG1",
		ScannerID: "9001",
		Action:    ActionFulfill,
		Category:  CategoryMeal,
		Quantity:  1,
	})
	if !errors.Is(err, ErrIneligibleAction) {
		t.Fatalf("expected ErrIneligibleAction, got %v", err)
	}
}

func TestScheduleResolveInclusiveEdges(t *testing.T) {
	start := time.Date(2025, 5, 24, 11, 30, 0, 0, time.UTC)
	end := time.Date(2025, 5, 24, 16, 30, 0, 0, time.UTC)
	sched, err := NewSchedule([]MealWindow{{Slot: MealSatLunch, Start: start, End: end}})
	if err != nil {
		t.Fatalf("NewSchedule() error = %v", err)
	}

	for _, at := range []time.Time{start, start.Add(time.Hour), end} {
		slot, err := sched.Resolve(at)
		if err != nil {
			t.Fatalf("Resolve(%s) error = %v", at, err)
		}
		if slot != MealSatLunch {
			t.Fatalf("Resolve(%s) = %q", at, slot)
		}
	}
	if _, err := sched.Resolve(end.Add(time.Second)); !errors.Is(err, ErrNoMealWindow) {
		t.Fatalf("expected ErrNoMealWindow, got %v", err)
	}
}

func TestScheduleOverlapFirstMatchWins(t *testing.T) {
	day := time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC)
	sched, err := NewSchedule([]MealWindow{
		{Slot: MealMonBreakfast, Start: day.Add(6*time.Hour + 30*time.Minute), End: day.Add(9*time.Hour + 10*time.Minute)},
		{Slot: MealMonLunch, Start: day.Add(6*time.Hour + 10*time.Minute), End: day.Add(14*time.Hour + 30*time.Minute)},
	})
	if err != nil {
		t.Fatalf("NewSchedule() error = %v", err)
	}

	slot, err := sched.Resolve(day.Add(8 * time.Hour))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if slot != MealMonBreakfast {
		t.Fatalf("expected first declared window to win, got %q", slot)
	}
}

func TestScheduleValidation(t *testing.T) {
	now := time.Now()
	_, err := NewSchedule([]MealWindow{{Slot: "brunch", Start: now, End: now.Add(time.Hour)}})
	if !errors.Is(err, ErrUnknownMealSlot) {
		t.Fatalf("expected ErrUnknownMealSlot, got %v", err)
	}
	_, err = NewSchedule([]MealWindow{{Slot: MealSatLunch, Start: now, End: now}})
	if !errors.Is(err, ErrInvalidMealWindow) {
		t.Fatalf("expected ErrInvalidMealWindow, got %v", err)
	}
}

func TestLaneLabel(t *testing.T) {
	if got := LaneLabel(3); got != "custom lane 3" {
		t.Fatalf("LaneLabel(3) = %q", got)
	}
	if got := LaneLabel(9); got != "Vegan lane" {
		t.Fatalf("LaneLabel(9) = %q", got)
	}
	if got := LaneLabel(10); got != "VIP lane" {
		t.Fatalf("LaneLabel(10) = %q", got)
	}
	if got := LaneLabel(0); got != "fast lane" {
		t.Fatalf("LaneLabel(0) = %q", got)
	}
	if got := LaneLabel(42); got != "fast lane" {
		t.Fatalf("LaneLabel(42) = %q", got)
	}
}

func TestPermissionsRoundTrip(t *testing.T) {
	list := []string{PermScanOthersQR, PermApproveTshirt, PermFulfillJacket, "somethingElse"}
	p := PermissionsFromList(list)
	if !p.CanScanOthersQR || !p.CanApproveTshirt || !p.CanFulfillJacket {
		t.Fatalf("unexpected permissions %#v", p)
	}
	if p.CanApproveJacket || p.CanFulfillTshirt || p.CanApproveMultiple {
		t.Fatalf("unexpected permissions %#v", p)
	}
	got := PermissionsFromList(p.List())
	if got != p {
		t.Fatalf("round trip mismatch: %#v vs %#v", got, p)
	}
}

func TestPermissionsWireSpellings(t *testing.T) {
	// The ledger's exact permission strings; a drifted constant silently
	// strips the capability.
	cases := map[string]func(Permissions) bool{
		"canScanOthersQr":         func(p Permissions) bool { return p.CanScanOthersQR },
		"canApproveGiftTshirt":    func(p Permissions) bool { return p.CanApproveTshirt },
		"canApproveGiftJacket":    func(p Permissions) bool { return p.CanApproveJacket },
		"canFulfillGiftTshirt":    func(p Permissions) bool { return p.CanFulfillTshirt },
		"canFulfillGiftJacket":    func(p Permissions) bool { return p.CanFulfillJacket },
		"canApproveMultipleGifts": func(p Permissions) bool { return p.CanApproveMultiple },
	}
	for wire, isSet := range cases {
		if !isSet(PermissionsFromList([]string{wire})) {
			t.Errorf("expected %q to set its permission flag", wire)
		}
	}
}

func TestSessionDisplayName(t *testing.T) {
	s, err := NewSession(SessionInput{MemberID: "9001", LegalName: "John Doe", SpiritualName: "Jaya Das"})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if s.DisplayName() != "Jaya Das" {
		t.Fatalf("unexpected display name %q", s.DisplayName())
	}
	s.SpiritualName = ""
	if s.DisplayName() != "John Doe" {
		t.Fatalf("unexpected display name %q", s.DisplayName())
	}
	if _, err := NewSession(SessionInput{}); !errors.Is(err, ErrInvalidMemberID) {
		t.Fatalf("expected ErrInvalidMemberID, got %v", err)
	}
}

func TestValidMemberID(t *testing.T) {
	for _, id := range []string{"0", "1234", "12345", " 1234 "} {
		if !ValidMemberID(id) {
			t.Fatalf("expected %q valid", id)
		}
	}
	for _, id := range []string{"", "1", "123", "123456"} {
		if ValidMemberID(id) {
			t.Fatalf("expected %q invalid", id)
		}
	}
}

func TestNewTagRegistration(t *testing.T) {
	reg, err := NewTagRegistration(" TAG1 ", "1234", "9001")
	if err != nil {
		t.Fatalf("NewTagRegistration() error = %v", err)
	}
	if reg.TagID != "TAG1" || reg.MemberID != "1234" || reg.ScannerID != "9001" {
		t.Fatalf("unexpected registration %#v", reg)
	}
	if _, err := NewTagRegistration("", "1234", "9001"); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag, got %v", err)
	}
	if _, err := NewTagRegistration("TAG1", "123456", "9001"); !errors.Is(err, ErrInvalidMemberID) {
		t.Fatalf("expected ErrInvalidMemberID, got %v", err)
	}
	if _, err := NewTagRegistration("TAG1", "1234", ""); !errors.Is(err, ErrMissingActor) {
		t.Fatalf("expected ErrMissingActor, got %v", err)
	}
}

func TestMemberDisplayName(t *testing.T) {
	m := MemberDetails{LegalName: "John Doe"}
	if m.DisplayName() != "John Doe" {
		t.Fatalf("unexpected display name %q", m.DisplayName())
	}
	m.SpiritualName = "Jaya Das"
	if m.DisplayName() != "Jaya Das" {
		t.Fatalf("unexpected display name %q", m.DisplayName())
	}
}
