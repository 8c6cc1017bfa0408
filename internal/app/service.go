package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/retreatworks/bandscan/internal/domain"
)

// IDGenerator returns unique identifiers for new requests.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	EventID string
}

// Service coordinates scans against the remote ledger: it fetches fresh
// counters, runs eligibility, submits updates, and refetches so displayed
// state always comes from the ledger rather than an optimistic guess.
type Service struct {
	gateway  Gateway
	store    SessionStore
	schedule domain.Schedule
	idGen    IDGenerator
	clock    Clock
	eventID  string

	mu       sync.Mutex
	inFlight bool
	session  domain.Session
	loggedIn bool
}

// NewService constructs a new value for this package.
func NewService(gateway Gateway, store SessionStore, schedule domain.Schedule, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		gateway:  gateway,
		store:    store,
		schedule: schedule,
		idGen:    idGen,
		clock:    clock,
		eventID:  cfg.EventID,
	}
}

// begin claims the single submission slot. Every fetch-then-submit flow holds
// it so a second scan cannot interleave with an unresolved one.
func (s *Service) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrBusy
	}
	s.inFlight = true
	return nil
}

func (s *Service) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// Busy reports whether a fetch-then-submit flow is currently unresolved.
func (s *Service) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Login authenticates the operator's own tag against the ledger and persists
// the resulting session.
func (s *Service) Login(ctx context.Context, tagID, memberID string) (domain.Session, error) {
	if err := s.begin(); err != nil {
		return domain.Session{}, err
	}
	defer s.end()

	session, err := s.gateway.LoginScanner(ctx, tagID, memberID, s.eventID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.session = session
	s.loggedIn = true
	s.mu.Unlock()
	return session, nil
}

// RestoreSession loads a previously persisted session, if any.
func (s *Service) RestoreSession(ctx context.Context) (domain.Session, bool, error) {
	session, ok, err := s.store.LoadSession(ctx)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return domain.Session{}, false, nil
	}

	s.mu.Lock()
	s.session = session
	s.loggedIn = true
	s.mu.Unlock()
	return session, true, nil
}

// CurrentSession returns the active operator session.
func (s *Service) CurrentSession() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.loggedIn
}

// Logout clears the persisted session.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.mu.Lock()
	s.session = domain.Session{}
	s.loggedIn = false
	s.mu.Unlock()
	return nil
}

func (s *Service) requireSession() (domain.Session, error) {
	session, ok := s.CurrentSession()
	if !ok {
		return domain.Session{}, ErrNotLoggedIn
	}
	return session, nil
}

// MealScanResult holds the outcome of a meal-lane scan.
type MealScanResult struct {
	Member     domain.MemberDetails
	Assessment domain.MealAssessment
	AutoAdded  bool
	Counters   domain.ActivityCounters
}

// BeginMealScan resolves the active meal window, fetches the tag's count for
// it, and when the tag has not eaten yet records the meal and refetches. The
// returned assessment reflects the count as fetched, before any auto add.
func (s *Service) BeginMealScan(ctx context.Context, tagID string, laneCode int) (MealScanResult, error) {
	session, err := s.requireSession()
	if err != nil {
		return MealScanResult{}, err
	}
	slot, err := s.schedule.Resolve(s.clock())
	if err != nil {
		return MealScanResult{}, err
	}
	if err := s.begin(); err != nil {
		return MealScanResult{}, err
	}
	defer s.end()

	snap, err := s.gateway.MemberActivity(ctx, ActivityQuery{TagID: tagID, Activity: string(slot)})
	if err != nil {
		return MealScanResult{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	result := MealScanResult{
		Member:     snap.Member,
		Assessment: domain.AssessMeal(slot, snap.Counters.MealCount()),
		Counters:   snap.Counters,
	}
	if !result.Assessment.AutoAdd {
		return result, nil
	}

	req, err := domain.BuildUpdateRequest(domain.UpdateRequestInput{
		ClientRequestID: s.idGen(),
		TagID:           snap.Counters.TagID,
		MemberID:        snap.Member.MemberID,
		ScannerID:       session.MemberID,
		Action:          domain.ActionAdd,
		Category:        domain.CategoryMeal,
		MealSlot:        slot,
		Location:        domain.LaneLabel(laneCode),
	})
	if err != nil {
		return MealScanResult{}, err
	}
	if err := s.gateway.SubmitActivity(ctx, req); err != nil {
		return MealScanResult{}, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	snap, err = s.gateway.MemberActivity(ctx, ActivityQuery{TagID: tagID, Activity: string(slot)})
	if err != nil {
		return MealScanResult{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	result.AutoAdded = true
	result.Counters = snap.Counters
	return result, nil
}

// AdjustMeal applies a manual add or remove for the active meal window.
func (s *Service) AdjustMeal(ctx context.Context, tagID string, action domain.Action, laneCode int) (MealScanResult, error) {
	session, err := s.requireSession()
	if err != nil {
		return MealScanResult{}, err
	}
	slot, err := s.schedule.Resolve(s.clock())
	if err != nil {
		return MealScanResult{}, err
	}
	if err := s.begin(); err != nil {
		return MealScanResult{}, err
	}
	defer s.end()

	req, err := domain.BuildUpdateRequest(domain.UpdateRequestInput{
		ClientRequestID: s.idGen(),
		TagID:           tagID,
		ScannerID:       session.MemberID,
		Action:          action,
		Category:        domain.CategoryMeal,
		MealSlot:        slot,
		Location:        domain.LaneLabel(laneCode),
	})
	if err != nil {
		return MealScanResult{}, err
	}
	if err := s.gateway.SubmitActivity(ctx, req); err != nil {
		return MealScanResult{}, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	snap, err := s.gateway.MemberActivity(ctx, ActivityQuery{TagID: tagID, Activity: string(slot)})
	if err != nil {
		return MealScanResult{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return MealScanResult{
		Member:     snap.Member,
		Assessment: domain.AssessMeal(slot, snap.Counters.MealCount()),
		Counters:   snap.Counters,
	}, nil
}

// GiftStatus holds a tag's member record and gift counters.
type GiftStatus struct {
	Member   domain.MemberDetails
	Counters domain.ActivityCounters
}

// FetchGiftStatus fetches the tag's gift counters and caches any service
// options carried on the snapshot.
func (s *Service) FetchGiftStatus(ctx context.Context, tagID string) (GiftStatus, error) {
	if _, err := s.requireSession(); err != nil {
		return GiftStatus{}, err
	}
	if err := s.begin(); err != nil {
		return GiftStatus{}, err
	}
	defer s.end()
	return s.fetchGiftStatus(ctx, tagID)
}

func (s *Service) fetchGiftStatus(ctx context.Context, tagID string) (GiftStatus, error) {
	snap, err := s.gateway.MemberActivity(ctx, ActivityQuery{
		TagID:    tagID,
		Activity: domain.ActivityGiftApproval,
		Category: domain.WireCategoryGiftTracking,
	})
	if err != nil {
		return GiftStatus{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if len(snap.Counters.Services) > 0 {
		if err := s.store.SaveServiceOptions(ctx, snap.Counters.Services); err != nil {
			return GiftStatus{}, fmt.Errorf("cache service options: %w", err)
		}
	}
	return GiftStatus{Member: snap.Member, Counters: snap.Counters}, nil
}

// ProposeGiftAction runs the eligibility pre-check used to gate the UI. The
// authoritative decision happens again in ConfirmGiftAction against fresh
// counters.
func (s *Service) ProposeGiftAction(action domain.Action, cat domain.Category, counters domain.ActivityCounters) (domain.EligibilityResult, error) {
	session, err := s.requireSession()
	if err != nil {
		return domain.EligibilityResult{}, err
	}
	return domain.Eligibility(action, cat, counters, session.Permissions), nil
}

// ConfirmGiftInput holds input values for confirm gift operations.
type ConfirmGiftInput struct {
	TagID    string
	Action   domain.Action
	Category domain.Category
	Quantity int
}

// ConfirmGiftAction refetches the tag's counters, re-validates the action and
// quantity against them, submits the update, and refetches once more. The
// counters in the returned status are always the ledger's answer, never a
// local projection.
func (s *Service) ConfirmGiftAction(ctx context.Context, in ConfirmGiftInput) (GiftStatus, error) {
	session, err := s.requireSession()
	if err != nil {
		return GiftStatus{}, err
	}
	if err := s.begin(); err != nil {
		return GiftStatus{}, err
	}
	defer s.end()

	status, err := s.fetchGiftStatus(ctx, in.TagID)
	if err != nil {
		return GiftStatus{}, err
	}
	if err := domain.ValidateQuantity(in.Action, in.Category, status.Counters, session.Permissions, in.Quantity); err != nil {
		return status, err
	}

	req, err := domain.BuildUpdateRequest(domain.UpdateRequestInput{
		ClientRequestID: s.idGen(),
		TagID:           status.Counters.TagID,
		MemberID:        status.Member.MemberID,
		ScannerID:       session.MemberID,
		Action:          in.Action,
		Category:        in.Category,
		Quantity:        in.Quantity,
	})
	if err != nil {
		return status, err
	}
	if err := s.gateway.SubmitActivity(ctx, req); err != nil {
		return status, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	return s.fetchGiftStatus(ctx, in.TagID)
}

// ServiceOptions returns the locally cached service options.
func (s *Service) ServiceOptions(ctx context.Context) ([]domain.ServiceOption, error) {
	opts, err := s.store.LoadServiceOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load service options: %w", err)
	}
	return opts, nil
}

// AcknowledgeService refetches the tag, checks the option is still
// acknowledgeable, submits the acknowledgment, and refetches.
func (s *Service) AcknowledgeService(ctx context.Context, tagID, optionID string) (GiftStatus, error) {
	session, err := s.requireSession()
	if err != nil {
		return GiftStatus{}, err
	}
	if err := s.begin(); err != nil {
		return GiftStatus{}, err
	}
	defer s.end()

	status, err := s.fetchGiftStatus(ctx, tagID)
	if err != nil {
		return GiftStatus{}, err
	}
	if res := domain.ServiceEligibility(status.Counters, optionID); !res.Allowed {
		return status, fmt.Errorf("%w: %s", domain.ErrIneligibleAction, res.Reason)
	}

	req, err := domain.BuildUpdateRequest(domain.UpdateRequestInput{
		ClientRequestID: s.idGen(),
		TagID:           status.Counters.TagID,
		MemberID:        status.Member.MemberID,
		ScannerID:       session.MemberID,
		Action:          domain.ActionAcknowledge,
		Category:        domain.CategoryService,
		ServiceOptionID: optionID,
	})
	if err != nil {
		return status, err
	}
	if err := s.gateway.SubmitActivity(ctx, req); err != nil {
		return status, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	return s.fetchGiftStatus(ctx, tagID)
}

// RegisterTag binds a tag to a member id after the plausibility check.
func (s *Service) RegisterTag(ctx context.Context, tagID, memberID string) (string, error) {
	session, err := s.requireSession()
	if err != nil {
		return "", err
	}
	reg, err := domain.NewTagRegistration(tagID, memberID, session.MemberID)
	if err != nil {
		return "", err
	}
	if err := s.begin(); err != nil {
		return "", err
	}
	defer s.end()

	msg, err := s.gateway.RegisterTag(ctx, reg)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	return msg, nil
}

// CheckTag looks up a tag's current member assignment.
func (s *Service) CheckTag(ctx context.Context, tagID string) (Snapshot, error) {
	if _, err := s.requireSession(); err != nil {
		return Snapshot{}, err
	}
	snap, err := s.gateway.MemberActivity(ctx, ActivityQuery{TagID: tagID, Activity: domain.ActivityRegCheck})
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return snap, nil
}

// ActivityStats fetches per-activity aggregate rows for the operator.
func (s *Service) ActivityStats(ctx context.Context, activity string) ([]StatsRow, error) {
	session, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	rows, err := s.gateway.ActivityStats(ctx, session.MemberID, activity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return rows, nil
}
