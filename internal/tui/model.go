package tui

import (
	"context"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/retreatworks/bandscan/internal/app"
	"github.com/retreatworks/bandscan/internal/domain"
)

// Service represents service data used by this package.
type Service interface {
	Login(context.Context, string, string) (domain.Session, error)
	RestoreSession(context.Context) (domain.Session, bool, error)
	CurrentSession() (domain.Session, bool)
	Logout(context.Context) error
	BeginMealScan(context.Context, string, int) (app.MealScanResult, error)
	AdjustMeal(context.Context, string, domain.Action, int) (app.MealScanResult, error)
	FetchGiftStatus(context.Context, string) (app.GiftStatus, error)
	ProposeGiftAction(domain.Action, domain.Category, domain.ActivityCounters) (domain.EligibilityResult, error)
	ConfirmGiftAction(context.Context, app.ConfirmGiftInput) (app.GiftStatus, error)
	AcknowledgeService(context.Context, string, string) (app.GiftStatus, error)
	RegisterTag(context.Context, string, string) (string, error)
	CheckTag(context.Context, string) (app.Snapshot, error)
	ActivityStats(context.Context, string) ([]app.StatsRow, error)
}

// screen represents a selectable screen.
type screen int

// screenLogin and related constants define package defaults.
const (
	screenLogin screen = iota
	screenHome
	screenMeal
	screenGift
	screenService
	screenRegister
	screenStats
)

// giftCategoryOrder fixes the gift column order on the gift screen.
var giftCategoryOrder = []domain.Category{domain.CategoryGiftTshirt, domain.CategoryGiftJacket}

// sessionMsg carries message data through update handling.
type sessionMsg struct {
	session  domain.Session
	ok       bool
	restored bool
	err      error
}

// logoutMsg carries message data through update handling.
type logoutMsg struct {
	err error
}

// mealMsg carries message data through update handling.
type mealMsg struct {
	result app.MealScanResult
	err    error
}

// giftMsg carries message data through update handling.
type giftMsg struct {
	status app.GiftStatus
	err    error
}

// registerDoneMsg carries message data through update handling.
type registerDoneMsg struct {
	message string
	err     error
}

// checkTagMsg carries the current assignment for a checked tag.
type checkTagMsg struct {
	snapshot app.Snapshot
	err      error
}

// statsMsg carries message data through update handling.
type statsMsg struct {
	rows []app.StatsRow
	err  error
}

// Model represents model data used by this package.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error

	status   string
	stale    bool
	busy     bool
	showHelp bool

	help help.Model
	keys keyMap
	md   helpRenderer

	screen   screen
	session  domain.Session
	loggedIn bool
	laneCode int

	tagInput    textinput.Model
	memberInput textinput.Model
	qtyInput    textinput.Model
	loginFocus  int

	qtyPrompt       bool
	pendingAction   domain.Action
	pendingCategory domain.Category
	pendingTagID    string
	pendingMax      int

	giftCursor int

	meal    app.MealScanResult
	hasMeal bool
	gift    app.GiftStatus
	hasGift bool

	serviceCursor int

	statsRows []app.StatsRow
	statsSlot int
	hasStats  bool

	registerNote string
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false

	tagInput := textinput.New()
	tagInput.Prompt = "tag: "
	tagInput.Placeholder = "scan or type a tag id"
	tagInput.CharLimit = 64

	memberInput := textinput.New()
	memberInput.Prompt = "member: "
	memberInput.Placeholder = "member id"
	memberInput.CharLimit = 16

	qtyInput := textinput.New()
	qtyInput.Prompt = "quantity: "
	qtyInput.CharLimit = 4

	m := Model{
		svc:         svc,
		status:      "restoring session...",
		help:        h,
		keys:        newKeyMap(),
		screen:      screenLogin,
		tagInput:    tagInput,
		memberInput: memberInput,
		qtyInput:    qtyInput,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.restoreSession, m.tagInput.Focus())
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		if !msg.ok {
			m.status = "scan your operator tag to log in"
			return m, nil
		}
		m.session = msg.session
		m.loggedIn = true
		m.screen = screenHome
		m.err = nil
		if msg.restored {
			m.status = "session restored for " + m.session.DisplayName()
		} else {
			m.status = "logged in as " + m.session.DisplayName()
		}
		return m, m.resetInputs()

	case logoutMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.loggedIn = false
		m.session = domain.Session{}
		m.screen = screenLogin
		m.status = "logged out"
		return m, m.resetInputs()

	case mealMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
			m.stale = m.hasMeal
			return m, nil
		}
		m.meal = msg.result
		m.hasMeal = true
		m.stale = false
		if msg.result.AutoAdded {
			m.status = "meal recorded"
		} else if !msg.result.Assessment.Valid {
			m.status = "meal already taken this window"
		} else {
			m.status = "ready"
		}
		return m, nil

	case giftMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
			m.stale = m.hasGift
			return m, nil
		}
		m.gift = msg.status
		m.hasGift = true
		m.stale = false
		m.serviceCursor = clamp(m.serviceCursor, 0, len(m.gift.Counters.Services)-1)
		m.status = "ready"
		return m, nil

	case registerDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.registerNote = msg.message
		m.status = "tag registered"
		return m, nil

	case checkTagMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		name := msg.snapshot.Member.DisplayName()
		if strings.TrimSpace(name) == "" {
			m.registerNote = "tag is not assigned yet"
		} else {
			m.registerNote = "tag is assigned to " + name
		}
		m.status = "ready"
		return m, nil

	case statsMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
			m.stale = m.hasStats
			return m, nil
		}
		m.statsRows = msg.rows
		m.hasStats = true
		m.stale = false
		m.status = "ready"
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	default:
		return m, nil
	}
}

// handleKey routes one key press by screen and prompt state.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.qtyPrompt {
		return m.handleQuantityKey(msg)
	}

	switch m.screen {
	case screenLogin:
		return m.handleLoginKey(msg)
	case screenHome:
		return m.handleHomeKey(msg)
	case screenMeal:
		return m.handleMealKey(msg)
	case screenGift:
		return m.handleGiftKey(msg)
	case screenService:
		return m.handleServiceKey(msg)
	case screenRegister:
		return m.handleRegisterKey(msg)
	case screenStats:
		return m.handleStatsKey(msg)
	default:
		return m, nil
	}
}

func (m Model) handleLoginKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit) && m.tagInput.Value() == "" && m.memberInput.Value() == "":
		return m, tea.Quit
	case key.Matches(msg, m.keys.nextField):
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.tagInput.Blur()
			return m, m.memberInput.Focus()
		}
		m.loginFocus = 0
		m.memberInput.Blur()
		return m, m.tagInput.Focus()
	case key.Matches(msg, m.keys.submit):
		if m.busy {
			return m, nil
		}
		tagID := strings.TrimSpace(m.tagInput.Value())
		memberID := strings.TrimSpace(m.memberInput.Value())
		if tagID == "" {
			m.status = "tag id is required"
			return m, nil
		}
		m.busy = true
		m.status = "logging in..."
		return m, m.loginCmd(tagID, memberID)
	}
	return m.updateFocusedInput(msg)
}

func (m Model) handleHomeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.logout):
		m.busy = true
		return m, m.logoutCmd
	case key.Matches(msg, m.keys.meal):
		return m.switchScreen(screenMeal)
	case key.Matches(msg, m.keys.gifts):
		return m.switchScreen(screenGift)
	case key.Matches(msg, m.keys.services):
		return m.switchScreen(screenService)
	case key.Matches(msg, m.keys.register):
		return m.switchScreen(screenRegister)
	case key.Matches(msg, m.keys.stats):
		return m.switchScreen(screenStats)
	}
	return m, nil
}

// switchScreen resets per-screen state and focuses the tag input.
func (m Model) switchScreen(s screen) (tea.Model, tea.Cmd) {
	m.screen = s
	m.status = "ready"
	m.stale = false
	m.registerNote = ""
	if s == screenStats {
		m.busy = true
		m.status = "fetching stats..."
		return m, m.statsCmd(m.currentStatsSlot())
	}
	return m, m.resetInputs()
}

func (m Model) handleMealKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		return m.backHome()
	case key.Matches(msg, m.keys.toggleHelp) && m.tagInput.Value() == "":
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.submit):
		if m.busy {
			return m, nil
		}
		tagID := strings.TrimSpace(m.tagInput.Value())
		if tagID == "" {
			m.status = "tag id is required"
			return m, nil
		}
		m.busy = true
		m.status = "scanning..."
		return m, m.mealScanCmd(tagID)
	case key.Matches(msg, m.keys.addMeal) && m.hasMeal && m.tagInput.Value() == "":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = "adding meal..."
		return m, m.adjustMealCmd(m.meal.Counters.TagID, domain.ActionAdd)
	case key.Matches(msg, m.keys.removeMeal) && m.hasMeal && m.tagInput.Value() == "":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = "removing meal..."
		return m, m.adjustMealCmd(m.meal.Counters.TagID, domain.ActionRemove)
	}
	return m.updateTagInput(msg)
}

func (m Model) handleGiftKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		return m.backHome()
	case key.Matches(msg, m.keys.toggleHelp) && m.tagInput.Value() == "":
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.submit):
		if m.busy {
			return m, nil
		}
		tagID := strings.TrimSpace(m.tagInput.Value())
		if tagID == "" {
			m.status = "tag id is required"
			return m, nil
		}
		m.busy = true
		m.status = "fetching..."
		return m, m.giftFetchCmd(tagID)
	case key.Matches(msg, m.keys.left):
		m.giftCursor = clamp(m.giftCursor-1, 0, len(giftCategoryOrder)-1)
		return m, nil
	case key.Matches(msg, m.keys.right):
		m.giftCursor = clamp(m.giftCursor+1, 0, len(giftCategoryOrder)-1)
		return m, nil
	case m.hasGift && m.tagInput.Value() == "" && key.Matches(msg, m.keys.approve):
		return m.proposeGift(domain.ActionApprove)
	case m.hasGift && m.tagInput.Value() == "" && key.Matches(msg, m.keys.disapprove):
		return m.proposeGift(domain.ActionDisapprove)
	case m.hasGift && m.tagInput.Value() == "" && key.Matches(msg, m.keys.fulfill):
		return m.proposeGift(domain.ActionFulfill)
	case m.hasGift && m.tagInput.Value() == "" && key.Matches(msg, m.keys.unfulfill):
		return m.proposeGift(domain.ActionUnfulfill)
	}
	return m.updateTagInput(msg)
}

// proposeGift runs the UI pre-check and opens the quantity prompt when the
// action allows more than one unit. The authoritative re-check happens in the
// coordinator on confirm.
func (m Model) proposeGift(action domain.Action) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	cat := giftCategoryOrder[clamp(m.giftCursor, 0, len(giftCategoryOrder)-1)]
	res, err := m.svc.ProposeGiftAction(action, cat, m.gift.Counters)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	if !res.Allowed {
		m.status = res.Reason
		return m, nil
	}
	if res.MaxQuantity <= 1 {
		m.busy = true
		m.status = "submitting..."
		return m, m.confirmGiftCmd(app.ConfirmGiftInput{
			TagID:    m.gift.Counters.TagID,
			Action:   action,
			Category: cat,
			Quantity: 1,
		})
	}
	m.qtyPrompt = true
	m.pendingAction = action
	m.pendingCategory = cat
	m.pendingTagID = m.gift.Counters.TagID
	m.pendingMax = res.MaxQuantity
	m.qtyInput.SetValue("1")
	return m, m.qtyInput.Focus()
}

func (m Model) handleQuantityKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.qtyPrompt = false
		m.qtyInput.Blur()
		m.status = "ready"
		return m, nil
	case key.Matches(msg, m.keys.submit):
		qty, err := strconv.Atoi(strings.TrimSpace(m.qtyInput.Value()))
		if err != nil || qty < 1 {
			m.status = "enter a quantity of at least 1"
			return m, nil
		}
		if qty > m.pendingMax {
			m.status = "at most " + strconv.Itoa(m.pendingMax) + " allowed"
			return m, nil
		}
		m.qtyPrompt = false
		m.qtyInput.Blur()
		m.busy = true
		m.status = "submitting..."
		return m, m.confirmGiftCmd(app.ConfirmGiftInput{
			TagID:    m.pendingTagID,
			Action:   m.pendingAction,
			Category: m.pendingCategory,
			Quantity: qty,
		})
	}
	var cmd tea.Cmd
	m.qtyInput, cmd = m.qtyInput.Update(msg)
	return m, cmd
}

func (m Model) handleServiceKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		return m.backHome()
	case key.Matches(msg, m.keys.toggleHelp) && m.tagInput.Value() == "":
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.submit):
		if m.busy {
			return m, nil
		}
		tagID := strings.TrimSpace(m.tagInput.Value())
		if tagID == "" {
			m.status = "tag id is required"
			return m, nil
		}
		m.busy = true
		m.status = "fetching..."
		return m, m.giftFetchCmd(tagID)
	case key.Matches(msg, m.keys.up):
		m.serviceCursor = clamp(m.serviceCursor-1, 0, len(m.gift.Counters.Services)-1)
		return m, nil
	case key.Matches(msg, m.keys.down):
		m.serviceCursor = clamp(m.serviceCursor+1, 0, len(m.gift.Counters.Services)-1)
		return m, nil
	case m.hasGift && m.tagInput.Value() == "" && key.Matches(msg, m.keys.ack):
		if m.busy || len(m.gift.Counters.Services) == 0 {
			return m, nil
		}
		opt := m.gift.Counters.Services[clamp(m.serviceCursor, 0, len(m.gift.Counters.Services)-1)]
		m.busy = true
		m.status = "acknowledging..."
		return m, m.ackServiceCmd(m.gift.Counters.TagID, opt.ID)
	}
	return m.updateTagInput(msg)
}

func (m Model) handleRegisterKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		return m.backHome()
	case key.Matches(msg, m.keys.nextField):
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.tagInput.Blur()
			return m, m.memberInput.Focus()
		}
		m.loginFocus = 0
		m.memberInput.Blur()
		return m, m.tagInput.Focus()
	case key.Matches(msg, m.keys.checkTag) && m.tagInput.Value() != "" && m.loginFocus == 1 && m.memberInput.Value() == "":
		// "c" while the member field is empty checks the current assignment.
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = "checking..."
		return m, m.checkTagCmd(strings.TrimSpace(m.tagInput.Value()))
	case key.Matches(msg, m.keys.submit):
		if m.busy {
			return m, nil
		}
		tagID := strings.TrimSpace(m.tagInput.Value())
		memberID := strings.TrimSpace(m.memberInput.Value())
		if tagID == "" {
			m.status = "tag id is required"
			return m, nil
		}
		if !domain.ValidMemberID(memberID) {
			m.status = "member id must be 0 or 4-5 characters"
			return m, nil
		}
		m.busy = true
		m.status = "registering..."
		return m, m.registerCmd(tagID, memberID)
	}
	return m.updateFocusedInput(msg)
}

func (m Model) handleStatsKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		return m.backHome()
	case key.Matches(msg, m.keys.toggleHelp):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.left):
		m.statsSlot = clamp(m.statsSlot-1, 0, len(domain.MealSlots())-1)
		m.busy = true
		m.status = "fetching stats..."
		return m, m.statsCmd(m.currentStatsSlot())
	case key.Matches(msg, m.keys.right):
		m.statsSlot = clamp(m.statsSlot+1, 0, len(domain.MealSlots())-1)
		m.busy = true
		m.status = "fetching stats..."
		return m, m.statsCmd(m.currentStatsSlot())
	case key.Matches(msg, m.keys.submit):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = "fetching stats..."
		return m, m.statsCmd(m.currentStatsSlot())
	}
	return m, nil
}

func (m Model) currentStatsSlot() domain.MealSlot {
	slots := domain.MealSlots()
	return slots[clamp(m.statsSlot, 0, len(slots)-1)]
}

func (m Model) backHome() (tea.Model, tea.Cmd) {
	m.screen = screenHome
	m.status = "ready"
	m.stale = false
	return m, m.resetInputs()
}

// resetInputs clears and refocuses the shared text inputs for a new screen.
func (m *Model) resetInputs() tea.Cmd {
	m.tagInput.SetValue("")
	m.memberInput.SetValue("")
	m.memberInput.Blur()
	m.loginFocus = 0
	return m.tagInput.Focus()
}

func (m Model) updateTagInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.tagInput, cmd = m.tagInput.Update(msg)
	return m, cmd
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.tagInput, cmd = m.tagInput.Update(msg)
	} else {
		m.memberInput, cmd = m.memberInput.Update(msg)
	}
	return m, cmd
}

func (m Model) restoreSession() tea.Msg {
	session, ok, err := m.svc.RestoreSession(context.Background())
	return sessionMsg{session: session, ok: ok, restored: ok, err: err}
}

func (m Model) loginCmd(tagID, memberID string) tea.Cmd {
	return func() tea.Msg {
		session, err := m.svc.Login(context.Background(), tagID, memberID)
		return sessionMsg{session: session, ok: err == nil, err: err}
	}
}

func (m Model) logoutCmd() tea.Msg {
	return logoutMsg{err: m.svc.Logout(context.Background())}
}

func (m Model) mealScanCmd(tagID string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.svc.BeginMealScan(context.Background(), tagID, m.laneCode)
		return mealMsg{result: result, err: err}
	}
}

func (m Model) adjustMealCmd(tagID string, action domain.Action) tea.Cmd {
	return func() tea.Msg {
		result, err := m.svc.AdjustMeal(context.Background(), tagID, action, m.laneCode)
		return mealMsg{result: result, err: err}
	}
}

func (m Model) giftFetchCmd(tagID string) tea.Cmd {
	return func() tea.Msg {
		status, err := m.svc.FetchGiftStatus(context.Background(), tagID)
		return giftMsg{status: status, err: err}
	}
}

func (m Model) confirmGiftCmd(in app.ConfirmGiftInput) tea.Cmd {
	return func() tea.Msg {
		status, err := m.svc.ConfirmGiftAction(context.Background(), in)
		return giftMsg{status: status, err: err}
	}
}

func (m Model) ackServiceCmd(tagID, optionID string) tea.Cmd {
	return func() tea.Msg {
		status, err := m.svc.AcknowledgeService(context.Background(), tagID, optionID)
		return giftMsg{status: status, err: err}
	}
}

func (m Model) registerCmd(tagID, memberID string) tea.Cmd {
	return func() tea.Msg {
		message, err := m.svc.RegisterTag(context.Background(), tagID, memberID)
		return registerDoneMsg{message: message, err: err}
	}
}

func (m Model) checkTagCmd(tagID string) tea.Cmd {
	return func() tea.Msg {
		snapshot, err := m.svc.CheckTag(context.Background(), tagID)
		return checkTagMsg{snapshot: snapshot, err: err}
	}
}

func (m Model) statsCmd(slot domain.MealSlot) tea.Cmd {
	return func() tea.Msg {
		rows, err := m.svc.ActivityStats(context.Background(), string(slot))
		return statsMsg{rows: rows, err: err}
	}
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
