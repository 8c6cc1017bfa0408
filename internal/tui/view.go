package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/retreatworks/bandscan/internal/domain"
)

// helpMarkdown is the in-app usage guide rendered through glamour.
const helpMarkdown = `# bandscan

Check-in station client. The remote ledger is the source of truth: every
action fetches fresh counts, validates, submits, and refetches.

## Screens

- **m** meal scan: scan a tag; a green result means the meal was recorded,
  red means it was already taken this window. ` + "`a`" + ` adds anyway,
  ` + "`x`" + ` removes a mistaken add.
- **g** gifts: fetch a tag, pick T-Shirt/Jacket with ←/→, then
  ` + "`a`" + `pprove, ` + "`d`" + `isapprove, ` + "`f`" + `ulfill, or ` + "`u`" + `nfulfill.
- **s** services: fetch a tag, pick an option with ↑/↓, ` + "`a`" + ` acknowledges.
- **r** register: bind a tag to a member id (0 detaches, otherwise 4-5
  characters). ` + "`c`" + ` checks the current assignment.
- **t** stats: per-meal-window totals, ←/→ changes the window.

Press ` + "`esc`" + ` to go back, ` + "`L`" + ` to log out, ` + "`q`" + ` to quit.`

var (
	accentColor = lipgloss.Color("62")
	mutedColor  = lipgloss.Color("241")
	dimColor    = lipgloss.Color("239")
	validColor  = lipgloss.Color("40")
	errorColor  = lipgloss.Color("160")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	statusStyle = lipgloss.NewStyle().Foreground(dimColor)
	validStyle  = lipgloss.NewStyle().Bold(true).Foreground(validColor)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	labelStyle  = lipgloss.NewStyle().Foreground(accentColor)
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
)

// View handles view.
func (m Model) View() tea.View {
	if !m.ready {
		return newView("loading...")
	}

	var body string
	switch m.screen {
	case screenLogin:
		body = m.viewLogin()
	case screenHome:
		body = m.viewHome()
	case screenMeal:
		body = m.viewMeal()
	case screenGift:
		body = m.viewGift()
	case screenService:
		body = m.viewService()
	case screenRegister:
		body = m.viewRegister()
	case screenStats:
		body = m.viewStats()
	}

	sections := []string{m.viewHeader(), "", body}
	if m.qtyPrompt {
		sections = append(sections, "", m.viewQuantityPrompt())
	}
	sections = append(sections, "", m.viewStatus())
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := mutedStyle.
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		contentHeight := max(0, m.height-lipgloss.Height(helpLine))
		content = fitLines(content, contentHeight)
	}
	full := content + "\n" + helpLine

	if m.showHelp {
		full = m.md.render(helpMarkdown, max(24, m.width-8))
	}
	return newView(full)
}

func newView(content string) tea.View {
	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

func (m Model) viewHeader() string {
	header := titleStyle.Render("bandscan") + "  " + statusStyle.Render("["+m.screenLabel()+"]")
	if m.loggedIn {
		header += mutedStyle.Render("  operator: " + m.session.DisplayName())
	}
	return header
}

func (m Model) screenLabel() string {
	switch m.screen {
	case screenLogin:
		return "login"
	case screenMeal:
		return "meal"
	case screenGift:
		return "gifts"
	case screenService:
		return "services"
	case screenRegister:
		return "register"
	case screenStats:
		return "stats"
	default:
		return "home"
	}
}

func (m Model) viewStatus() string {
	status := m.status
	if m.busy {
		status = "working..."
	}
	if m.stale {
		status += "  (showing last known data)"
	}
	return statusStyle.Render(status)
}

func (m Model) viewLogin() string {
	lines := []string{
		"Scan your operator tag to log in.",
		"",
		m.tagInput.View(),
		m.memberInput.View(),
		"",
		mutedStyle.Render("tab switches fields, enter logs in"),
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewHome() string {
	lines := []string{
		"Pick a station:",
		"",
		"  " + labelStyle.Render("m") + "  meal scan",
		"  " + labelStyle.Render("g") + "  gift approval and fulfillment",
		"  " + labelStyle.Render("s") + "  service acknowledgment",
		"  " + labelStyle.Render("r") + "  tag registration",
		"  " + labelStyle.Render("t") + "  activity stats",
	}
	return strings.Join(lines, "\n")
}

// viewMemberCard renders the registration record shown after a fetch.
func viewMemberCard(member domain.MemberDetails) string {
	name := member.DisplayName()
	if strings.TrimSpace(name) == "" {
		name = "(unknown member)"
	}
	lines := []string{titleStyle.Render(name)}
	if member.RegistrationType != "" {
		lines = append(lines, mutedStyle.Render("registration: "+member.RegistrationType))
	}
	if member.MealOption != "" {
		lines = append(lines, mutedStyle.Render("meal option: "+member.MealOption))
	}
	if member.SPDisciple {
		lines = append(lines, mutedStyle.Render("SP disciple"))
	}
	for _, g := range member.GiftDetails {
		lines = append(lines, mutedStyle.Render(g.Name+": "+g.Status))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewMeal() string {
	lines := []string{m.tagInput.View(), ""}
	if !m.hasMeal {
		lines = append(lines, mutedStyle.Render("scan a tag to check the current meal window"))
		return strings.Join(lines, "\n")
	}

	a := m.meal.Assessment
	banner := errorStyle.Render(fmt.Sprintf("ALREADY TAKEN — %s (count %d)", a.Slot.Label(), a.Count))
	if a.Valid {
		banner = validStyle.Render("OK — " + a.Slot.Label() + " recorded")
	}
	lines = append(lines, banner, "", viewMemberCard(m.meal.Member))
	if !a.Valid {
		lines = append(lines, "", mutedStyle.Render("a adds anyway, x removes the recorded meal"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewGift() string {
	lines := []string{m.tagInput.View(), ""}
	if !m.hasGift {
		lines = append(lines, mutedStyle.Render("scan a tag to load gift status"))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, viewMemberCard(m.gift.Member), "")
	for i, cat := range giftCategoryOrder {
		counts, _ := m.gift.Counters.Counts(cat)
		marker := "  "
		style := mutedStyle
		if i == m.giftCursor {
			marker = "> "
			style = cursorStyle
		}
		lines = append(lines, style.Render(fmt.Sprintf(
			"%s%-8s approved %d, fulfilled %d, outstanding %d",
			marker, cat.Label(), counts.Approved, counts.Fulfilled, max(0, counts.Outstanding()),
		)))
	}
	lines = append(lines, "", mutedStyle.Render("←/→ pick a gift, then a/d/f/u"))
	return strings.Join(lines, "\n")
}

func (m Model) viewQuantityPrompt() string {
	prompt := fmt.Sprintf("%s %s (max %d)", m.pendingAction, m.pendingCategory.Label(), m.pendingMax)
	return labelStyle.Render(prompt) + "\n" + m.qtyInput.View()
}

func (m Model) viewService() string {
	lines := []string{m.tagInput.View(), ""}
	if !m.hasGift {
		lines = append(lines, mutedStyle.Render("scan a tag to load service options"))
		return strings.Join(lines, "\n")
	}
	if len(m.gift.Counters.Services) == 0 {
		lines = append(lines, mutedStyle.Render("no service options on this tag"))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, viewMemberCard(m.gift.Member), "")
	for i, opt := range m.gift.Counters.Services {
		marker := "  "
		style := mutedStyle
		if i == m.serviceCursor {
			marker = "> "
			style = cursorStyle
		}
		state := "signed up"
		if opt.Acknowledged {
			state = "acknowledged"
		}
		detail := opt.ServiceName
		if opt.DisplayKey != "" {
			detail += " — " + opt.DisplayKey + ": " + opt.DisplayValue
		}
		lines = append(lines, style.Render(marker+detail+"  ["+state+"]"))
	}
	lines = append(lines, "", mutedStyle.Render("↑/↓ pick an option, a acknowledges"))
	return strings.Join(lines, "\n")
}

func (m Model) viewRegister() string {
	lines := []string{
		m.tagInput.View(),
		m.memberInput.View(),
		"",
		mutedStyle.Render("member id 0 detaches the tag; otherwise 4-5 characters"),
	}
	if m.registerNote != "" {
		lines = append(lines, "", labelStyle.Render(m.registerNote))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewStats() string {
	slot := m.currentStatsSlot()
	lines := []string{
		labelStyle.Render("window: "+slot.Label()) + mutedStyle.Render("  (←/→ to change, enter refreshes)"),
		"",
	}
	if !m.hasStats {
		lines = append(lines, mutedStyle.Render("no stats yet"))
		return strings.Join(lines, "\n")
	}
	if len(m.statsRows) == 0 {
		lines = append(lines, mutedStyle.Render("no rows for this window"))
		return strings.Join(lines, "\n")
	}
	for _, row := range m.statsRows {
		lines = append(lines, titleStyle.Render(row.ActivityName))
		for _, f := range row.Fields {
			lines = append(lines, mutedStyle.Render("  "+f.Key+": "+f.Value))
		}
	}
	return strings.Join(lines, "\n")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) <= maxLines {
		return content
	}
	return strings.Join(lines[:maxLines], "\n")
}
