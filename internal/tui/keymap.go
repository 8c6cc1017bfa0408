package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	toggleHelp key.Binding
	back       key.Binding
	submit     key.Binding
	meal       key.Binding
	gifts      key.Binding
	services   key.Binding
	register   key.Binding
	stats      key.Binding
	logout     key.Binding
	approve    key.Binding
	disapprove key.Binding
	fulfill    key.Binding
	unfulfill  key.Binding
	addMeal    key.Binding
	removeMeal key.Binding
	ack        key.Binding
	checkTag   key.Binding
	left       key.Binding
	right      key.Binding
	up         key.Binding
	down       key.Binding
	nextField  key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		meal:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "meal scan")),
		gifts:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "gifts")),
		services:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "services")),
		register:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "register tag")),
		stats:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "stats")),
		logout:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		approve:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
		disapprove: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "disapprove")),
		fulfill:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fulfill")),
		unfulfill:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unfulfill")),
		addMeal:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "manual add")),
		removeMeal: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "manual remove")),
		ack:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "acknowledge")),
		checkTag:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "check tag")),
		left:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "prev")),
		right:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next")),
		up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		nextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.meal, k.gifts, k.services, k.register, k.stats, k.toggleHelp, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.meal, k.gifts, k.services, k.register, k.stats, k.logout, k.toggleHelp, k.quit},
		{k.submit, k.back, k.left, k.right, k.up, k.down, k.nextField},
		{k.approve, k.disapprove, k.fulfill, k.unfulfill, k.addMeal, k.removeMeal, k.checkTag},
	}
}
