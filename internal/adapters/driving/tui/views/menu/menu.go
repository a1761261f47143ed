// Package menu is the landing view of the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Quit items end the program instead of switching view.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// View lists the top-level views. Entries are chosen with j/k and enter
// or directly with their number.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates the menu.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		items: []Item{
			{Label: "Find a supplier", Hint: "Describe a job and get ranked suppliers", View: messages.ViewSearch},
			{Label: "Roles", Hint: "Browse the trades suppliers are filed under", View: messages.ViewRoles},
			{Label: "Settings", Hint: "Providers, fusion strategy and passage store", View: messages.ViewSettings},
			{Label: "Help", Hint: "Key bindings", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the selection and emits ViewChanged on choice.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch k := msg.String(); k {
		case "up", "k":
			v.selected = max(v.selected-1, 0)
		case "down", "j":
			v.selected = min(v.selected+1, len(v.items)-1)
		case "enter":
			return v, v.choose()
		case "q":
			return v, tea.Quit
		default:
			if len(k) == 1 && k[0] >= '1' && int(k[0]-'0') <= len(v.items) {
				v.selected = int(k[0] - '1')
				return v, v.choose()
			}
		}
	}
	return v, nil
}

func (v *View) choose() tea.Cmd {
	item := v.items[v.selected]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("tradematch") + "\n\n")
	b.WriteString(v.styles.Muted.Render("Match requests to local suppliers") + "\n\n")

	for i, item := range v.items {
		line := fmt.Sprintf("%d. %s", i+1, item.Label)
		if i == v.selected {
			b.WriteString("> " + v.styles.Subtitle.Render(line) + "\n")
			continue
		}
		b.WriteString("  " + v.styles.Normal.Render(line) + "\n")
	}

	if hint := v.items[v.selected].Hint; hint != "" {
		b.WriteString("\n" + v.styles.Muted.Render(hint) + "\n")
	}
	b.WriteString("\n" + v.styles.Help.Render("[j/k] Navigate  [1-5] Jump  [Enter] Select  [q] Quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the highlighted index.
func (v *View) Selected() int {
	return v.selected
}
