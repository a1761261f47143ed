// Package roles provides the role catalogue view for the TUI.
package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driving"
)

// ErrNoDirectory is reported when the view has no directory service.
var ErrNoDirectory = errors.New("directory service not available")

// View lists the roles suppliers can be routed to.
type View struct {
	styles    *styles.Styles
	directory driving.DirectoryService

	roles    []domain.Role
	selected int
	width    int
	height   int
	ready    bool
	err      error
	loading  bool
}

// NewView creates a new roles view.
func NewView(s *styles.Styles, directory driving.DirectoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:    s,
		directory: directory,
		width:     80,
		height:    24,
	}
}

// Init loads the roles.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadRoles()
}

// loadRoles returns a command that fetches roles from the directory.
func (v *View) loadRoles() tea.Cmd {
	directory := v.directory
	return func() tea.Msg {
		if directory == nil {
			return messages.RolesLoaded{Err: ErrNoDirectory}
		}
		roles, err := directory.ListRoles(context.Background())
		return messages.RolesLoaded{Roles: roles, Err: err}
	}
}

// Update handles messages for the roles view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.RolesLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.roles = msg.Roles
		v.err = nil
		if v.selected >= len(v.roles) {
			v.selected = 0
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.roles)-1 {
			v.selected++
		}
	case "r":
		v.loading = true
		return v, v.loadRoles()
	}
	return v, nil
}

// View renders the roles view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Roles"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading roles..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.roles) == 0:
		b.WriteString(v.styles.Muted.Render("No roles yet. Import a directory or ingest a profile."))
	default:
		for i := range v.roles {
			b.WriteString(v.renderRole(i, &v.roles[i]))
			b.WriteString("\n")
		}
		if v.selected < len(v.roles) {
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(v.roles[v.selected].Description))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [r] reload  [esc] back"))
	return b.String()
}

// renderRole renders a single role line.
func (v *View) renderRole(index int, role *domain.Role) string {
	if index == v.selected {
		return v.styles.Selected.Render("> " + role.Name)
	}
	return v.styles.Normal.Render("  " + role.Name)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Roles returns the loaded roles.
func (v *View) Roles() []domain.Role {
	return v.roles
}

// SelectedIndex returns the currently selected role index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
