// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tradematch/internal/core/domain"
)

// CandidateList displays ranked suppliers in a navigable list.
type CandidateList struct {
	candidates []domain.RankedCandidate
	selected   int
	expanded   bool
	styles     *styles.Styles
	width      int
	height     int
}

// NewCandidateList creates a new candidate list component.
func NewCandidateList(s *styles.Styles) *CandidateList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &CandidateList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (r *CandidateList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *CandidateList) Update(msg tea.Msg) (*CandidateList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the list.
func (r *CandidateList) View() string {
	if len(r.candidates) == 0 {
		return r.styles.Muted.Render("No suppliers found")
	}

	lines := make([]string, 0, len(r.candidates)+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Suppliers (%d)", len(r.candidates))), "")

	// Each candidate takes three lines
	visibleCount := (r.height - 4) / 3
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.candidates))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderCandidate(i, &r.candidates[i]))
	}

	return strings.Join(lines, "\n")
}

// renderCandidate formats one supplier with its badges and passage preview.
func (r *CandidateList) renderCandidate(index int, c *domain.RankedCandidate) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	name := c.OwnerName
	if name == "" {
		name = c.OwnerID
	}
	maxNameLen := max(r.width-24, 10)
	name = truncate(name, maxNameLen)

	score := fmt.Sprintf("%.3f", c.FinalScore)

	var nameLine string
	if index == r.selected {
		nameLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxNameLen, name, score))
	} else {
		nameLine = r.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxNameLen, name)) +
			r.styles.Score.Render(score)
	}

	badges := make([]string, 0, 4)
	if c.Role != "" {
		badges = append(badges, c.Role)
	}
	badges = append(badges, fmt.Sprintf("rating %.1f", c.AverageRating))
	if c.Verified {
		badges = append(badges, r.styles.Badge.Render("verified"))
	}
	if c.Available {
		badges = append(badges, r.styles.Badge.Render("available"))
	}
	badgeLine := "    " + strings.Join(badges, r.styles.Muted.Render(" · "))

	preview := strings.Join(strings.Fields(c.Text), " ")
	if !(r.expanded && index == r.selected) {
		preview = truncate(preview, max(r.width-6, 20))
	}
	previewLine := r.styles.Muted.Render("    " + preview)

	return nameLine + "\n" + badgeLine + "\n" + previewLine
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetCandidates replaces the list contents and resets the selection.
func (r *CandidateList) SetCandidates(candidates []domain.RankedCandidate) {
	r.candidates = candidates
	r.selected = 0
	r.expanded = false
}

// Candidates returns the current candidates.
func (r *CandidateList) Candidates() []domain.RankedCandidate {
	return r.candidates
}

// Selected returns the index of the selected candidate.
func (r *CandidateList) Selected() int {
	return r.selected
}

// SelectedCandidate returns the currently selected candidate, or nil if none.
func (r *CandidateList) SelectedCandidate() *domain.RankedCandidate {
	if len(r.candidates) == 0 || r.selected < 0 || r.selected >= len(r.candidates) {
		return nil
	}
	return &r.candidates[r.selected]
}

// ToggleExpanded shows or hides the full passage of the selected candidate.
func (r *CandidateList) ToggleExpanded() {
	r.expanded = !r.expanded
}

// Expanded reports whether the selected passage is shown in full.
func (r *CandidateList) Expanded() bool {
	return r.expanded
}

// MoveUp moves selection up.
func (r *CandidateList) MoveUp() {
	if r.selected > 0 {
		r.selected--
		r.expanded = false
	}
}

// MoveDown moves selection down.
func (r *CandidateList) MoveDown() {
	if r.selected < len(r.candidates)-1 {
		r.selected++
		r.expanded = false
	}
}

// SetDimensions sets the component dimensions.
func (r *CandidateList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of candidates.
func (r *CandidateList) Count() int {
	return len(r.candidates)
}

// IsEmpty returns whether the list is empty.
func (r *CandidateList) IsEmpty() bool {
	return len(r.candidates) == 0
}
