// Package status renders the one-line status bar under the search view.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tradematch/internal/core/domain"
)

// State is what the search view is doing.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "matching"
	StateError     State = "error"
	StateHelp      State = "help"
	StateResults   State = "results"
)

// Bar shows the match outcome on the left and key hints on the right.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	width   int

	suppliers int
	available int
	windowed  bool
}

// NewBar creates a status bar. Nil arguments fall back to the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

func (s *Bar) Init() tea.Cmd { return nil }

// Update is a no-op; the bar is driven through its setters.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View renders the bar padded to its width.
func (s *Bar) View() string {
	left, right := s.outcome(), s.hints()
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) outcome() string {
	switch s.state {
	case StateSearching:
		return s.styles.Muted.Render("Matching suppliers...")
	case StateError:
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	case StateHelp:
		return s.styles.Normal.Render("Help")
	}

	if s.suppliers == 0 {
		if s.message != "" {
			return s.styles.Normal.Render(s.message)
		}
		return s.styles.Muted.Render("Ready")
	}

	noun := "suppliers"
	if s.suppliers == 1 {
		noun = "supplier"
	}
	text := fmt.Sprintf("%d %s", s.suppliers, noun)
	if s.windowed {
		text += fmt.Sprintf(" · %d available", s.available)
	}
	return s.styles.Normal.Render(text)
}

func (s *Bar) hints() string {
	bindings := s.keymap.ShortHelp()
	if s.state == StateResults && s.suppliers > 0 {
		bindings = s.keymap.ResultsHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetCandidates records the ranked suppliers of the last match.
// windowed reports whether the request carried a time window, so that
// the available count means something.
func (s *Bar) SetCandidates(candidates []domain.RankedCandidate, windowed bool) {
	s.suppliers = len(candidates)
	s.available = 0
	for _, c := range candidates {
		if c.Available {
			s.available++
		}
	}
	s.windowed = windowed
}

// Suppliers returns how many suppliers the last match ranked.
func (s *Bar) Suppliers() int { return s.suppliers }

// Available returns how many of them are free in the requested window.
func (s *Bar) Available() int { return s.available }

func (s *Bar) SetState(state State) { s.state = state }
func (s *Bar) State() State { return s.state }
func (s *Bar) SetMessage(message string) { s.message = message }
func (s *Bar) Message() string { return s.message }
func (s *Bar) SetWidth(width int) { s.width = width }
func (s *Bar) Width() int { return s.width }

// Clear returns the bar to its idle state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.SetCandidates(nil, false)
}
