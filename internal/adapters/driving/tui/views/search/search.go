// Package search provides the request and candidates view for the TUI.
package search

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driving"
)

// View represents the search view with input, candidates, recommendation and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.RequestInput
	list      *list.CandidateList
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context
	options       domain.SearchOptions

	summary     *domain.Summary
	showSummary bool

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true while typing, false while browsing candidates
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewRequestInput(s),
		list:          list.NewCandidateList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		showSummary:   true,
		focusInput:    true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetOptions sets the options used for every request. Zero fields use configured defaults.
func (v *View) SetOptions(opts domain.SearchOptions) {
	v.options = opts
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			query, ok := v.input.Submit()
			if !ok {
				return v, nil
			}
			v.statusbar.SetState(status.StateSearching)
			v.focusInput = false
			v.input.Blur()
			return v, v.performMatch(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Details):
		v.list.ToggleExpanded()
	case keymap.Matches(msg.String(), v.keymap.Summary):
		v.showSummary = !v.showSummary
	case keymap.Matches(msg.String(), v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	default:
		v.list, _ = v.list.Update(msg)
	}
	return v, nil
}

// performMatch runs the search and summary off the UI goroutine.
func (v *View) performMatch(query string) tea.Cmd {
	svc, ctx, opts := v.searchService, v.ctx, v.options
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		result, err := svc.Match(ctx, query, opts)
		return messages.SearchCompleted{Result: result, Err: err}
	}
}

// handleSearchCompleted stores candidates and the recommendation.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	v.focusInput = false
	v.input.Blur()

	if msg.Result != nil {
		v.list.SetCandidates(msg.Result.Candidates)
		summary := msg.Result.Summary
		v.summary = &summary
	} else {
		v.list.SetCandidates(nil)
		v.summary = nil
	}

	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}

	v.err = nil
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetCandidates(v.list.Candidates(), v.options.Window != nil)
	if v.list.IsEmpty() {
		v.statusbar.SetMessage("No suppliers found")
	} else {
		v.statusbar.SetMessage("")
	}
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("tradematch"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.showSummary && v.summary != nil {
		sections = append(sections, v.renderSummary(), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderSummary renders the recommendation panel.
func (v *View) renderSummary() string {
	lines := make([]string, 0, len(v.summary.KeyStrengths)+3)
	if v.summary.CandidateName != "" {
		lines = append(lines, v.styles.Subtitle.Render("Recommendation: ")+v.styles.Normal.Render(v.summary.CandidateName))
	} else {
		lines = append(lines, v.styles.Subtitle.Render("Recommendation"))
	}
	for _, s := range v.summary.KeyStrengths {
		lines = append(lines, v.styles.Success.Render("+ ")+v.styles.Normal.Render(s))
	}
	if v.summary.Reasoning != "" {
		lines = append(lines, v.styles.Muted.Width(max(v.width-6, 20)).Render(v.summary.Reasoning))
	}
	return v.styles.Recommendation.Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-14) // header, input, summary, status
	v.statusbar.SetWidth(width)
}

// Query returns the current request text.
func (v *View) Query() string {
	return v.input.Value()
}

// Candidates returns the ranked suppliers of the last request.
func (v *View) Candidates() []domain.RankedCandidate {
	return v.list.Candidates()
}

// Summary returns the last recommendation, or nil before the first request.
func (v *View) Summary() *domain.Summary {
	return v.summary
}

// SummaryVisible reports whether the recommendation panel is shown.
func (v *View) SummaryVisible() bool {
	return v.showSummary
}

// SelectedIndex returns the index of the selected candidate.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to input mode with no results.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetCandidates(nil)
	v.summary = nil
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
