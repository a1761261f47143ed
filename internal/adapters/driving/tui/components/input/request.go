// Package input provides the request field of the search view.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/styles"
)

// maxHistory bounds the requests kept for recall.
const maxHistory = 20

// RequestInput is a single-line field for a customer request.
// Submitted requests can be recalled with the up and down keys.
type RequestInput struct {
	field  textinput.Model
	styles *styles.Styles
	width  int

	history []string
	cursor  int // len(history) when not recalling
}

// NewRequestInput creates a focused request field.
func NewRequestInput(s *styles.Styles) *RequestInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	field := textinput.New()
	field.Placeholder = "Describe the job, e.g. my kitchen tap is leaking"
	field.CharLimit = 512
	field.Width = 50
	field.Focus()

	return &RequestInput{field: field, styles: s, width: 50}
}

func (r *RequestInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles typing and history recall.
func (r *RequestInput) Update(msg tea.Msg) (*RequestInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && len(r.history) > 0 {
		switch key.Type {
		case tea.KeyUp:
			r.recall(r.cursor - 1)
			return r, nil
		case tea.KeyDown:
			r.recall(r.cursor + 1)
			return r, nil
		}
	}

	var cmd tea.Cmd
	r.field, cmd = r.field.Update(msg)
	return r, cmd
}

func (r *RequestInput) recall(i int) {
	r.cursor = min(max(i, 0), len(r.history))
	if r.cursor == len(r.history) {
		r.field.SetValue("")
		return
	}
	r.field.SetValue(r.history[r.cursor])
	r.field.CursorEnd()
}

// Submit returns the trimmed request and records it for recall.
// It reports false when the field holds only whitespace.
func (r *RequestInput) Submit() (string, bool) {
	request := strings.TrimSpace(r.field.Value())
	if request == "" {
		return "", false
	}
	if n := len(r.history); n == 0 || r.history[n-1] != request {
		r.history = append(r.history, request)
		if len(r.history) > maxHistory {
			r.history = r.history[1:]
		}
	}
	r.cursor = len(r.history)
	return request, true
}

// History returns submitted requests, oldest first.
func (r *RequestInput) History() []string {
	return r.history
}

func (r *RequestInput) View() string {
	label := r.styles.Title.Render("Request: ")
	//nolint:misspell // lipgloss.Center is the library constant
	return lipgloss.JoinHorizontal(lipgloss.Center, label, r.styles.InputField.Render(r.field.View()))
}

func (r *RequestInput) Value() string { return r.field.Value() }
func (r *RequestInput) SetValue(value string) { r.field.SetValue(value) }
func (r *RequestInput) Focus() tea.Cmd { return r.field.Focus() }
func (r *RequestInput) Blur() { r.field.Blur() }
func (r *RequestInput) Focused() bool { return r.field.Focused() }
func (r *RequestInput) Width() int { return r.width }

// SetWidth sizes the field, leaving room for the label and border.
func (r *RequestInput) SetWidth(width int) {
	r.width = width
	r.field.Width = max(width-14, 20)
}

// Reset clears the field and ends any recall.
func (r *RequestInput) Reset() {
	r.field.Reset()
	r.cursor = len(r.history)
}
