// Package settings provides the settings editor view for the TUI.
package settings

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driving"
)

// field is one editable settings key.
type field struct {
	key     string
	label   string
	secret  bool
	choices []string // cycled in place; nil means free text
	value   func(*domain.AppSettings) string
}

func itoa(n int) string { return strconv.Itoa(n) }

func stringsOf[T ~string](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = string(item)
	}
	return out
}

// fields lists the keys the editor exposes, in display order.
var fields = []field{
	{key: "pipeline.strategy", label: "Fusion strategy",
		choices: stringsOf(domain.AllFusionStrategies()),
		value:   func(s *domain.AppSettings) string { return string(s.Pipeline.Strategy) }},
	{key: "pipeline.top_k", label: "Top K",
		value: func(s *domain.AppSettings) string { return itoa(s.Pipeline.TopK) }},
	{key: "pipeline.expansions", label: "Query expansions",
		value: func(s *domain.AppSettings) string { return itoa(s.Pipeline.Expansions) }},
	{key: "pipeline.max_words", label: "Max words per passage",
		value: func(s *domain.AppSettings) string { return itoa(s.Pipeline.MaxWords) }},
	{key: "vector_store.backend", label: "Vector store",
		choices: stringsOf([]domain.VectorBackend{domain.VectorBackendSQLite, domain.VectorBackendMemory, domain.VectorBackendQdrant}),
		value:   func(s *domain.AppSettings) string { return string(s.VectorStore.Backend) }},
	{key: "vector_store.url", label: "Qdrant URL",
		value: func(s *domain.AppSettings) string { return s.VectorStore.URL }},
	{key: "embedding.provider", label: "Embedding provider",
		choices: stringsOf(domain.AllEmbeddingProviders()),
		value:   func(s *domain.AppSettings) string { return string(s.Embedding.Provider) }},
	{key: "embedding.model", label: "Embedding model",
		value: func(s *domain.AppSettings) string { return s.Embedding.Model }},
	{key: "embedding.api_key", label: "Embedding API key", secret: true,
		value: func(s *domain.AppSettings) string { return s.Embedding.APIKey }},
	{key: "llm.provider", label: "LLM provider",
		choices: stringsOf(domain.AllLLMProviders()),
		value:   func(s *domain.AppSettings) string { return string(s.LLM.Provider) }},
	{key: "llm.model", label: "LLM model",
		value: func(s *domain.AppSettings) string { return s.LLM.Model }},
	{key: "llm.api_key", label: "LLM API key", secret: true,
		value: func(s *domain.AppSettings) string { return s.LLM.APIKey }},
	{key: "rerank.provider", label: "Rerank provider",
		choices: []string{"", string(domain.AIProviderCohere)},
		value:   func(s *domain.AppSettings) string { return string(s.Rerank.Provider) }},
	{key: "rerank.api_key", label: "Rerank API key", secret: true,
		value: func(s *domain.AppSettings) string { return s.Rerank.APIKey }},
}

// View edits application settings one key at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	warning  error // from Validate
	err      error

	cursor  int
	editing bool
	input   textinput.Model

	width  int
	height int
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	input := textinput.New()
	input.CharLimit = 256

	return &View{
		styles:          s,
		settingsService: settingsService,
		input:           input,
	}
}

// Init loads the current settings.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: fmt.Errorf("settings service not available")}
		}
		settings, err := svc.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// save writes one key through the settings service.
func (v *View) save(key, value string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: fmt.Errorf("settings service not available")}
		}
		return messages.SettingsSaved{Err: svc.Set(key, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.settings = msg.Settings
			v.warning = nil
			if v.settingsService != nil {
				v.warning = v.settingsService.Validate()
			}
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		return v, v.load()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleListKey(msg)
	}
	return v, nil
}

func (v *View) handleListKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(fields)-1 {
			v.cursor++
		}
	case "enter", " ":
		if v.settings == nil {
			return v, nil
		}
		f := fields[v.cursor]
		if f.choices != nil {
			return v, v.save(f.key, nextChoice(f.choices, f.value(v.settings)))
		}
		v.startEdit(f)
		return v, textinput.Blink
	}
	return v, nil
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.stopEdit()
		return v, nil
	case "enter":
		value := v.input.Value()
		v.stopEdit()
		return v, v.save(fields[v.cursor].key, value)
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// startEdit opens the text input. Secrets start empty so the stored key is never echoed.
func (v *View) startEdit(f field) {
	v.editing = true
	v.input.Reset()
	v.input.EchoMode = textinput.EchoNormal
	v.input.Placeholder = f.label
	if f.secret {
		v.input.EchoMode = textinput.EchoPassword
		v.input.Placeholder = "Enter API key"
	} else {
		v.input.SetValue(f.value(v.settings))
	}
	v.input.Focus()
}

func (v *View) stopEdit() {
	v.editing = false
	v.input.Blur()
	v.input.Reset()
}

// nextChoice returns the choice after current, wrapping around.
func nextChoice(choices []string, current string) string {
	i := slices.Index(choices, current)
	return choices[(i+1)%len(choices)]
}

// View renders the settings editor.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.settings == nil {
		if v.err != nil {
			b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		} else {
			b.WriteString(v.styles.Muted.Render("Loading settings..."))
		}
		return b.String()
	}

	for i, f := range fields {
		line := fmt.Sprintf("%-22s %s", f.label, display(f, v.settings))
		switch {
		case i == v.cursor && v.editing:
			line = fmt.Sprintf("%-22s %s", f.label, v.input.View())
			b.WriteString(v.styles.Selected.Render("> " + line))
		case i == v.cursor:
			b.WriteString(v.styles.Selected.Render("> " + line))
		default:
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	}
	if v.warning != nil {
		b.WriteString(v.styles.Warning.Render("Warning: " + v.warning.Error()))
		b.WriteString("\n")
	} else {
		b.WriteString(v.styles.Success.Render("Configuration is valid"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.editing {
		b.WriteString(v.styles.Help.Render("enter save  esc cancel"))
	} else {
		b.WriteString(v.styles.Help.Render("j/k move  enter edit or cycle  esc back"))
	}
	return b.String()
}

// display renders a field's current value, masking secrets.
func display(f field, s *domain.AppSettings) string {
	value := f.value(s)
	switch {
	case value == "":
		return "Not Set"
	case f.secret:
		return "configured"
	default:
		return value
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = max(width-30, 20)
}

// Reset returns the view to its initial state.
func (v *View) Reset() {
	v.cursor = 0
	v.err = nil
	v.stopEdit()
}
