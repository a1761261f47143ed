package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

func candidates(available ...bool) []domain.RankedCandidate {
	out := make([]domain.RankedCandidate, len(available))
	for i, a := range available {
		out[i].Available = a
	}
	return out
}

func TestNewBar(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
	assert.Nil(t, bar.Init())

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Same(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name       string
		state      State
		message    string
		candidates []domain.RankedCandidate
		windowed   bool
		want       string
	}{
		{"ready", StateReady, "", nil, false, "Ready"},
		{"matching", StateSearching, "", nil, false, "Matching suppliers..."},
		{"error with message", StateError, "store down", nil, false, "Error: store down"},
		{"bare error", StateError, "", nil, false, "Error"},
		{"one supplier", StateResults, "", candidates(false), false, "1 supplier"},
		{"many suppliers", StateResults, "", candidates(true, false, true), false, "3 suppliers"},
		{"availability", StateResults, "", candidates(true, false, true), true, "3 suppliers · 2 available"},
		{"empty with message", StateResults, "No suppliers found", nil, false, "No suppliers found"},
		{"help", StateHelp, "", nil, false, "Help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(140)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)
			bar.SetCandidates(tt.candidates, tt.windowed)

			assert.Contains(t, bar.View(), tt.want)
		})
	}
}

func TestBar_NoAvailabilityWithoutWindow(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(140)
	bar.SetState(StateResults)
	bar.SetCandidates(candidates(true), false)

	assert.NotContains(t, bar.View(), "available")
	assert.Equal(t, 1, bar.Available())
}

func TestBar_ResultsHints(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)
	bar.SetState(StateResults)
	bar.SetCandidates(candidates(false, false), false)

	view := bar.View()

	assert.Contains(t, view, "n: new request")
	assert.Contains(t, view, "s: summary")
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("oops")
	bar.SetCandidates(candidates(true, true), true)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.Suppliers())
	assert.Zero(t, bar.Available())
}
