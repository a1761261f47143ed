package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(r *RequestInput, text string) {
	for _, c := range text {
		r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{c}})
	}
}

func TestNewRequestInput(t *testing.T) {
	in := NewRequestInput(nil)

	require.NotNil(t, in)
	assert.Empty(t, in.Value())
	assert.True(t, in.Focused())
	assert.NotNil(t, in.Init())
	assert.Contains(t, in.View(), "Request")
}

func TestRequestInput_Submit(t *testing.T) {
	in := NewRequestInput(nil)

	_, ok := in.Submit()
	assert.False(t, ok)

	in.SetValue("   ")
	_, ok = in.Submit()
	assert.False(t, ok)

	typeText(in, "  leaking tap ")
	request, ok := in.Submit()
	assert.True(t, ok)
	assert.Equal(t, "leaking tap", request)

	in.SetValue("leaking tap")
	in.Submit()
	assert.Equal(t, []string{"leaking tap"}, in.History(), "repeat submissions are kept once")
}

func TestRequestInput_Recall(t *testing.T) {
	in := NewRequestInput(nil)
	for _, r := range []string{"rewire the garage", "fix my sink"} {
		in.SetValue(r)
		in.Submit()
	}
	in.Reset()

	in.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "fix my sink", in.Value())

	in.Update(tea.KeyMsg{Type: tea.KeyUp})
	in.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "rewire the garage", in.Value(), "recall stops at the oldest request")

	in.Update(tea.KeyMsg{Type: tea.KeyDown})
	in.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, in.Value(), "moving past the newest request clears the field")
}

func TestRequestInput_HistoryBounded(t *testing.T) {
	in := NewRequestInput(nil)
	for i := range maxHistory + 5 {
		in.SetValue(string(rune('a' + i)))
		in.Submit()
	}

	assert.Len(t, in.History(), maxHistory)
	assert.Equal(t, string(rune('a'+5)), in.History()[0])
}

func TestRequestInput_FocusAndWidth(t *testing.T) {
	in := NewRequestInput(nil)

	in.Blur()
	assert.False(t, in.Focused())
	in.Focus()
	assert.True(t, in.Focused())

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())
	assert.Equal(t, 86, in.field.Width)

	in.SetWidth(10)
	assert.Equal(t, 20, in.field.Width)
}
