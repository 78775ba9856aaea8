package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatguard/internal/domain"
	"chatguard/internal/service"
)

type fakeService struct{}

func (fakeService) Predict(message string) (domain.Label, error) {
	switch message {
	case "":
		return 0, service.ErrEmptyInput
	case "you idiot":
		return -1, nil
	}
	return 0, nil
}

func (fakeService) Vectorize(string) (domain.FeatureVector, error) {
	return domain.FeatureVector{Dim: 1}, nil
}

type fakeLabels struct{}

func (fakeLabels) LabelName(l domain.Label) string {
	if l == -1 {
		return "harmful"
	}
	return "safe"
}

func (fakeLabels) Probability(domain.FeatureVector) (float64, error) { return 0.25, nil }

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func typeText(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Classify(t *testing.T) {
	m := New(fakeService{}, fakeLabels{}, "11 features")
	assert.Equal(t, "Loading...", m.View())

	m = send(t, m,
		tea.WindowSizeMsg{Width: 80, Height: 24},
		typeText("you idiot"),
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	require.Len(t, m.history, 1)
	assert.Equal(t, domain.Label(-1), m.history[0].label)
	assert.Equal(t, "harmful", m.history[0].name)
	assert.InDelta(t, 0.25, m.history[0].prob, 1e-12)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "harmful (-1)")
	assert.Contains(t, m.status, "classified as harmful")
}

func TestModel_EmptyInput(t *testing.T) {
	m := New(fakeService{}, fakeLabels{}, "")
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24}, tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, m.history, 1)
	assert.ErrorIs(t, m.history[0].err, service.ErrEmptyInput)
	assert.Contains(t, m.status, "no message provided")
}

func TestModel_Quit(t *testing.T) {
	m := New(fakeService{}, fakeLabels{}, "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ab…", truncate("abcdef", 2))
}
