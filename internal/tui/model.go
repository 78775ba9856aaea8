package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chatguard/internal/domain"
)

// PredictPort is the TUI-facing subset of the inference service.
type PredictPort interface {
	Predict(message string) (domain.Label, error)
	Vectorize(message string) (domain.FeatureVector, error)
}

// LabelInfo describes labels for display. Probability reports the
// likelihood of the model's positive class.
type LabelInfo interface {
	LabelName(label domain.Label) string
	Probability(vec domain.FeatureVector) (float64, error)
}

type entry struct {
	message string
	label   domain.Label
	name    string
	prob    float64
	err     error
}

// Model is the Bubble Tea model for the classification console.
type Model struct {
	service  PredictPort
	labels   LabelInfo
	input    textinput.Model
	viewport viewport.Model
	history  []entry
	header   string
	status   string
	ready    bool
}

// New creates a new TUI model instance. header is shown above the results.
func New(service PredictPort, labels LabelInfo, header string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, labels: labels, input: ti, viewport: vp, header: header, status: "Artifacts loaded. Type to classify."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, status, input box, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderHistory())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			m.classify(m.input.Value())
			m.input.SetValue("")
			m.viewport.SetContent(m.renderHistory())
			m.viewport.GotoTop()
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) classify(message string) {
	e := entry{message: message}
	label, err := m.service.Predict(message)
	if err != nil {
		e.err = err
		m.status = "Error: " + err.Error()
		m.history = append(m.history, e)
		return
	}
	e.label = label
	e.name = m.labels.LabelName(label)
	// The probability is informational; a failure here does not hide the label.
	if vec, err := m.service.Vectorize(message); err == nil {
		if p, err := m.labels.Probability(vec); err == nil {
			e.prob = p
		}
	}
	m.status = fmt.Sprintf("%q classified as %s", truncate(message, 40), e.name)
	m.history = append(m.history, e)
}

// View renders the TUI layout and the classification history.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("ChatGuard Console")
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.header)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + sub + "\n" + results + "\n" + input + "\n" + status
}

// renderHistory lists results newest first.
func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "No messages classified yet."
	}
	var b strings.Builder
	for i := len(m.history) - 1; i >= 0; i-- {
		e := m.history[i]
		if e.err != nil {
			b.WriteString(errorStyle.Render("error: " + e.err.Error()))
		} else {
			style := safeStyle
			if e.name == "harmful" {
				style = harmfulStyle
			}
			b.WriteString(style.Render(fmt.Sprintf("%s (%d)", e.name, e.label)))
			fmt.Fprintf(&b, "  p=%.3f", e.prob)
		}
		fmt.Fprintf(&b, "  %q", e.message)
		if i > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	harmfulStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	safeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)
