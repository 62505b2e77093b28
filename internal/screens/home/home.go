package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mezotv/skill-tree/internal/router"
	"github.com/mezotv/skill-tree/internal/screen"
	"github.com/mezotv/skill-tree/internal/screens/suggestions"
	"github.com/mezotv/skill-tree/internal/session"
	"github.com/mezotv/skill-tree/internal/ui/components"
	"github.com/mezotv/skill-tree/internal/ui/layout"
	"github.com/mezotv/skill-tree/internal/ui/theme"
)

// maxQuery matches the server's limit on suggestion queries.
const maxQuery = 200

// HomeScreen asks for an interest and starts a suggestion request.
type HomeScreen struct {
	runner *session.Runner
	input  components.TextInput
	notice string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(runner *session.Runner) *HomeScreen {
	return &HomeScreen{
		runner: runner,
		input:  components.NewTextInput("dinosaurs, drawing, football...", maxQuery),
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.input.Init()
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && kmsg.String() == "enter" {
		return h, h.submit()
	}

	var cmd tea.Cmd
	h.input, cmd = h.input.Update(msg)
	return h, cmd
}

// submit pushes the suggestion list and starts streaming into it.
func (h *HomeScreen) submit() tea.Cmd {
	query := strings.TrimSpace(h.input.Value())
	if query == "" {
		h.notice = "Tell me something you enjoy first."
		return nil
	}
	h.notice = ""

	next := suggestions.New(h.runner)
	return tea.Batch(
		func() tea.Msg { return router.PushScreenMsg{Screen: next} },
		suggestions.Start(h.runner, query),
	)
}

func (h *HomeScreen) View(width, height int) string {
	cw := min(width-4, 72)

	var sections []string
	sections = append(sections, RenderBanner(width))
	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Render("What do you love doing?"))

	box := theme.Card.Width(cw).Render(h.input.View())
	sections = append(sections, box)

	if h.notice != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).Render(h.notice))
	} else {
		sections = append(sections, theme.Hint.Render("We'll suggest careers and map the skills they need."))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, sections...))
}

func (h *HomeScreen) Title() string {
	return "Explore"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Suggest careers"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
