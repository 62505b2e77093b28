// Package suggestions lists the careers suggested for the current query
// while they stream in.
package suggestions

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mezotv/skill-tree/internal/router"
	"github.com/mezotv/skill-tree/internal/screen"
	"github.com/mezotv/skill-tree/internal/screens/skillmap"
	"github.com/mezotv/skill-tree/internal/session"
	"github.com/mezotv/skill-tree/internal/suggest"
	"github.com/mezotv/skill-tree/internal/ui/layout"
	"github.com/mezotv/skill-tree/internal/ui/theme"
)

// Start runs a suggestion request for query in the background. State
// changes reach the screens as screen.StateMsg.
func Start(runner *session.Runner, query string) tea.Cmd {
	return func() tea.Msg {
		if err := runner.Suggest(query); err != nil {
			return screen.ErrMsg{Err: err}
		}
		return nil
	}
}

// SuggestionsScreen shows the job list of the current session.
type SuggestionsScreen struct {
	runner   *session.Runner
	cursor   int
	spin     spinner.Model
	spinning bool
	err      error
}

var _ screen.Screen = (*SuggestionsScreen)(nil)
var _ screen.KeyHintProvider = (*SuggestionsScreen)(nil)

// New creates a SuggestionsScreen reading from runner.
func New(runner *session.Runner) *SuggestionsScreen {
	return &SuggestionsScreen{
		runner: runner,
		spin: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Secondary)),
		),
	}
}

func (s *SuggestionsScreen) Init() tea.Cmd {
	s.spinning = true
	return s.spin.Tick
}

func (s *SuggestionsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateMsg:
		s.clamp(len(msg.State.Jobs))
		if msg.State.SuggestLoading && !s.spinning {
			s.spinning = true
			return s, s.spin.Tick
		}

	case screen.ErrMsg:
		s.err = msg.Err

	case spinner.TickMsg:
		if !s.runner.State().SuggestLoading {
			s.spinning = false
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		jobs := s.runner.State().Jobs
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(jobs)-1 {
				s.cursor++
			}
		case "enter":
			if s.cursor < len(jobs) {
				return s, s.open(jobs[s.cursor])
			}
		case "r":
			st := s.runner.State()
			if !st.SuggestLoading && st.Query != "" {
				s.err = nil
				s.cursor = 0
				return s, Start(s.runner, st.Query)
			}
		}
	}
	return s, nil
}

// open pushes the skill map for job and starts loading its tree.
func (s *SuggestionsScreen) open(job suggest.Job) tea.Cmd {
	next := skillmap.New(s.runner)
	return tea.Batch(
		func() tea.Msg { return router.PushScreenMsg{Screen: next} },
		skillmap.Load(s.runner, job.Title),
	)
}

func (s *SuggestionsScreen) clamp(n int) {
	if s.cursor >= n {
		s.cursor = max(n-1, 0)
	}
}

func (s *SuggestionsScreen) View(width, height int) string {
	st := s.runner.State()
	s.clamp(len(st.Jobs))
	cw := min(width-4, 90)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Careers for “%s”", st.Query)))
	b.WriteString("\n\n")

	if notice := s.notice(st); notice != "" {
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Accent).
			Width(cw).
			PaddingLeft(2).
			Render(notice))
		b.WriteString("\n\n")
	}

	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	for i, job := range st.Jobs {
		cursor := "  "
		title := theme.Unselected.Render(job.Title)
		if i == s.cursor {
			cursor = "▸ "
			title = theme.Selected.Render(job.Title)
		}
		b.WriteString("  " + cursor + title + "\n")
		if job.Relevance != "" {
			b.WriteString(dim.Width(cw).PaddingLeft(6).Render(job.Relevance))
			b.WriteString("\n")
		}
	}

	switch {
	case st.SuggestLoading:
		label := "Finding careers..."
		if len(st.Jobs) > 0 {
			label = "More on the way..."
		}
		b.WriteString("\n  " + s.spin.View() + " " + dim.Render(label) + "\n")
	case len(st.Jobs) == 0 && s.err == nil:
		b.WriteString(dim.Render("  No careers found. Press r to try again.") + "\n")
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, b.String())
}

// notice explains a failed or partial request.
func (s *SuggestionsScreen) notice(st session.State) string {
	switch {
	case s.err != nil:
		return "Could not start the search: " + s.err.Error()
	case st.Fallback:
		msg := "Couldn't reach the suggestion service, so here are some popular careers instead."
		if st.SuggestErr != nil {
			msg += " (" + st.SuggestErr.Error() + ")"
		}
		return msg
	case st.SuggestErr != nil && !st.SuggestLoading:
		return "The list stopped early: " + st.SuggestErr.Error()
	}
	return ""
}

func (s *SuggestionsScreen) Title() string {
	return "Suggestions"
}

func (s *SuggestionsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Skill tree"},
		{Key: "r", Description: "Retry"},
		{Key: "Esc", Description: "Back"},
	}
}
