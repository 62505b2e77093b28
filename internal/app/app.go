package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/log"

	"github.com/mezotv/skill-tree/internal/layout"
	"github.com/mezotv/skill-tree/internal/router"
	"github.com/mezotv/skill-tree/internal/screen"
	"github.com/mezotv/skill-tree/internal/screens/home"
	"github.com/mezotv/skill-tree/internal/screens/suggestions"
	"github.com/mezotv/skill-tree/internal/session"
	"github.com/mezotv/skill-tree/internal/skilltree"
	"github.com/mezotv/skill-tree/internal/suggest"
	uilayout "github.com/mezotv/skill-tree/internal/ui/layout"
)

// Options configures the explorer.
type Options struct {
	Suggest suggest.Source
	Trees   skilltree.Source
	Layout  layout.Config
	Logger  *log.Logger

	// Query, when set, starts a suggestion request right away.
	Query string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	runner *session.Runner
	query  string
	logger *log.Logger
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(runner *session.Runner, query string, logger *log.Logger) AppModel {
	return AppModel{
		router: router.New(home.New(runner)),
		runner: runner,
		query:  query,
		logger: logger,
	}
}

func (m AppModel) Init() tea.Cmd {
	cmd := m.router.Active().Init()
	if m.query == "" {
		return cmd
	}
	next := suggestions.New(m.runner)
	return tea.Batch(
		cmd,
		func() tea.Msg { return router.PushScreenMsg{Screen: next} },
		suggestions.Start(m.runner, m.query),
	)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.runner.Close()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}

	case screen.ErrMsg:
		if m.logger != nil {
			m.logger.Warn("background request failed", "err", msg.Err)
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if frame := m.render(); frame != "" {
		v.SetContent(frame)
	}
	return v
}

// render composes header, active screen and footer. It returns "" until
// the terminal size is known.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if uilayout.IsTooSmall(m.width, m.height) {
		return uilayout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := uilayout.RenderHeader(title, status(m.runner.State()), m.width)

	var footerHints []uilayout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []uilayout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := uilayout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return uilayout.RenderFrame(header, content, footer, m.width, m.height)
}

// status summarizes the session for the header.
func status(st session.State) string {
	switch {
	case st.Graph != nil:
		done := 0
		for _, sk := range st.Graph.Skills {
			if sk.Completed {
				done++
			}
		}
		return fmt.Sprintf("● %d/%d", done, len(st.Graph.Skills))
	case st.SuggestLoading:
		return "searching"
	case len(st.Jobs) > 0:
		return fmt.Sprintf("%d careers", len(st.Jobs))
	}
	return ""
}

// Run starts the Bubble Tea program and blocks until the user quits or
// ctx is canceled.
func Run(ctx context.Context, opts Options) error {
	var p *tea.Program
	ctrl := session.NewController(opts.Layout, func(s session.State) {
		if p != nil {
			p.Send(screen.StateMsg{State: s})
		}
	})
	runner := session.NewRunner(ctx, ctrl, opts.Suggest, opts.Trees)
	defer runner.Close()

	p = tea.NewProgram(newAppModel(runner, opts.Query, opts.Logger), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run explorer: %w", err)
	}
	return nil
}
