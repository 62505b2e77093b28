package skillmap

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mezotv/skill-tree/internal/screen"
	"github.com/mezotv/skill-tree/internal/session"
	"github.com/mezotv/skill-tree/internal/skillgraph"
	"github.com/mezotv/skill-tree/internal/ui/layout"
	"github.com/mezotv/skill-tree/internal/ui/theme"
)

// SkillDetailScreen shows details for a single skill.
type SkillDetailScreen struct {
	runner *session.Runner
	id     string
}

var _ screen.Screen = (*SkillDetailScreen)(nil)
var _ screen.KeyHintProvider = (*SkillDetailScreen)(nil)
var _ screen.Leaver = (*SkillDetailScreen)(nil)

func newSkillDetail(runner *session.Runner, id string) *SkillDetailScreen {
	return &SkillDetailScreen{runner: runner, id: id}
}

func (d *SkillDetailScreen) Init() tea.Cmd { return nil }

func (d *SkillDetailScreen) Title() string {
	if sk, _, ok := d.lookup(); ok {
		return sk.Subject
	}
	return "Skill"
}

func (d *SkillDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "space", " ":
			d.runner.Controller().ToggleCompleted(d.id)
		}
	}
	return d, nil
}

// Leave closes the focus when the detail view is popped.
func (d *SkillDetailScreen) Leave() {
	d.runner.Controller().Unfocus()
}

func (d *SkillDetailScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Space", Description: "Toggle done"},
		{Key: "Esc", Description: "Back"},
	}
}

// lookup finds the skill in the current graph. The graph is replaced on
// every toggle, so the skill is read fresh each time.
func (d *SkillDetailScreen) lookup() (skillgraph.SkillNode, *skillgraph.Index, bool) {
	st := d.runner.State()
	if st.Graph == nil {
		return skillgraph.SkillNode{}, nil, false
	}
	ix, err := skillgraph.NewIndex(*st.Graph)
	if err != nil {
		return skillgraph.SkillNode{}, nil, false
	}
	sk, ok := ix.Skill(d.id)
	return sk, ix, ok
}

func (d *SkillDetailScreen) View(width, height int) string {
	sk, ix, ok := d.lookup()
	if !ok {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("This skill is no longer part of the tree."))
	}

	contentWidth := width - 8
	if contentWidth > 70 {
		contentWidth = 70
	}

	icon, state := "○", "Not started"
	stateStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	if sk.Completed {
		icon, state = "●", "Completed"
		stateStyle = lipgloss.NewStyle().Foreground(theme.Success)
	}

	var b strings.Builder

	// Skill label + state.
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(fmt.Sprintf("  %s  %s", icon, sk.Label())))
	b.WriteString("\n")
	b.WriteString(stateStyle.Render("  " + state))
	b.WriteString("\n\n")

	if sk.Explanation != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(contentWidth).
			Foreground(theme.Text).
			PaddingLeft(2).
			Render(sk.Explanation))
		b.WriteString("\n\n")
	}

	// Metadata.
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	valStyle := lipgloss.NewStyle().Foreground(theme.Text)

	b.WriteString(dimStyle.Render("  Subject:  ") + valStyle.Render(sk.Subject) + "\n")
	b.WriteString(dimStyle.Render("  Age:      ") + valStyle.Render(fmt.Sprintf("%d", sk.Age)) + "\n")
	b.WriteString(dimStyle.Render("  School:   ") + valStyle.Render(sk.School) + "\n")
	b.WriteString(dimStyle.Render("  Level:    ") + valStyle.Render(strings.Repeat("★", sk.Level)+strings.Repeat("☆", max(5-sk.Level, 0))) + "\n")
	b.WriteString(dimStyle.Render("  ID:       ") + valStyle.Render(sk.ID) + "\n")
	b.WriteString("\n")

	section := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	if prereqs := ix.Prerequisites(sk.ID); len(prereqs) > 0 {
		b.WriteString(section.Render("  Prerequisites"))
		b.WriteString("\n")
		for _, p := range prereqs {
			mark := "○"
			style := dimStyle
			if p.Completed {
				mark = "●"
				style = lipgloss.NewStyle().Foreground(theme.Success)
			}
			b.WriteString(style.Render(fmt.Sprintf("  %s %s", mark, p.Label())))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if deps := ix.Dependents(sk.ID); len(deps) > 0 {
		b.WriteString(section.Render("  Unlocks"))
		b.WriteString("\n")
		for _, dep := range deps {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  → %s", dep.Label())))
			b.WriteString("\n")
		}
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top,
		"\n"+b.String())
}
