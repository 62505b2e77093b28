package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/mezotv/skill-tree/internal/skillgraph"
	"github.com/mezotv/skill-tree/internal/ui/theme"
)

// SkillProgress shows how many skills of a tree are completed, as a
// "done/total skills" label followed by a bar and a percentage.
type SkillProgress struct {
	Done  int
	Total int
	Width int
}

// NewSkillProgress counts the completed skills in skills.
func NewSkillProgress(skills []skillgraph.SkillNode, width int) SkillProgress {
	p := SkillProgress{Total: len(skills), Width: width}
	for _, sk := range skills {
		if sk.Completed {
			p.Done++
		}
	}
	return p
}

// Fraction is Done/Total clamped to [0, 1]; an empty tree is 0.
func (p SkillProgress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return min(max(float64(p.Done)/float64(p.Total), 0), 1)
}

// Label is the textual count shown before the bar.
func (p SkillProgress) Label() string {
	return fmt.Sprintf("%d/%d skills", p.Done, p.Total)
}

// View renders the label, the bar and the rounded-down percentage.
func (p SkillProgress) View() string {
	label := lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label()) + "  "
	percent := fmt.Sprintf("  %d%%", int(p.Fraction()*100))

	barWidth := max(p.Width-lipgloss.Width(label)-len(percent), 4)
	filled := int(float64(barWidth) * p.Fraction())

	fill := theme.Secondary
	if p.Total > 0 && p.Done == p.Total {
		fill = theme.Success
	}
	bar := lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))

	return label + bar + lipgloss.NewStyle().Foreground(theme.TextDim).Render(percent)
}
