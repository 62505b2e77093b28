package render

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/mezotv/skill-tree/internal/layout"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	ageStyle    = lipgloss.NewStyle().Padding(0, 1).Faint(true)
	cursorStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
)

// Grid arranges the skill nodes of a layout as rows of ages (oldest
// first, as laid out) and columns of subjects (left to right).
type Grid struct {
	Subjects []string
	Ages     []int
	// Cells[row][col] lists the skills at that age and subject.
	Cells [][][]layout.Node
}

// NewGrid groups the skill nodes of res by position.
func NewGrid(res layout.Result) Grid {
	skills := res.Skills()

	type column struct {
		subject string
		x       float64
	}
	var cols []column
	var ages []int
	for _, n := range skills {
		if !slices.ContainsFunc(cols, func(c column) bool { return c.subject == n.Skill.Subject }) {
			cols = append(cols, column{subject: n.Skill.Subject, x: n.X})
		}
		if !slices.Contains(ages, n.Skill.Age) {
			ages = append(ages, n.Skill.Age)
		}
	}
	slices.SortStableFunc(cols, func(a, b column) int { return cmp.Compare(a.x, b.x) })
	slices.Sort(ages)
	slices.Reverse(ages)

	g := Grid{Ages: ages, Cells: make([][][]layout.Node, len(ages))}
	for _, c := range cols {
		g.Subjects = append(g.Subjects, c.subject)
	}
	for r := range g.Cells {
		g.Cells[r] = make([][]layout.Node, len(cols))
	}
	for _, n := range skills {
		r := slices.Index(ages, n.Skill.Age)
		c := slices.Index(g.Subjects, n.Skill.Subject)
		g.Cells[r][c] = append(g.Cells[r][c], n)
	}
	return g
}

// Locate returns the row, column and stack index of the skill id.
func (g Grid) Locate(id string) (row, col, idx int, ok bool) {
	for r, cells := range g.Cells {
		for c, cell := range cells {
			for i, n := range cell {
				if n.ID == id {
					return r, c, i, true
				}
			}
		}
	}
	return 0, 0, 0, false
}

// TableOptions tunes the terminal rendering of a skill grid.
type TableOptions struct {
	// Cursor is the ID of the skill to highlight, if any.
	Cursor string
	// Width caps the table width; zero keeps the natural width.
	Width int
}

// CursorMark prefixes the highlighted skill in a rendered table.
const CursorMark = "▸"

// Table renders the skill grid of res as a bordered terminal table.
func Table(res layout.Result) string {
	return NewGrid(res).Table(TableOptions{})
}

// Table renders g as a bordered terminal table with ages down the left.
func (g Grid) Table(opts TableOptions) string {
	if len(g.Ages) == 0 {
		return "(no skills)\n"
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(append([]string{"Age"}, g.Subjects...)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return ageStyle
			default:
				return cellStyle
			}
		})
	if opts.Width > 0 {
		t = t.Width(opts.Width)
	}

	for r, age := range g.Ages {
		row := []string{fmt.Sprintf("%d", age)}
		for _, cell := range g.Cells[r] {
			lines := make([]string, 0, len(cell))
			for _, n := range cell {
				mark := "○"
				if n.Skill.Completed {
					mark = "●"
				}
				line := fmt.Sprintf("%s %s (L%d)", mark, n.Label, n.Skill.Level)
				if opts.Cursor != "" && n.ID == opts.Cursor {
					line = cursorStyle.Render(CursorMark + " " + line)
				}
				lines = append(lines, line)
			}
			row = append(row, strings.Join(lines, "\n"))
		}
		t.Row(row...)
	}
	return t.Render() + "\n"
}
