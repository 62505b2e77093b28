package skillmap

import (
	"fmt"
	"image/color"
	"slices"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mezotv/skill-tree/internal/render"
	"github.com/mezotv/skill-tree/internal/router"
	"github.com/mezotv/skill-tree/internal/screen"
	"github.com/mezotv/skill-tree/internal/session"
	"github.com/mezotv/skill-tree/internal/skillgraph"
	"github.com/mezotv/skill-tree/internal/ui/components"
	"github.com/mezotv/skill-tree/internal/ui/layout"
	"github.com/mezotv/skill-tree/internal/ui/theme"
)

// Load fetches the tree for occupation in the background.
func Load(runner *session.Runner, occupation string) tea.Cmd {
	return func() tea.Msg {
		if err := runner.LoadTree(occupation); err != nil {
			return screen.ErrMsg{Err: err}
		}
		return nil
	}
}

type rowKind int

const (
	rowSubjectHeader rowKind = iota
	rowSkill
)

type row struct {
	kind    rowKind
	subject string
	skill   skillgraph.SkillNode
}

// SkillMapScreen shows the computed layout of the selected occupation as
// a grid of age rows and subject columns. The t key switches to a list of
// skills grouped by subject.
type SkillMapScreen struct {
	runner       *session.Runner
	cursorID     string
	scrollOffset int
	list         bool
	spin         spinner.Model
	err          error
}

var _ screen.Screen = (*SkillMapScreen)(nil)
var _ screen.KeyHintProvider = (*SkillMapScreen)(nil)

// New creates a new SkillMapScreen.
func New(runner *session.Runner) *SkillMapScreen {
	return &SkillMapScreen{
		runner: runner,
		spin: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Secondary)),
		),
	}
}

func (s *SkillMapScreen) Init() tea.Cmd {
	return s.spin.Tick
}

func (s *SkillMapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ErrMsg:
		s.err = msg.Err

	case spinner.TickMsg:
		if !s.runner.State().TreeLoading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		switch key := msg.String(); key {
		case "t":
			s.list = !s.list
			s.scrollOffset = 0
		case "space", " ":
			if id := s.current(); id != "" {
				s.runner.Controller().ToggleCompleted(id)
			}
		case "enter":
			if id := s.current(); id != "" {
				return s, s.selectSkill(id)
			}
		case "r":
			st := s.runner.State()
			if st.TreeErr != nil && st.Selected != "" {
				s.err = nil
				return s, tea.Batch(Load(s.runner, st.Selected), s.spin.Tick)
			}
		default:
			if s.list {
				s.navigateList(key)
			} else {
				s.navigateGrid(key)
			}
		}
	}
	return s, nil
}

// current returns the skill under the cursor, placing the cursor on the
// first skill when it is unset or stale.
func (s *SkillMapScreen) current() string {
	if s.list {
		rows := buildRows(s.runner.State())
		if s.cursorIndex(rows) < 0 {
			s.moveCursor(rows, -1, 1)
		}
		return s.cursorID
	}
	g, ok := s.layoutGrid()
	if !ok {
		return ""
	}
	if _, _, _, found := g.Locate(s.cursorID); found {
		return s.cursorID
	}
	if p, found := firstSkill(g); found {
		s.cursorID = p.id(g)
		return s.cursorID
	}
	return ""
}

func (s *SkillMapScreen) layoutGrid() (render.Grid, bool) {
	st := s.runner.State()
	if st.Layout == nil {
		return render.Grid{}, false
	}
	return render.NewGrid(*st.Layout), true
}

// navigateGrid moves the cursor across the positioned skills: up and down
// across age rows, left and right across subject columns.
func (s *SkillMapScreen) navigateGrid(key string) {
	if s.current() == "" {
		return
	}
	g, _ := s.layoutGrid()
	r, c, i, _ := g.Locate(s.cursorID)
	p := gridPos{row: r, col: c, idx: i}
	switch key {
	case "up", "k":
		p = vertical(g, p, -1)
	case "down", "j":
		p = vertical(g, p, 1)
	case "left", "h", "shift+tab":
		p = horizontal(g, p, -1)
	case "right", "l", "tab":
		p = horizontal(g, p, 1)
	}
	s.cursorID = p.id(g)
}

func (s *SkillMapScreen) navigateList(key string) {
	rows := buildRows(s.runner.State())
	cursor := s.cursorIndex(rows)
	switch key {
	case "up", "k":
		s.moveCursor(rows, cursor, -1)
	case "down", "j":
		s.moveCursor(rows, cursor, 1)
	case "tab":
		s.nextSubject(rows, cursor)
	case "shift+tab":
		s.prevSubject(rows, cursor)
	}
}

func (s *SkillMapScreen) View(width, height int) string {
	st := s.runner.State()

	switch {
	case s.err != nil:
		return s.message(width, height, "Could not load the skill tree: "+s.err.Error(), theme.Error)
	case st.TreeLoading:
		return s.message(width, height, s.spin.View()+" Building the skill tree for "+st.Selected+"...", theme.Text)
	case st.TreeErr != nil:
		return s.message(width, height, "Could not load the skill tree: "+st.TreeErr.Error()+"\n\nPress r to try again.", theme.Error)
	case st.Layout == nil:
		return s.message(width, height, "No occupation selected.", theme.TextDim)
	}

	header := s.renderProgress(st, width)
	bodyHeight := max(height-lipgloss.Height(header)-1, 0)

	if !s.list {
		return header + "\n" + s.renderGrid(width, bodyHeight)
	}

	rows := buildRows(st)
	cursor := s.cursorIndex(rows)
	if cursor < 0 {
		s.moveCursor(rows, -1, 1)
		cursor = s.cursorIndex(rows)
	}
	s.adjustScroll(rows, cursor, bodyHeight)

	var lines []string
	for i := s.scrollOffset; i < len(rows) && len(lines) < bodyHeight; i++ {
		r := rows[i]
		switch r.kind {
		case rowSubjectHeader:
			lines = append(lines, s.renderSubjectHeader(r.subject, width))
		case rowSkill:
			lines = append(lines, s.renderSkillRow(r, i == cursor, width))
		}
	}
	return header + "\n" + strings.Join(lines, "\n")
}

func (s *SkillMapScreen) Title() string {
	if sel := s.runner.State().Selected; sel != "" {
		return sel
	}
	return "Skill Tree"
}

// KeyHints returns the key binding hints for the footer.
func (s *SkillMapScreen) KeyHints() []layout.KeyHint {
	if s.list {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Tab", Description: "Subject"},
			{Key: "Space", Description: "Done"},
			{Key: "Enter", Description: "Details"},
			{Key: "t", Description: "Grid"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Age"},
		{Key: "←→", Description: "Subject"},
		{Key: "Space", Description: "Done"},
		{Key: "Enter", Description: "Details"},
		{Key: "t", Description: "List"},
		{Key: "Esc", Description: "Back"},
	}
}

// buildRows lists every subject followed by its skills, youngest first.
func buildRows(st session.State) []row {
	if st.Graph == nil {
		return nil
	}
	ix, err := skillgraph.NewIndex(*st.Graph)
	if err != nil {
		return nil
	}
	var rows []row
	for _, subject := range st.Graph.Subjects {
		skills := ix.BySubject(subject)
		if len(skills) == 0 {
			continue
		}
		rows = append(rows, row{kind: rowSubjectHeader, subject: subject})
		for _, sk := range skills {
			rows = append(rows, row{kind: rowSkill, subject: subject, skill: sk})
		}
	}
	return rows
}

func (s *SkillMapScreen) cursorIndex(rows []row) int {
	for i, r := range rows {
		if r.kind == rowSkill && r.skill.ID == s.cursorID {
			return i
		}
	}
	return -1
}

// moveCursor moves the cursor by delta, skipping subject headers.
func (s *SkillMapScreen) moveCursor(rows []row, cursor, delta int) {
	next := cursor + delta
	for next >= 0 && next < len(rows) {
		if rows[next].kind == rowSkill {
			s.cursorID = rows[next].skill.ID
			return
		}
		next += delta
	}
}

// nextSubject jumps the cursor to the first skill in the next subject.
func (s *SkillMapScreen) nextSubject(rows []row, cursor int) {
	if cursor < 0 {
		return
	}
	current := rows[cursor].subject
	for i := cursor + 1; i < len(rows); i++ {
		if rows[i].kind == rowSkill && rows[i].subject != current {
			s.cursorID = rows[i].skill.ID
			return
		}
	}
}

// prevSubject jumps the cursor to the first skill in the previous subject.
func (s *SkillMapScreen) prevSubject(rows []row, cursor int) {
	if cursor < 0 {
		return
	}
	current := rows[cursor].subject
	prev := ""
	for i := cursor - 1; i >= 0; i-- {
		if rows[i].kind == rowSkill && rows[i].subject != current {
			prev = rows[i].subject
			break
		}
	}
	if prev == "" {
		return
	}
	for _, r := range rows {
		if r.kind == rowSkill && r.subject == prev {
			s.cursorID = r.skill.ID
			return
		}
	}
}

// renderGrid renders the layout grid with the cursor cell highlighted,
// scrolled so the cursor stays in view.
func (s *SkillMapScreen) renderGrid(width, height int) string {
	s.current()
	g, _ := s.layoutGrid()
	opts := render.TableOptions{Cursor: s.cursorID}
	out := g.Table(opts)
	if lipgloss.Width(out) > width {
		opts.Width = width
		out = g.Table(opts)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if height <= 0 {
		return ""
	}
	cursor := slices.IndexFunc(lines, func(l string) bool { return strings.Contains(l, render.CursorMark) })
	if cursor >= 0 {
		if cursor < s.scrollOffset {
			s.scrollOffset = cursor
		}
		if cursor >= s.scrollOffset+height {
			s.scrollOffset = cursor - height + 1
		}
	}
	s.scrollOffset = min(s.scrollOffset, max(len(lines)-height, 0))
	end := min(s.scrollOffset+height, len(lines))
	return strings.Join(lines[s.scrollOffset:end], "\n")
}

// adjustScroll ensures the cursor is visible within the viewport.
func (s *SkillMapScreen) adjustScroll(rows []row, cursor, height int) {
	if height <= 0 || cursor < 0 {
		return
	}
	// Also show the subject header above the cursor if possible
	headerRow := cursor
	for headerRow > 0 && rows[headerRow-1].kind == rowSubjectHeader {
		headerRow--
	}

	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if cursor >= s.scrollOffset+height {
		s.scrollOffset = cursor - height + 1
	}
}

// selectSkill focuses the skill and opens its detail view.
func (s *SkillMapScreen) selectSkill(id string) tea.Cmd {
	if !s.runner.Controller().Focus(id) {
		return nil
	}
	detail := newSkillDetail(s.runner, id)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: detail}
	}
}

func (s *SkillMapScreen) message(width, height int, text string, fg color.Color) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(fg).
		Render(text)
}

// renderProgress renders the completion bar for the whole tree.
func (s *SkillMapScreen) renderProgress(st session.State, width int) string {
	bar := components.NewSkillProgress(st.Graph.Skills, min(width-4, 60))
	return "\n  " + bar.View()
}

// renderSubjectHeader renders a subject section header.
func (s *SkillMapScreen) renderSubjectHeader(subject string, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(strings.ToUpper(subject))
}

// renderSkillRow renders a single skill row.
func (s *SkillMapScreen) renderSkillRow(r row, selected bool, width int) string {
	sk := r.skill
	icon := "○"
	if sk.Completed {
		icon = "●"
	}
	meta := fmt.Sprintf("Age %d · L%d", sk.Age, sk.Level)
	if !layout.IsCompactWidth(width) {
		meta = fmt.Sprintf("Age %2d · %-13s · L%d", sk.Age, sk.School, sk.Level)
	}

	// Calculate column widths
	nameWidth := width - 4 - 4 - lipgloss.Width(meta) - 4
	if nameWidth < 10 {
		nameWidth = 10
	}

	name := sk.Label()
	if lipgloss.Width(name) > nameWidth {
		name = string([]rune(name)[:nameWidth-1]) + "…"
	}

	var nameStyle, metaStyle lipgloss.Style
	switch {
	case selected:
		nameStyle = theme.Selected
		metaStyle = lipgloss.NewStyle().Foreground(theme.Primary)
	case sk.Completed:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Success)
		metaStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
	default:
		nameStyle = theme.Unselected
		metaStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
	}

	// Cursor indicator
	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	namePadded := name + strings.Repeat(" ", max(nameWidth-lipgloss.Width(name), 0))
	return fmt.Sprintf("  %s%s %s  %s", cursor, icon, nameStyle.Render(namePadded), metaStyle.Render(meta))
}
