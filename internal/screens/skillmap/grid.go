package skillmap

import (
	"github.com/mezotv/skill-tree/internal/render"
)

// gridPos addresses one skill in a render.Grid: an age row, a subject
// column and the skill's place in that cell's stack.
type gridPos struct {
	row, col, idx int
}

func (p gridPos) id(g render.Grid) string {
	return g.Cells[p.row][p.col][p.idx].ID
}

// firstSkill is the leftmost skill in the youngest row that has one.
func firstSkill(g render.Grid) (gridPos, bool) {
	for r := len(g.Cells) - 1; r >= 0; r-- {
		for c, cell := range g.Cells[r] {
			if len(cell) > 0 {
				return gridPos{row: r, col: c}, true
			}
		}
	}
	return gridPos{}, false
}

// vertical steps through the stack of the current cell first, then to the
// nearest non-empty cell in the next row that has one. Rows run oldest
// first, so up (delta -1) moves toward older ages.
func vertical(g render.Grid, p gridPos, delta int) gridPos {
	stack := len(g.Cells[p.row][p.col])
	if next := p.idx + delta; next >= 0 && next < stack {
		p.idx = next
		return p
	}
	for r := p.row + delta; r >= 0 && r < len(g.Cells); r += delta {
		c, ok := nearestColumn(g, r, p.col)
		if !ok {
			continue
		}
		idx := 0
		if delta < 0 {
			idx = len(g.Cells[r][c]) - 1
		}
		return gridPos{row: r, col: c, idx: idx}
	}
	return p
}

// horizontal moves to the next non-empty subject column in the same row.
func horizontal(g render.Grid, p gridPos, delta int) gridPos {
	for c := p.col + delta; c >= 0 && c < len(g.Cells[p.row]); c += delta {
		if cell := g.Cells[p.row][c]; len(cell) > 0 {
			return gridPos{row: p.row, col: c, idx: min(p.idx, len(cell)-1)}
		}
	}
	return p
}

// nearestColumn finds the non-empty cell in row r closest to col,
// preferring the left one on a tie.
func nearestColumn(g render.Grid, r, col int) (int, bool) {
	cells := g.Cells[r]
	for d := 0; d < len(cells); d++ {
		if c := col - d; c >= 0 && c < len(cells) && len(cells[c]) > 0 {
			return c, true
		}
		if c := col + d; c < len(cells) && len(cells[c]) > 0 {
			return c, true
		}
	}
	return 0, false
}
