package skilltree

import (
	"context"
	"errors"

	"github.com/mezotv/skill-tree/internal/skillgraph"
)

// ErrEmptyOccupation is returned when a tree is requested for a blank
// occupation.
var ErrEmptyOccupation = errors.New("occupation is required")

// Source produces the skill graph for an occupation. Returned graphs
// are normalized and valid.
type Source interface {
	Fetch(ctx context.Context, occupation string) (skillgraph.Graph, error)
}

var (
	_ Source = (*Service)(nil)
	_ Source = (*Client)(nil)
)
