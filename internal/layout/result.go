package layout

import (
	"math"

	"github.com/mezotv/skill-tree/internal/skillgraph"
)

// RootID is the node ID of the occupation node.
const RootID = "occupation-master"

// NodeKind classifies a positioned node.
type NodeKind string

const (
	KindSkill      NodeKind = "skill"
	KindTier       NodeKind = "schoolLabel"
	KindAge        NodeKind = "ageLabel"
	KindOccupation NodeKind = "occupation"
)

// EdgeKind classifies an edge.
type EdgeKind string

const (
	EdgeTimeline     EdgeKind = "timeline"
	EdgeRoot         EdgeKind = "root"
	EdgeChain        EdgeKind = "chain"
	EdgePrerequisite EdgeKind = "prerequisite"
)

// Node is a positioned node. Skill is set only for KindSkill and carries
// the original skill so a renderer can hand it back on selection.
type Node struct {
	ID    string                `json:"id"`
	Kind  NodeKind              `json:"type"`
	X     float64               `json:"x"`
	Y     float64               `json:"y"`
	Label string                `json:"label"`
	Skill *skillgraph.SkillNode `json:"skill,omitempty"`
}

// Edge is a directed edge between two node IDs. Completed only affects
// styling.
type Edge struct {
	ID        string   `json:"id"`
	Kind      EdgeKind `json:"kind"`
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Completed bool     `json:"completed,omitempty"`
}

// Result is the output of Compute.
type Result struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given ID.
func (r Result) Node(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Skills returns the skill nodes in layout order.
func (r Result) Skills() []Node {
	var out []Node
	for _, n := range r.Nodes {
		if n.Kind == KindSkill {
			out = append(out, n)
		}
	}
	return out
}

// EdgesOf returns the edges of the given kind.
func (r Result) EdgesOf(kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range r.Edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Bounds returns the bounding box of every node position. An empty result
// has a zero Rect.
func (r Result) Bounds() Rect {
	if len(r.Nodes) == 0 {
		return Rect{}
	}
	b := Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, n := range r.Nodes {
		b.MinX = math.Min(b.MinX, n.X)
		b.MinY = math.Min(b.MinY, n.Y)
		b.MaxX = math.Max(b.MaxX, n.X)
		b.MaxY = math.Max(b.MaxY, n.Y)
	}
	return b
}
