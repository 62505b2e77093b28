// Package render exports a computed layout as Graphviz DOT, SVG or a
// terminal table.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/mezotv/skill-tree/internal/layout"
)

// Options configures DOT output.
type Options struct {
	// Detailed adds subject, age and level to skill labels.
	Detailed bool
}

// ToDOT converts a layout to DOT. Positions are pinned, so the output is
// meant for the neato engine; y is negated because Graphviz grows upward.
func ToDOT(res layout.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"Helvetica\", fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, n := range res.Nodes {
		attrs := []string{
			fmt.Sprintf("label=%q", nodeLabel(n, opts.Detailed)),
			fmt.Sprintf("pos=\"%s,%s!\"", num(n.X), num(-n.Y)),
		}
		attrs = append(attrs, nodeStyle(n)...)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range res.Edges {
		attrs := append([]string{fmt.Sprintf("id=%q", e.ID)}, edgeStyle(e)...)
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func nodeLabel(n layout.Node, detailed bool) string {
	if n.Skill == nil || !detailed {
		return n.Label
	}
	s := n.Skill
	return fmt.Sprintf("%s\n%s · age %d · L%d", n.Label, s.Subject, s.Age, s.Level)
}

func nodeStyle(n layout.Node) []string {
	switch n.Kind {
	case layout.KindSkill:
		fill := "white"
		if n.Skill != nil && n.Skill.Completed {
			fill = "palegreen"
		}
		return []string{"shape=box", "style=\"rounded,filled\"", "fillcolor=" + fill}
	case layout.KindTier:
		return []string{"shape=plaintext", "fontsize=16", "fontname=\"Helvetica-Bold\""}
	case layout.KindAge:
		return []string{"shape=plaintext", "fontcolor=gray40"}
	case layout.KindOccupation:
		return []string{"shape=doubleoctagon", "style=filled", "fillcolor=gold", "fontsize=18"}
	}
	return nil
}

func edgeStyle(e layout.Edge) []string {
	switch e.Kind {
	case layout.EdgeChain:
		if e.Completed {
			return []string{"color=forestgreen", "penwidth=2"}
		}
		return []string{"color=gray60"}
	case layout.EdgeTimeline:
		return []string{"style=dashed", "color=gray70", "arrowhead=none"}
	case layout.EdgeRoot:
		return []string{"color=darkorange", "penwidth=2"}
	case layout.EdgePrerequisite:
		return []string{"style=dotted", "color=steelblue"}
	}
	return nil
}

// SVG renders DOT source to SVG in-process.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gv.SetLayout(graphviz.NEATO)

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one
// that scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
