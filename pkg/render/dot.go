// Package render turns a weight table into a bipartite source->target graph
// for visual QA of a correspondence run. Output is Graphviz DOT, optionally
// rendered to SVG.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/transportlab/zonelink/pkg/zone"
)

// Options configures correspondence graph rendering.
type Options struct {
	// MinWeight hides entries below this weight, keeping large
	// correspondences readable. Zero shows everything.
	MinWeight float64

	// Detailed adds the numeric weight as an edge label.
	Detailed bool
}

// ToDOT converts a weight table to Graphviz DOT format. Source zones form
// the left rank, target zones the right rank, and edge thickness scales with
// weight. The resulting DOT string can be rendered with [RenderSVG].
func ToDOT(table zone.Table, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph correspondence {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("  ranksep=2.0;\n")
	buf.WriteString("\n")

	sources, targets := ranks(table, opts.MinWeight)

	buf.WriteString("  { rank=source;\n")
	for _, id := range sources {
		fmt.Fprintf(&buf, "    \"src:%s\" [label=%q];\n", id, id)
	}
	buf.WriteString("  }\n")
	buf.WriteString("  { rank=sink;\n")
	for _, id := range targets {
		fmt.Fprintf(&buf, "    \"tgt:%s\" [label=%q, fillcolor=lightgrey];\n", id, id)
	}
	buf.WriteString("  }\n\n")

	for _, e := range table {
		if e.Weight < opts.MinWeight {
			continue
		}
		attrs := fmt.Sprintf("penwidth=%.2f", 0.5+3*e.Weight)
		if opts.Detailed {
			attrs += fmt.Sprintf(", label=\"%.3f\", fontsize=10", e.Weight)
		}
		fmt.Fprintf(&buf, "  \"src:%s\" -> \"tgt:%s\" [%s];\n", e.Source, e.Target, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ranks collects the distinct source and target IDs that survive the weight
// filter, preserving table order (already sorted by the builder).
func ranks(table zone.Table, minWeight float64) (sources, targets []string) {
	seenSrc := make(map[string]bool)
	seenTgt := make(map[string]bool)
	for _, e := range table {
		if e.Weight < minWeight {
			continue
		}
		if !seenSrc[e.Source] {
			seenSrc[e.Source] = true
			sources = append(sources, e.Source)
		}
		if !seenTgt[e.Target] {
			seenTgt[e.Target] = true
			targets = append(targets, e.Target)
		}
	}
	return sources, targets
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
