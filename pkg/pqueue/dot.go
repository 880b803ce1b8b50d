package pqueue

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT representation of the heap as a binary tree.
//
// Each node is labeled with label(v); pass nil to use fmt's %v formatting.
// The root is the element Peek would return. An empty queue produces a
// valid digraph with no nodes.
func ToDOT[T comparable](q *Queue[T], label func(T) string) string {
	if label == nil {
		label = func(v T) string { return fmt.Sprint(v) }
	}

	var buf bytes.Buffer
	buf.WriteString("digraph Heap {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=14, style=\"filled,rounded\", shape=box, fillcolor=white];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	for i := 0; i < q.size; i++ {
		fmt.Fprintf(&buf, "  n%d [label=%q];\n", i, label(q.arr[i]))
		if i > 0 {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", parent(i), i)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders the heap with Graphviz and returns an SVG document.
//
// The DOT source comes from ToDOT. Errors from Graphviz initialization,
// parsing or rendering are wrapped with context.
func RenderSVG[T comparable](q *Queue[T], label func(T) string) ([]byte, error) {
	dot := ToDOT(q, label)

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
