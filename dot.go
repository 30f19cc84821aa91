package hsm

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// DOT renders the chart as Graphviz DOT source. Composite states become
// clusters, direct transitions become labeled edges, and Init default-child
// redirections become dashed edges. Pass the machine's current state (or
// nil) to highlight the active leaf.
func (c *Chart) DOT(current *State) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", c.name)
	buf.WriteString("  rankdir=LR;\n  node [shape=box, fontsize=10, style=rounded];\n  edge [fontsize=9];\n")

	children := make(map[string][]string)
	var roots []string
	for _, path := range c.sortedPaths() {
		if idx := strings.LastIndex(path, "."); idx >= 0 {
			parent := path[:idx]
			children[parent] = append(children[parent], path)
		} else {
			roots = append(roots, path)
		}
	}

	for _, root := range roots {
		c.renderState(&buf, root, children, current)
	}

	for _, path := range c.sortedPaths() {
		cs := c.states[path]
		if cs.init != "" {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, label=\"init\"];\n", path, cs.init)
		}
		for _, b := range cs.bindings {
			if b.target != "" {
				fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", path, b.target, c.labelFor(b.event))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func (c *Chart) renderState(buf *bytes.Buffer, path string, children map[string][]string, current *State) {
	cs := c.states[path]
	active := current != nil && cs.state == current
	style := ""
	if active {
		style = " style=filled fillcolor=lightgreen"
	}
	if len(children[path]) == 0 {
		fmt.Fprintf(buf, "  %q [label=%q%s];\n", path, path, style)
		return
	}

	fmt.Fprintf(buf, "  subgraph \"cluster_%s\" {\n", path)
	fmt.Fprintf(buf, "    label=%q;\n", path)
	fmt.Fprintf(buf, "    %q [label=%q shape=ellipse%s];\n", path, path, style)
	for _, child := range children[path] {
		c.renderState(buf, child, children, current)
	}
	buf.WriteString("  }\n")
}

func (c *Chart) labelFor(e Event) string {
	if n, ok := c.names[e]; ok {
		return n
	}
	return fmt.Sprintf("%d", e)
}

func (c *Chart) sortedPaths() []string {
	paths := append([]string(nil), c.order...)
	sort.Strings(paths)
	return paths
}
