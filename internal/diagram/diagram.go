// Package diagram renders a module graph as a terminal diagram: a summary
// box, per-entry dependency trees, and cycle diagnostics.
package diagram

import (
	"fmt"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/seamui/seam/internal/directive"
	"github.com/seamui/seam/internal/modgraph"
)

// Options controls diagram rendering.
type Options struct {
	UseColor bool // colorize kind badges
	ASCII    bool // plain +-| borders instead of box drawing
}

// DefaultOptions returns the interactive-terminal defaults.
func DefaultOptions() *Options {
	return &Options{UseColor: true}
}

type charset struct {
	tl, tr, bl, br string
	h, v           string
	branch, last   string
	cont, blank    string
}

var unicodeChars = charset{
	tl: "┌", tr: "┐", bl: "└", br: "┘",
	h: "─", v: "│",
	branch: "├── ", last: "└── ",
	cont: "│   ", blank: "    ",
}

var asciiChars = charset{
	tl: "+", tr: "+", bl: "+", br: "+",
	h: "-", v: "|",
	branch: "|-- ", last: "`-- ",
	cont: "|   ", blank: "    ",
}

// Render draws the full diagram for a graph.
func Render(g *modgraph.Graph, opts *Options) string {
	if opts == nil {
		opts = DefaultOptions()
	}
	cs := unicodeChars
	if opts.ASCII {
		cs = asciiChars
	}

	var b strings.Builder
	b.WriteString(summaryBox(g, cs))
	b.WriteString("\n")

	for _, entry := range g.Entries {
		fmt.Fprintf(&b, "%s\n", moduleLabel(g.GetModule(entry), opts))
		visited := map[string]bool{entry: true}
		renderChildren(&b, g, entry, "", cs, opts, visited)
		b.WriteString("\n")
	}

	if cycles := g.DetectCycles(); cycles != nil {
		b.WriteString(cycleSection(cycles, opts))
	}
	return b.String()
}

// renderChildren draws one node's subtree. A module already drawn elsewhere
// appears once more as a leaf marked with its id only, so shared imports are
// visible without repeating whole subtrees.
func renderChildren(b *strings.Builder, g *modgraph.Graph, id, prefix string, cs charset, opts *Options, visited map[string]bool) {
	children := g.GetChildren(id)
	for i, child := range children {
		connector, childPrefix := cs.branch, prefix+cs.cont
		if i == len(children)-1 {
			connector, childPrefix = cs.last, prefix+cs.blank
		}

		if visited[child] {
			fmt.Fprintf(b, "%s%s%s (seen)\n", prefix, connector, child)
			continue
		}
		visited[child] = true
		fmt.Fprintf(b, "%s%s%s\n", prefix, connector, moduleLabel(g.GetModule(child), opts))
		renderChildren(b, g, child, childPrefix, cs, opts, visited)
	}
}

// moduleLabel formats "id [kind]" with the kind badge colored per
// environment.
func moduleLabel(m *modgraph.Module, opts *Options) string {
	if m == nil {
		return "?"
	}
	badge := fmt.Sprintf("[%s]", m.Kind)
	if opts.UseColor {
		switch m.Kind {
		case directive.KindClient:
			badge = color.Cyan.Sprint(badge)
		case directive.KindServer:
			badge = color.Magenta.Sprint(badge)
		default:
			badge = color.Gray.Sprint(badge)
		}
	}
	return m.ID + " " + badge
}

// summaryBox draws the module/edge counts in a bordered box sized by
// display width.
func summaryBox(g *modgraph.Graph, cs charset) string {
	lines := []string{
		fmt.Sprintf("modules: %-4d edges: %d", g.ModuleCount(), g.EdgeCount()),
		fmt.Sprintf("client:  %-4d server: %-4d shared: %d",
			len(g.ByKind(directive.KindClient)),
			len(g.ByKind(directive.KindServer)),
			len(g.ByKind(directive.KindShared))),
	}

	width := 0
	for _, l := range lines {
		if w := runewidth.StringWidth(l); w > width {
			width = w
		}
	}

	var b strings.Builder
	b.WriteString(cs.tl + strings.Repeat(cs.h, width+2) + cs.tr + "\n")
	for _, l := range lines {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(l))
		b.WriteString(cs.v + " " + l + pad + " " + cs.v + "\n")
	}
	b.WriteString(cs.bl + strings.Repeat(cs.h, width+2) + cs.br + "\n")
	return b.String()
}

// cycleSection lists import cycles the graph contains.
func cycleSection(info *modgraph.CycleInfo, opts *Options) string {
	header := "import cycles detected"
	if opts.UseColor {
		header = color.Yellow.Sprint(header)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", header, info.Describe())
	return b.String()
}
