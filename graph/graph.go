// Package graph renders the dependency graph of a set of cells.
package graph

import (
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/coiled"
)

//go:generate qtc -file=dot.qtpl

var palette = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072",
	"#80b1d3", "#fdb462", "#b3de69", "#fccde5",
}

// Vertex is one cell in a Graph. ID is the cell's ULID, so cells sharing a
// key stay distinct.
type Vertex struct {
	ID    string
	Key   string
	Kind  coiled.Kind
	Color string
}

// dotEscaper escapes a DOT double-quoted string. Only quote and backslash
// are special there; a newline becomes the centered line break escape.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// Label is the DOT-quoted display label. Other runes pass through as UTF-8.
func (v Vertex) Label() string {
	return `"` + dotEscaper.Replace(v.Kind.String()+" "+v.Key) + `"`
}

func (v Vertex) Shape() string {
	if v.Kind == coiled.KindAtom {
		return "box"
	}
	return "ellipse"
}

// Edge points from a dependency to the selector reading it.
type Edge struct {
	From string
	To   string
}

// Graph is the upstream closure of some cells, ready to render with Dot.
type Graph struct {
	Vertices []Vertex
	Edges    []Edge
}

// Collect walks upstream from roots and returns every reachable cell once,
// in the order it was first reached.
func Collect(roots ...coiled.Node) *Graph {
	g := &Graph{}
	seen := map[coiled.Node]bool{}

	var visit func(n coiled.Node)
	visit = func(n coiled.Node) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		g.Vertices = append(g.Vertices, Vertex{
			ID:    n.ID().String(),
			Key:   n.Key(),
			Kind:  n.Kind(),
			Color: ColorFor(n.Key()),
		})
		for _, dep := range n.Dependencies() {
			visit(dep)
			g.Edges = append(g.Edges, Edge{From: dep.ID().String(), To: n.ID().String()})
		}
	}
	for _, r := range roots {
		visit(r)
	}
	return g
}

// ColorFor picks a palette entry from the key, so equal keys share a color.
func ColorFor(key string) string {
	return palette[xxhash.Sum64String(key)%uint64(len(palette))]
}
