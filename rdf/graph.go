package rdf

// Graph is an insertion-ordered set of triples.
// The zero value is not usable; create graphs with NewGraph.
type Graph struct {
	triples []Triple
	index   map[string]struct{}
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: map[string]struct{}{}}
}

// Add inserts t and reports whether it was not already present.
func (g *Graph) Add(t Triple) bool {
	key := t.String()
	if _, ok := g.index[key]; ok {
		return false
	}
	g.index[key] = struct{}{}
	g.triples = append(g.triples, t)
	return true
}

// Contains reports whether t is in the graph.
func (g *Graph) Contains(t Triple) bool {
	_, ok := g.index[t.String()]
	return ok
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int { return len(g.triples) }

// Triples returns the triples in insertion order. The slice must not be modified.
func (g *Graph) Triples() []Triple { return g.triples }

// Quads returns the triples as quads in the default graph.
func (g *Graph) Quads() []Quad {
	quads := make([]Quad, len(g.triples))
	for i, t := range g.triples {
		quads[i] = Quad{S: t.S, P: t.P, O: t.O}
	}
	return quads
}

// MergeQuads copies the subject, predicate and object of every quad into a
// fresh graph. Graph names are dropped, so statements from the default graph
// and all named graphs end up in a single default graph; statements that only
// differed by graph name collapse into one.
//
// Older JSON-LD framing implementations only frame the default graph
// correctly; callers use this to hand the framer the union of all statements.
func MergeQuads(quads []Quad) *Graph {
	g := NewGraph()
	for _, q := range quads {
		g.Add(q.ToTriple())
	}
	return g
}
