package layout

import (
	"sort"

	"github.com/vanderheijden86/archlens/pkg/model"

	"gonum.org/v1/gonum/graph/simple"
)

// NeighborIndex answers "which entities are directly connected to X",
// treating connections as undirected.
type NeighborIndex struct {
	g     *simple.UndirectedGraph
	ids   map[string]int64
	names map[int64]string
}

// NewNeighborIndex builds an index over the given entities. Connections with
// an unknown endpoint and self loops are ignored.
func NewNeighborIndex(entities []model.Entity, conns []model.Connection) *NeighborIndex {
	idx := &NeighborIndex{
		g:     simple.NewUndirectedGraph(),
		ids:   make(map[string]int64, len(entities)),
		names: make(map[int64]string, len(entities)),
	}
	for _, e := range entities {
		if _, dup := idx.ids[e.ID]; dup {
			continue
		}
		n := idx.g.NewNode()
		idx.g.AddNode(n)
		idx.ids[e.ID] = n.ID()
		idx.names[n.ID()] = e.ID
	}
	for _, c := range conns {
		from, okFrom := idx.ids[c.Source]
		to, okTo := idx.ids[c.Target]
		if !okFrom || !okTo || from == to {
			continue
		}
		idx.g.SetEdge(idx.g.NewEdge(simple.Node(from), simple.Node(to)))
	}
	return idx
}

// Neighbors returns the ids adjacent to id, sorted. Unknown ids have none.
func (n *NeighborIndex) Neighbors(id string) []string {
	if n == nil {
		return nil
	}
	nid, ok := n.ids[id]
	if !ok {
		return nil
	}
	var out []string
	it := n.g.From(nid)
	for it.Next() {
		out = append(out, n.names[it.Node().ID()])
	}
	sort.Strings(out)
	return out
}

// Degree returns the number of distinct neighbors of id.
func (n *NeighborIndex) Degree(id string) int {
	if n == nil {
		return 0
	}
	nid, ok := n.ids[id]
	if !ok {
		return 0
	}
	return n.g.From(nid).Len()
}
