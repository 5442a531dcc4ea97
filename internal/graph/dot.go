package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mixview/mixview/internal/models"
)

// MarshalJSON renders the graph as a {"nodes": [...], "edges": [...]}
// document in insertion order.
func (g *Graph) MarshalJSON() ([]byte, error) {
	nodes := g.Nodes
	if nodes == nil {
		nodes = []models.Node{}
	}
	edges := g.Edges
	if edges == nil {
		edges = []models.Edge{}
	}
	return json.Marshal(struct {
		Nodes []models.Node `json:"nodes"`
		Edges []models.Edge `json:"edges"`
	}{nodes, edges})
}

// DOT renders the graph in Graphviz DOT format. Node keys become node ids,
// shapes distinguish kinds and edges carry their origin as label.
func (g *Graph) DOT(name string) string {
	if name == "" {
		name = "mixview"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", name)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [fontname=\"Helvetica\" fontsize=11];\n")
	b.WriteString("  edge [fontname=\"Helvetica\" fontsize=9];\n")
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "  %q [label=%q shape=%s];\n", Key(n), dotLabel(n), dotShape(n.Kind))
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "  %q -> %q [label=%q weight=%g];\n", e.From, e.To, e.Origin, e.Weight)
	}
	b.WriteString("}\n")
	return b.String()
}

// WriteDOT writes the DOT rendering of the graph to w.
func (g *Graph) WriteDOT(w io.Writer, name string) error {
	_, err := io.WriteString(w, g.DOT(name))
	return err
}

func dotLabel(n models.Node) string {
	label := n.Name
	if n.Kind == models.KindAlbum && n.Year > 0 {
		label = fmt.Sprintf("%s (%d)", n.Name, n.Year)
	}
	if n.Kind != models.KindArtist && n.Artist != "" {
		label += "\n" + n.Artist
	}
	return label
}

func dotShape(kind string) string {
	switch kind {
	case models.KindAlbum:
		return "box"
	case models.KindTrack:
		return "note"
	default:
		return "ellipse"
	}
}
