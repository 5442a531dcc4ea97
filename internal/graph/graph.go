// package graph assembles related-music graphs from backend results and
// prepares them for caching and export.
package graph

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/models"
	"github.com/mixview/mixview/internal/normalize"
)

// Edge origins, by the relation that produced the edge.
const (
	OriginRelated   = "related"
	OriginRelease   = "release"
	OriginPerforms  = "performs"
	OriginTracklist = "tracklist"
)

// Graph is an in-memory node/edge set with insertion-order slices and
// set-backed dedupe. Nodes are unique by [Key]; edges by endpoint pair.
type Graph struct {
	Nodes []models.Node
	Edges []models.Edge

	nodeKeys mapset.Set[string]
	edgeKeys mapset.Set[string]
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodeKeys: mapset.NewSet[string](),
		edgeKeys: mapset.NewSet[string](),
	}
}

// Identity returns the node's identity within its kind. Artists collapse to
// their normalized name, albums and tracks scope their name by the owning
// artist so that same-titled works by different artists stay distinct.
func Identity(n models.Node) string {
	switch n.Kind {
	case models.KindAlbum:
		return normalize.Normalize(n.Name) + "|" + normalize.Normalize(n.Artist)
	case models.KindTrack:
		title := normalize.NormalizeStrict(normalize.RemoveVersionInfo(n.Name))
		return title + "|" + normalize.Normalize(n.Artist)
	default:
		return normalize.Normalize(n.Name)
	}
}

// Key returns the graph-wide unique key for a node, "kind/identity".
// Edge endpoints hold keys until the graph is cached.
func Key(n models.Node) string {
	return n.Kind + "/" + Identity(n)
}

// AddNode inserts a node unless an equivalent one is already present.
// Reports whether the node was added.
func (g *Graph) AddNode(n models.Node) bool {
	if n.Name == "" {
		return false
	}
	if !g.nodeKeys.Add(Key(n)) {
		return false
	}
	g.Nodes = append(g.Nodes, n)
	return true
}

// AddEdge inserts a directed edge between two node keys. Self-loops and
// duplicate endpoint pairs are dropped. A zero weight defaults to 1.
func (g *Graph) AddEdge(e models.Edge) bool {
	if e.From == "" || e.To == "" || e.From == e.To {
		return false
	}
	if e.Weight == 0 {
		e.Weight = 1
	}
	if !g.edgeKeys.Add(e.From + "->" + e.To) {
		return false
	}
	g.Edges = append(g.Edges, e)
	return true
}

// Has reports whether an equivalent node is already in the graph.
func (g *Graph) Has(n models.Node) bool {
	return g.nodeKeys.Contains(Key(n))
}

// HasKey reports whether a node with the given key is in the graph.
func (g *Graph) HasKey(key string) bool {
	return g.nodeKeys.Contains(key)
}

// Merge folds another graph's nodes and edges into g, keeping dedupe.
func (g *Graph) Merge(other *Graph) {
	if other == nil {
		return
	}
	for _, n := range other.Nodes {
		g.AddNode(n)
	}
	for _, e := range other.Edges {
		g.AddEdge(e)
	}
}

// Order returns the node count.
func (g *Graph) Order() int { return len(g.Nodes) }

// Size returns the edge count.
func (g *Graph) Size() int { return len(g.Edges) }

// ArtistNode converts a backend artist into a graph node.
func ArtistNode(a api.Artist) models.Node {
	return models.Node{
		ServiceID: a.ID.String(),
		Kind:      models.KindArtist,
		Name:      a.Name,
		URL:       a.AppleLink,
		ImageURL:  a.ImageURL,
		Source:    a.Source,
	}
}

// AlbumNode converts a backend album into a graph node. A missing release
// year is recovered from the title when one is embedded there.
func AlbumNode(a api.Album) models.Node {
	n := models.Node{
		ServiceID: a.ID.String(),
		Kind:      models.KindAlbum,
		Name:      a.Title,
		Year:      a.ReleaseYear,
		URL:       a.AppleLink,
		ImageURL:  a.ImageURL,
		Source:    a.Source,
	}
	if a.Artist != nil {
		n.Artist = a.Artist.Name
	}
	if n.Year == 0 {
		if year, ok := normalize.ExtractYear(a.Title); ok {
			n.Year = year
		}
	}
	return n
}

// TrackNode converts a backend track into a graph node.
func TrackNode(t api.Track) models.Node {
	n := models.Node{
		ServiceID: t.ID.String(),
		Kind:      models.KindTrack,
		Name:      t.Title,
		URL:       t.AppleMusicURL,
		Source:    t.Source,
	}
	if n.URL == "" {
		n.URL = t.AppleLink
	}
	if t.Artist != nil {
		n.Artist = t.Artist.Name
	}
	if t.Album != nil {
		n.Album = t.Album.Title
	}
	return n
}

// FromRelated builds a graph rooted at seed from a related-content response.
// Every result node is linked from the seed with a "related" edge; albums and
// tracks are additionally linked under their owning artist when that artist
// is part of the graph.
func FromRelated(seed models.Node, resp *api.RelatedResponse) *Graph {
	g := New()
	g.AddNode(seed)
	if resp == nil {
		return g
	}
	seedKey := Key(seed)
	for _, a := range resp.Artists {
		n := ArtistNode(a)
		if n.Name == "" {
			continue
		}
		g.AddNode(n)
		g.AddEdge(models.Edge{From: seedKey, To: Key(n), Origin: OriginRelated})
	}
	for _, al := range resp.Albums {
		n := AlbumNode(al)
		if n.Name == "" {
			continue
		}
		g.AddNode(n)
		g.AddEdge(models.Edge{From: seedKey, To: Key(n), Origin: OriginRelated})
		g.linkOwners(n)
	}
	for _, tr := range resp.Tracks {
		n := TrackNode(tr)
		if n.Name == "" {
			continue
		}
		g.AddNode(n)
		g.AddEdge(models.Edge{From: seedKey, To: Key(n), Origin: OriginRelated})
		g.linkOwners(n)
	}
	return g
}

// FromCombined builds a graph from a combined multi-service response,
// linking albums and tracks under their owning artists and albums.
func FromCombined(resp *api.CombinedResponse) *Graph {
	g := New()
	if resp == nil {
		return g
	}
	for _, a := range resp.Artists {
		g.AddNode(ArtistNode(a))
	}
	for _, al := range resp.Albums {
		n := AlbumNode(al)
		if n.Name == "" {
			continue
		}
		g.AddNode(n)
		g.linkOwners(n)
	}
	for _, tr := range resp.Tracks {
		n := TrackNode(tr)
		if n.Name == "" {
			continue
		}
		g.AddNode(n)
		g.linkOwners(n)
	}
	return g
}

// linkOwners adds ownership edges for an album or track node, creating the
// owning artist and album nodes when the response did not carry them.
func (g *Graph) linkOwners(n models.Node) {
	if n.Artist == "" {
		return
	}
	owner := models.Node{Kind: models.KindArtist, Name: n.Artist, Source: n.Source}
	g.AddNode(owner)
	switch n.Kind {
	case models.KindAlbum:
		g.AddEdge(models.Edge{From: Key(owner), To: Key(n), Origin: OriginRelease})
	case models.KindTrack:
		g.AddEdge(models.Edge{From: Key(owner), To: Key(n), Origin: OriginPerforms})
		if n.Album != "" {
			album := models.Node{Kind: models.KindAlbum, Name: n.Album, Artist: n.Artist, Source: n.Source}
			g.AddNode(album)
			g.AddEdge(models.Edge{From: Key(album), To: Key(n), Origin: OriginTracklist})
		}
	}
}
