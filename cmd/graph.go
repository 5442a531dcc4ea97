package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/formatter"
	"github.com/mixview/mixview/internal/graph"
	"github.com/mixview/mixview/internal/models"
	"github.com/mixview/mixview/internal/repositories"
	"github.com/mixview/mixview/internal/shared"
	"github.com/urfave/cli/v3"
)

// GraphExport builds a related-content graph around a seed and writes it to
// disk as DOT or JSON. By default the graph is crawled live from the backend
// and cached; --cached rebuilds it from the local cache without network calls.
func (r *Runner) GraphExport(ctx context.Context, cmd *cli.Command) error {
	seed := seedNode(cmd)
	if seed.Name == "" {
		return fmt.Errorf("%w: one of --artist, --album, or --track is required", shared.ErrMissingArgument)
	}

	format := cmd.String("format")
	outDir := cmd.String("out")
	name := exportName(seed.Name)

	var g *graph.Graph
	switch {
	case cmd.Bool("cached"):
		cached, err := r.cachedGraph(seed)
		if err != nil {
			return err
		}
		g = cached
	case cmd.Bool("combined"):
		combined, err := r.combinedGraph(ctx, seed)
		if err != nil {
			return err
		}
		g = combined
	default:
		result, err := r.crawlGraph(ctx, seed, cmd.Int("depth"))
		if err != nil {
			return err
		}
		g = result.Graph
	}

	if g.Order() == 0 {
		return fmt.Errorf("%w: nothing to export for %q", shared.ErrInvalidInput, seed.Name)
	}

	export, err := formatter.WriteGraphExport(g, name, format, outDir)
	if err != nil {
		return err
	}

	r.writePlain("✓ Exported %d nodes and %d edges to %s\n", g.Order(), g.Size(), export.Directory)
	for _, file := range export.Files {
		r.writePlain("  %s\n", file)
	}
	if export.ManifestPath != "" {
		r.writePlain("  %s\n", export.ManifestPath)
	}
	return nil
}

// crawlGraph expands the seed through the backend, streaming progress to the
// terminal and caching the result when the local database is reachable.
func (r *Runner) crawlGraph(ctx context.Context, seed models.Node, depth int) (*graph.CrawlResult, error) {
	var cacher graph.Cacher
	db, closeDB, err := r.openDatabase()
	if err != nil {
		r.logger.Warn("graph cache unavailable, crawl will not be cached", "error", err)
	} else {
		defer closeDB()
		cacher = repositories.NewGraphCacheAdapter(
			repositories.NewNodeRepository(db),
			repositories.NewEdgeRepository(db),
		)
	}

	crawler := graph.NewCrawler(r.client, cacher)

	r.writePlain("Crawling related content for %s...\n\n", seed.Name)

	progressCh := make(chan graph.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case graph.ExpandSeed:
				r.writePlain("🌱 %s\n", update.Message)
			case graph.CacheGraph:
				r.writePlain("💾 %s\n", update.Message)
			default:
				r.writePlain("🔍 %s\n", update.Message)
			}
		}
	}()

	result, err := crawler.Crawl(ctx, progressCh, seed, graph.CrawlOpts{
		Depth: depth,
		TopN:  r.config.Search.Limit,
	})
	close(progressCh)
	if err != nil {
		return nil, err
	}

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("  Crawl Complete\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Seed:     %s (%s)\n", result.Seed.Name, result.Seed.Kind)
	r.writePlain("Nodes:    %d\n", result.Graph.Order())
	r.writePlain("Edges:    %d\n", result.Graph.Size())
	r.writePlain("Depth:    %d\n", result.Depth)
	r.writePlain("Fetches:  %d (%d failed)\n", result.Fetches, result.FailedFetches)
	if result.Cached != nil {
		r.writePlain("Cached:   %d nodes, %d edges\n", result.Cached.Nodes, result.Cached.Edges)
	}
	r.writePlain("\n")

	return result, nil
}

// combinedGraph fetches the backend's merged node set for the seed in one
// call and links albums and tracks under their owners. The result is cached
// when the local database is reachable.
func (r *Runner) combinedGraph(ctx context.Context, seed models.Node) (*graph.Graph, error) {
	q := api.RelatedQuery{}
	switch seed.Kind {
	case models.KindAlbum:
		q.AlbumTitle = seed.Name
	case models.KindTrack:
		q.TrackTitle = seed.Name
	default:
		q.ArtistName = seed.Name
	}

	r.writePlain("Fetching combined view for %s...\n", seed.Name)

	resp, err := r.client.Combined(ctx, q)
	if err != nil {
		return nil, err
	}

	g := graph.FromCombined(resp)
	r.logger.Info("built combined graph", "nodes", g.Order(), "edges", g.Size(), "seed", seed.Name)

	if db, closeDB, err := r.openDatabase(); err != nil {
		r.logger.Warn("graph cache unavailable, combined view will not be cached", "error", err)
	} else {
		defer closeDB()
		adapter := repositories.NewGraphCacheAdapter(
			repositories.NewNodeRepository(db),
			repositories.NewEdgeRepository(db),
		)
		if cached, err := g.Cache(adapter); err != nil {
			r.logger.Warn("failed to cache combined graph", "error", err)
		} else {
			r.writePlain("💾 Cached %d nodes and %d edges\n", cached.Nodes, cached.Edges)
		}
	}

	return g, nil
}

// cachedGraph rebuilds the subgraph around the seed artist from the local
// cache. Edge endpoints are stored as persisted ids and translated back to
// graph keys.
func (r *Runner) cachedGraph(seed models.Node) (*graph.Graph, error) {
	db, closeDB, err := r.openDatabase()
	if err != nil {
		return nil, err
	}
	defer closeDB()

	nodeRepo := repositories.NewNodeRepository(db)
	edgeRepo := repositories.NewEdgeRepository(db)

	persisted, err := nodeRepo.List(map[string]any{})
	if err != nil {
		return nil, err
	}
	if len(persisted) == 0 {
		return nil, fmt.Errorf("%w: graph cache is empty, run 'mixview graph export' without --cached first", shared.ErrInvalidInput)
	}

	g := graph.New()
	keys := make(map[string]string, len(persisted))
	for _, pn := range persisted {
		keys[pn.ID()] = pn.Kind() + "/" + pn.Normalized()
		g.AddNode(pn.Node())
	}

	edges, err := edgeRepo.List(map[string]any{})
	if err != nil {
		return nil, err
	}
	for _, pe := range edges {
		from, okFrom := keys[pe.From()]
		to, okTo := keys[pe.To()]
		if !okFrom || !okTo {
			continue
		}
		g.AddEdge(models.Edge{From: from, To: to, Weight: pe.Weight(), Origin: pe.Origin()})
	}

	r.logger.Info("rebuilt graph from cache", "nodes", g.Order(), "edges", g.Size(), "seed", seed.Name)
	return g, nil
}

// GraphStats reports what the local graph cache currently holds.
func (r *Runner) GraphStats(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	nodeRepo := repositories.NewNodeRepository(db)
	edgeRepo := repositories.NewEdgeRepository(db)

	total, err := nodeRepo.Count("")
	if err != nil {
		return err
	}
	artists, err := nodeRepo.Count(models.KindArtist)
	if err != nil {
		return err
	}
	albums, err := nodeRepo.Count(models.KindAlbum)
	if err != nil {
		return err
	}
	tracks, err := nodeRepo.Count(models.KindTrack)
	if err != nil {
		return err
	}
	edgeCount, err := edgeRepo.Count()
	if err != nil {
		return err
	}

	r.writePlainHeader("Graph Cache")
	r.writePlain("Nodes:   %d (%d artists, %d albums, %d tracks)\n", total, artists, albums, tracks)
	r.writePlain("Edges:   %d\n", edgeCount)
	r.writePlain("Path:    %s\n", r.config.Database.Path)
	return nil
}

// seedNode builds the crawl seed from the command flags. Artist wins when
// several are given.
func seedNode(cmd *cli.Command) models.Node {
	if artist := cmd.String("artist"); artist != "" {
		return models.Node{Kind: models.KindArtist, Name: artist}
	}
	if album := cmd.String("album"); album != "" {
		return models.Node{Kind: models.KindAlbum, Name: album}
	}
	if track := cmd.String("track"); track != "" {
		return models.Node{Kind: models.KindTrack, Name: track}
	}
	return models.Node{}
}

// exportName derives a filesystem-safe export name from a seed name.
func exportName(seed string) string {
	name := strings.ToLower(strings.TrimSpace(seed))
	mapper := func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		default:
			return -1
		}
	}
	name = strings.Map(mapper, name)
	if name == "" {
		name = "graph"
	}
	return "mixview_" + name
}

// graphCommand exports and inspects the local discovery graph
func graphCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "graph",
		Usage: "Build, export, and inspect related-content graphs",
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "Crawl a seed and export the graph as DOT or JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Seed artist name",
					},
					&cli.StringFlag{
						Name:  "album",
						Usage: "Seed album title",
					},
					&cli.StringFlag{
						Name:  "track",
						Usage: "Seed track title",
					},
					&cli.IntFlag{
						Name:    "depth",
						Aliases: []string{"d"},
						Usage:   "Expansion depth beyond the seed (1-3)",
						Value:   1,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: dot or json",
						Value:   "dot",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output directory (defaults to the export name)",
					},
					&cli.BoolFlag{
						Name:  "cached",
						Usage: "Rebuild from the local cache instead of crawling",
					},
					&cli.BoolFlag{
						Name:  "combined",
						Usage: "Use the backend's merged view in a single fetch",
					},
				},
				Action: r.GraphExport,
			},
			{
				Name:   "stats",
				Usage:  "Show local graph cache counts",
				Action: r.GraphStats,
			},
		},
	}
}
