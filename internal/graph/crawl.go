package graph

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/models"
	"github.com/mixview/mixview/internal/shared"
)

// RelatedFetcher fetches related content for a seed entity.
type RelatedFetcher interface {
	Related(ctx context.Context, q api.RelatedQuery) (*api.RelatedResponse, error)
}

// CrawlOpts contains configuration for breadth-first graph expansion.
type CrawlOpts struct {
	Depth      int     // Expansion rounds beyond the seed (default: 1, max: 3)
	TopN       int     // Related results requested per node (default: 10)
	MaxNodes   int     // Node budget, expansion stops once reached (default: 150)
	NumWorkers int     // Concurrent fetches (default: 4, max: 8)
	RateLimit  float64 // Requests per second (default: 5)
}

// CrawlResult summarizes a finished crawl.
type CrawlResult struct {
	Graph         *Graph
	Seed          models.Node
	Depth         int // Deepest level actually expanded
	Fetches       int
	FailedFetches int
	Cached        *CacheResult // nil when no cacher was configured
}

type crawlJob struct {
	node models.Node
}

type crawlFetch struct {
	node models.Node
	resp *api.RelatedResponse
	err  error
}

// Crawler expands a seed node into a related-content graph.
//
// Each level fans the current frontier out through a worker pool, merges
// the per-seed subgraphs and carries the newly discovered artists into the
// next level. Albums and tracks are expanded only when they are the seed
// itself; deeper levels follow artists, which is where the related fan-out
// lives.
type Crawler struct {
	fetcher RelatedFetcher
	cacher  Cacher
}

// NewCrawler creates a crawler. cacher may be nil to skip persistence.
func NewCrawler(fetcher RelatedFetcher, cacher Cacher) *Crawler {
	return &Crawler{fetcher: fetcher, cacher: cacher}
}

// Crawl expands seed into a graph, caching it afterwards when a cacher is
// configured. Individual fetch failures are tolerated and counted; the crawl
// fails only when nothing beyond the seed could be fetched.
func (c *Crawler) Crawl(ctx context.Context, prog chan<- ProgressUpdate, seed models.Node, opts CrawlOpts) (*CrawlResult, error) {
	if c.fetcher == nil {
		return nil, fmt.Errorf("%w: no backend client", shared.ErrServiceUnavailable)
	}
	if seed.Name == "" {
		return nil, fmt.Errorf("%w: seed node needs a name", shared.ErrInvalidInput)
	}
	if seed.Kind == "" {
		seed.Kind = models.KindArtist
	}

	if opts.Depth <= 0 {
		opts.Depth = 1
	}
	if opts.Depth > 3 {
		opts.Depth = 3
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = 150
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	g := New()
	g.AddNode(seed)
	result := &CrawlResult{Graph: g, Seed: seed}
	frontier := []models.Node{seed}

	c.sendProgress(prog, seedUpdate(seed.Name))

	for depth := 1; depth <= opts.Depth && len(frontier) > 0; depth++ {
		if g.Order() >= opts.MaxNodes {
			break
		}
		c.sendProgress(prog, expandLevelUpdate(depth, opts.Depth, len(frontier)))

		jobs := make(chan crawlJob, len(frontier))
		fetches := make(chan crawlFetch, len(frontier))

		var wg sync.WaitGroup
		for i := 0; i < opts.NumWorkers; i++ {
			wg.Add(1)
			go c.fetchWorker(ctx, &wg, limiter, jobs, fetches, opts.TopN)
		}

		go func(nodes []models.Node) {
			for _, n := range nodes {
				select {
				case <-ctx.Done():
					close(jobs)
					return
				default:
				}
				jobs <- crawlJob{node: n}
			}
			close(jobs)
		}(frontier)

		go func() {
			wg.Wait()
			close(fetches)
		}()

		var next []models.Node
		completed := 0
		for f := range fetches {
			completed++
			result.Fetches++
			if f.err != nil {
				result.FailedFetches++
				c.sendProgress(prog, expandFailedUpdate(completed, len(frontier), f.node.Name, f.err))
				continue
			}

			added := c.merge(g, f.node, f.resp, opts.MaxNodes, &next)
			c.sendProgress(prog, expandedUpdate(completed, len(frontier), f.node.Name, added))
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Depth = depth
		frontier = next
	}

	if g.Order() <= 1 && result.FailedFetches > 0 {
		return result, fmt.Errorf("%w: no related content fetched", shared.ErrServiceUnavailable)
	}

	if c.cacher != nil {
		c.sendProgress(prog, cacheStartUpdate(g.Order(), g.Size()))
		cached, err := g.Cache(c.cacher)
		result.Cached = cached
		if err != nil {
			return result, fmt.Errorf("crawl completed but caching failed: %w", err)
		}
		c.sendProgress(prog, cachedUpdate(cached.Nodes, cached.Edges))
	}
	return result, nil
}

// fetchWorker fetches related content for seeds from the jobs channel.
func (c *Crawler) fetchWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan crawlJob,
	fetches chan<- crawlFetch,
	topN int,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			fetches <- crawlFetch{node: job.node, err: ctx.Err()}
			continue
		default:
		}

		if err := limiter.Wait(ctx); err != nil {
			fetches <- crawlFetch{node: job.node, err: err}
			continue
		}

		resp, err := c.fetcher.Related(ctx, relatedQuery(job.node, topN))
		fetches <- crawlFetch{node: job.node, resp: resp, err: err}
	}
}

// merge folds one seed's related response into g, respecting the node
// budget, and appends newly discovered artists to the next frontier.
// Returns the number of nodes added.
func (c *Crawler) merge(g *Graph, seed models.Node, resp *api.RelatedResponse, maxNodes int, next *[]models.Node) int {
	sub := FromRelated(seed, resp)
	added := 0
	for _, n := range sub.Nodes {
		if g.Order() >= maxNodes {
			break
		}
		if !g.AddNode(n) {
			continue
		}
		added++
		if n.Kind == models.KindArtist {
			*next = append(*next, n)
		}
	}
	for _, e := range sub.Edges {
		if g.HasKey(e.From) && g.HasKey(e.To) {
			g.AddEdge(e)
		}
	}
	return added
}

// relatedQuery maps a node onto the aggregator's seed parameters.
func relatedQuery(n models.Node, topN int) api.RelatedQuery {
	q := api.RelatedQuery{TopN: topN}
	switch n.Kind {
	case models.KindAlbum:
		q.AlbumTitle = n.Name
	case models.KindTrack:
		q.TrackTitle = n.Name
	default:
		q.ArtistName = n.Name
	}
	return q
}

// sendProgress sends a progress update without blocking when the channel
// is full or nil.
func (c *Crawler) sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}
