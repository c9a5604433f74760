package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/drawkit/pkg/cache"
	"github.com/matzehuels/drawkit/pkg/graph"
	drawio "github.com/matzehuels/drawkit/pkg/io"
	"github.com/matzehuels/drawkit/pkg/model"
	"github.com/matzehuels/drawkit/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// prepare applies defaults, validates, and sets the runner's logger on
// options that have none.
func (r *Runner) prepare(opts *Options) error {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// Decode parses data into a document. Every page is validated on the way.
func (r *Runner) Decode(ctx context.Context, data []byte, opts Options) (*model.Document, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}
	return decode(ctx, data, opts)
}

func decode(ctx context.Context, data []byte, opts Options) (*model.Document, error) {
	hooks := observability.Pipeline()
	hooks.OnDecodeStart(ctx, opts.Source, len(data))
	start := time.Now()

	doc, err := drawio.UnmarshalDrawio(data, opts.IOOptions())
	pages, cells := countCells(doc)
	hooks.OnDecodeComplete(ctx, opts.Source, pages, cells, time.Since(start), err)
	if err != nil {
		opts.Logger.Debug("decode failed", "source", opts.Source, "error", err)
		return nil, err
	}

	opts.Logger.Debug("decoded document",
		"source", opts.Source,
		"pages", pages,
		"cells", cells,
		"duration", time.Since(start))
	return doc, nil
}

// Encode serializes doc with the storage options in opts.
func (r *Runner) Encode(ctx context.Context, doc *model.Document, opts Options) ([]byte, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}
	return encode(ctx, doc, opts)
}

func encode(ctx context.Context, doc *model.Document, opts Options) ([]byte, error) {
	hooks := observability.Pipeline()
	pages, _ := countCells(doc)
	hooks.OnEncodeStart(ctx, pages)
	start := time.Now()

	data, err := drawio.MarshalDrawio(doc, opts.IOOptions())
	hooks.OnEncodeComplete(ctx, len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("encoded document",
		"pages", pages,
		"bytes", len(data),
		"compression", opts.Compression,
		"duration", time.Since(start))
	return data, nil
}

// InspectWithCacheInfo summarizes a document and reports whether the
// summary came from the cache. Summaries are keyed by the hash of data.
func (r *Runner) InspectWithCacheInfo(ctx context.Context, data []byte, opts Options) (graph.Graph, bool, error) {
	if err := r.prepare(&opts); err != nil {
		return graph.Graph{}, false, err
	}
	key := r.Keyer.SummaryKey(cache.Hash(data))

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if g, err := graph.UnmarshalGraph(cached); err == nil {
				opts.Logger.Debug("summary cache hit", "source", opts.Source)
				return g, true, nil
			}
		}
	}

	doc, err := decode(ctx, data, opts)
	if err != nil {
		return graph.Graph{}, false, err
	}
	g := graph.FromDocument(doc)

	if encoded, err := json.Marshal(g); err == nil {
		if err := r.Cache.Set(ctx, key, encoded, cache.TTLSummary); err != nil {
			opts.Logger.Warn("cache write failed", "key", cache.KeyType(key), "error", err)
		}
	}
	return g, false, nil
}

// Inspect is a convenience wrapper that calls InspectWithCacheInfo and discards the cache hit info.
func (r *Runner) Inspect(ctx context.Context, data []byte, opts Options) (graph.Graph, error) {
	g, _, err := r.InspectWithCacheInfo(ctx, data, opts)
	return g, err
}

// Convert decodes data and encodes it again with the storage options in
// opts, e.g. to inflate or compress every page.
func (r *Runner) Convert(ctx context.Context, data []byte, opts Options) ([]byte, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}
	doc, err := decode(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	out, err := encode(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("converted document",
		"source", opts.Source,
		"in", len(data),
		"out", len(out),
		"compression", opts.Compression)
	return out, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func countCells(doc *model.Document) (pages, cells int) {
	if doc == nil {
		return 0, 0
	}
	for _, p := range doc.Pages {
		if p.Model != nil {
			cells += p.Model.Len()
		}
	}
	return len(doc.Pages), cells
}
