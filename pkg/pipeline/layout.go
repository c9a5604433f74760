package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/drawkit/pkg/cache"
	"github.com/matzehuels/drawkit/pkg/errors"
	"github.com/matzehuels/drawkit/pkg/graph"
	"github.com/matzehuels/drawkit/pkg/model"
	"github.com/matzehuels/drawkit/pkg/render/nodelink"
)

// LayoutWithCacheInfo builds the node-link layout of one page and reports
// whether it came from the cache. opts.PageID selects the page; empty
// selects the first.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, data []byte, opts Options) (graph.Layout, bool, error) {
	if err := r.prepare(&opts); err != nil {
		return graph.Layout{}, false, err
	}
	key := r.Keyer.LayoutKey(cache.Hash(data), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if l, err := graph.UnmarshalLayout(cached); err == nil {
				return l, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}

	doc, err := decode(ctx, data, opts)
	if err != nil {
		return graph.Layout{}, false, err
	}
	l, err := GenerateLayout(doc, opts)
	if err != nil {
		return graph.Layout{}, false, err
	}

	if encoded, err := graph.MarshalLayout(l); err == nil {
		_ = r.Cache.Set(ctx, key, encoded, cache.TTLLayout)
	}
	return l, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, data []byte, opts Options) (graph.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, data, opts)
	return l, err
}

// GenerateLayout builds the layout of the page selected by opts without
// touching any cache.
func GenerateLayout(doc *model.Document, opts Options) (graph.Layout, error) {
	opts.SetDefaults()
	p, err := SelectPage(doc, opts.PageID)
	if err != nil {
		return graph.Layout{}, err
	}
	start := time.Now()
	l := nodelink.Layout(p, opts.RenderOptions(), opts.Engine)
	opts.Logger.Debug("computed layout",
		"page", p.ID,
		"nodes", len(l.Nodes),
		"edges", len(l.Edges),
		"duration", time.Since(start))
	return l, nil
}

// SelectPage returns the page with id, or the first page when id is empty.
// A page can also be picked by name.
func SelectPage(doc *model.Document, id string) (*model.Page, error) {
	if len(doc.Pages) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "document has no pages")
	}
	if id == "" {
		return doc.Pages[0], nil
	}
	if p, ok := doc.Page(id); ok {
		return p, nil
	}
	if p, ok := doc.PageByName(id); ok {
		return p, nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no page with id or name %q", id).WithPage(id)
}
