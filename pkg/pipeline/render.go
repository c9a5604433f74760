package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/drawkit/pkg/cache"
	"github.com/matzehuels/drawkit/pkg/graph"
	"github.com/matzehuels/drawkit/pkg/observability"
	"github.com/matzehuels/drawkit/pkg/render"
	"github.com/matzehuels/drawkit/pkg/render/nodelink"
)

// RenderWithCacheInfo renders a layout in every format of opts.Formats and
// reports whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, false, err
	}
	if l.Engine != "" {
		opts.Engine = l.Engine
	}

	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := RenderLayout(ctx, l, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// RenderLayout renders l in every requested format without caching. The
// SVG is produced once and reused for PDF and PNG conversion.
func RenderLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if l.DOT == "" {
		return nil, fmt.Errorf("nodelink layout missing DOT string")
	}
	opts.SetDefaults()

	hooks := observability.Pipeline()
	artifacts := make(map[string][]byte)
	var svg []byte

	for _, format := range opts.Formats {
		hooks.OnRenderStart(ctx, format)
		start := time.Now()

		var data []byte
		var err error
		if needsSVG(format) && svg == nil {
			svg, err = nodelink.RenderSVG(ctx, l.DOT, opts.Engine)
		}
		if err == nil {
			switch format {
			case FormatSVG:
				data = svg
			case FormatPNG:
				data, err = render.ToPNG(ctx, svg, opts.Scale)
			case FormatPDF:
				data, err = render.ToPDF(ctx, svg)
			case FormatDOT:
				data = []byte(l.DOT)
			case FormatJSON:
				data, err = graph.MarshalLayout(l)
			default:
				err = fmt.Errorf("unsupported format: %s", format)
			}
		}

		hooks.OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	opts.Logger.Debug("rendered outputs", "page", l.PageID, "formats", opts.Formats)
	return artifacts, nil
}

func needsSVG(format string) bool {
	return format == FormatSVG || format == FormatPNG || format == FormatPDF
}
