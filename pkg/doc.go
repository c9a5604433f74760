// Package pkg provides the core libraries of drawkit, a lossless reader and
// writer for draw.io (diagrams.net) documents.
//
// # Overview
//
// A drawio file is an <mxfile> holding one <diagram> per page. Page content
// is either inline <mxGraphModel> XML or a base64 raw DEFLATE payload of
// that XML. drawkit decodes both forms into a typed cell graph, checks its
// integrity and writes it back so that unmodified documents come out byte
// for byte as they went in.
//
// The data flow:
//
//	drawio XML
//	     ↓
//	[io] (parse mxfile, inflate pages via [compress], decode styles via [style])
//	     ↓
//	[model] (Document → Page → GraphModel → Cell, validated)
//	     ↓
//	[io] (serialize, re-compress per page)
//	     ↓
//	drawio XML
//
// # Quick Start
//
//	doc, err := io.ImportDrawio("architecture.drawio", io.Options{})
//	if err != nil {
//	    return err // *errors.Error with code, page and cell
//	}
//
//	page := doc.Pages[0]
//	api := model.NewShape("1", "API", style.Decode("rounded=1;whiteSpace=wrap;"))
//	api.Geometry = &model.Geometry{X: 40, Y: 40, Width: 120, Height: 60}
//	if err := page.Model.AddCell(api); err != nil {
//	    return err
//	}
//
//	return io.ExportDrawio(doc, "architecture.drawio", io.Options{})
//
// # Main Packages
//
// ## Codec
//
// [style] - Ordered style maps and the "key=value;flag;" string codec.
//
// [compress] - Base64 + raw DEFLATE page payloads with an expansion ceiling.
//
// ## Model
//
// [model] - Documents, pages, cells and the integrity validator.
//
// [io] - The drawio XML parser and serializer.
//
// [errors] - Structured errors with codes, categories and cell context.
//
// ## Tooling
//
// [graph] - Lossy JSON summary of a document for APIs and caching.
//
// [render/nodelink] - Graphviz previews of a page; [render] converts SVG
// to PDF and PNG.
//
// [pipeline] - Decode, validate, convert and render with result caching,
// shared by the CLI and the HTTP server.
//
// [cache] - File, Redis and MongoDB result caches keyed by content hash.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// # Testing
//
//	go test ./pkg/...                 # All tests
//	go test -run Example ./pkg/...    # Examples only
//
// Redis and MongoDB cache tests run when DRAWKIT_TEST_REDIS or
// DRAWKIT_TEST_MONGO names a reachable server.
//
// [io]: https://pkg.go.dev/github.com/matzehuels/drawkit/pkg/io
// [compress]: https://pkg.go.dev/github.com/matzehuels/drawkit/pkg/compress
// [style]: https://pkg.go.dev/github.com/matzehuels/drawkit/pkg/style
// [model]: https://pkg.go.dev/github.com/matzehuels/drawkit/pkg/model
// [errors]: https://pkg.go.dev/github.com/matzehuels/drawkit/pkg/errors
// [graph]: https://pkg.go.dev/github.com/matzehuels/drawkit/pkg/graph
// [render]: https://pkg.go.dev/github.com/matzehuels/drawkit/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/drawkit/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/drawkit/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/drawkit/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/drawkit/pkg/observability
package pkg
