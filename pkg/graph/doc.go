// Package graph provides the JSON summary of drawio documents.
//
// The summary is a node-link view used for API responses, caching, and
// scripting. It is deliberately lossy: it carries ids, kinds, labels, styles
// and bounds, but not wrapper attributes, opaque content or waypoints. Use
// pkg/io when a document has to be written back.
//
// # Core Types
//
//   - [Graph]: one entry per page
//   - [Page]: cell counts, layers, nodes and edges of a page
//   - [Node], [Edge]: vertices and connectors
//   - [Layout]: a page rendered as a node-link diagram
//
// # Graph Serialization
//
// Graphs use a simple node-link JSON format:
//
//	{
//	  "pages": [{
//	    "id": "p1",
//	    "counts": {"root": 1, "layer": 1, "shape": 2, "edge": 1},
//	    "nodes": [{"id": "a", "kind": "shape"}, {"id": "b", "kind": "shape"}],
//	    "edges": [{"id": "e", "from": "a", "to": "b"}]
//	  }]
//	}
//
// Common operations:
//
//	summary := graph.FromDocument(doc)           // Document → Graph
//	data, _ := graph.MarshalGraph(doc)           // Document → []byte
//	doc, _ := graph.ReadGraphFile("page.json")   // File → Document
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
