// Package cache stores derived artifacts of drawio documents: graph
// summaries, validation reports, node-link layouts and rendered images.
//
// Entries are keyed by a SHA-256 of the document bytes (see [Hash]) plus the
// options that shape the artifact (see [Keyer]), so a changed document never
// hits a stale entry.
//
// # Backends
//
//   - [FileCache]: JSON files under a directory, used by the CLI
//   - [RedisCache]: a shared Redis, used by the server
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: caching disabled
//
// [Open] picks a backend by name and wraps it with [NewInstrumented], which
// reports hits and misses through pkg/observability.
package cache
