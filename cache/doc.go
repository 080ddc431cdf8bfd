// Package cache provides the bounded, per-class output caches used by
// memoized components.
//
// A Store holds at most a fixed number of entries and evicts in insertion
// order (FIFO), never by recency: reading an entry does not extend its life.
// Every Store registers itself with a Registry at construction time so that
// all live stores can be flushed together.
//
// Keys are derived from component input only, via a Keyer. DefaultKeyer
// hashes a canonical JSON encoding with SHA-256; PackedKeyer hashes a sorted
// msgpack encoding with xxhash. Memo ties a Store and a Keyer together and is
// what components call on every memoized render.
package cache
