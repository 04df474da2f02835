// Package cache stores fetched news pages so they can be served when the
// network is slow or down. A DiskCache persists zstd-compressed pages across
// runs; a MemoryCache keeps them for the lifetime of the process.
package cache
