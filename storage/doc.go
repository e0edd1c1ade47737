// Package storage is the durable key/value layer behind the client token
// and the mock user store. Values are opaque byte blobs, normally JSON.
//
// # Backends
//
//   - MemoryBackend: process-local map, used in tests and one-shot CLI runs.
//   - FileBackend: one JSON file per key under a directory.
//   - RedisBackend: go-redis client with a key prefix.
//
// # What this package must NOT do
//
//   - Interpret the values it stores.
//   - Log on behalf of callers. Backends return errors; TokenStorage is the
//     only type here that swallows them, because a broken token store must
//     degrade to "signed out" rather than fail the caller.
package storage
