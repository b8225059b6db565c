// Package tokenstore persists the dashboard's credential record: the bearer
// token, or a marker that the session is cookie-backed (OIDC).
//
// # Backends
//
//   - [RedisStore] keeps one encoded record per client id, so several
//     dashboard processes for the same operator share a login.
//   - [MemoryStore] keeps the record in process.
//
// Records are encoded in a small versioned binary format ([Encode] /
// [Decode]) so the Redis value can evolve without breaking readers.
package tokenstore
