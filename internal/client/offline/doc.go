// Package offline keeps the client usable without a connection.
//
// Queue records mutating calls that could not reach the backend and replays
// them in enqueue order once connectivity returns. It also owns a
// read-through cache of GET responses with per-entry expiry. Both live in the
// durable key-value store under fixed keys: the whole queue under
// "@offline_queue" and each cache entry under "@cache_<key>".
//
// Monitor tracks reachability, from periodic probes or from reports by the
// host platform, and triggers exactly one replay per offline to online
// transition.
//
// # Error Handling
//
// ErrQueued tells a caller that its action was stored for later instead of
// sent. ErrOfflineNoCache is returned by WithOfflineSupport when there is no
// connection and nothing usable in the cache. Actions that fail replay
// MaxRetries times are dropped; the drop is reported to the DropHandler,
// logged and counted, never returned to a caller.
package offline
