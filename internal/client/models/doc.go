// Package models defines the client-side data shapes: stored credentials,
// the cached user profile, offline queue descriptors, cache entries,
// realtime envelopes and the typed backend responses.
//
// Response types implement Validate so malformed server payloads are
// rejected at the transport boundary instead of leaking zero values upward.
package models
