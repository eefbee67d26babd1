// Package api is the typed surface of the marketplace backend.
//
// Each backend operation is one method on Client. Every call goes through
// the transport pipeline (token injection, cache-busting, retry) and every
// response is validated before it is returned, so callers never see a
// half-decoded body: a malformed response fails with
// transport.ErrMalformedResponse.
//
// Endpoint paths are exported so the offline queue can record and replay
// mutating calls by path.
package api
