// Package realtime maintains the notification channel to the backend.
//
// A Channel is a websocket connection authenticated by a token query
// parameter. It moves through disconnected, connecting and connected; after
// an unexpected close it reconnects with a linear, capped delay
// (ReconnectBaseDelay * attempt) up to MaxReconnectAttempts times. An
// explicit Disconnect suppresses reconnection until the next Connect.
//
// Inbound frames are JSON envelopes {"type": ..., "data": ...}. Each frame is
// handed to every handler registered for its type and then to the wildcard
// handlers, one after another on the reader goroutine, before the next frame
// is read. A panicking handler is recovered and logged; the remaining
// handlers still run.
package realtime
