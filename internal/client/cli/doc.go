// Package cli provides the interactive marketplace command-line client.
//
// It drives the client core (app.App) from a REPL: sign in, browse and apply
// to jobs, read notifications, and inspect the offline queue. A background
// connectivity watcher switches the prompt between online and offline mode;
// mutations made while offline are queued and replayed on reconnect.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
