// Package cli provides the interactive UserDash command-line client.
//
// It wires configuration, the local SQLite cache, the remote user
// collection, the identity provider and an interactive REPL that supports
// online/offline operation. Typical flow: restore a cached session, start a
// background connectivity watcher, and execute user commands.
//
// Key features:
//   - Sign up / Login / Logout (online with offline fallback)
//   - Contact details form and contact update
//   - Cached user list and monthly signup dashboard
//   - Manual sync and dashboard export
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
