// Package daemon maintains the session with the MPD music daemon.
//
// A Session bundles one command connection and one idle watcher.
// Commands (enqueue, skip, stop, play, clear, status queries, artwork
// fetches) are serialized and fail fast with ErrUnavailable while the
// daemon is unreachable. The idle watcher translates MPD subsystem
// notifications into Change values on the Events channel.
//
// The session owns reconnection: when either connection drops, Run
// redials with exponential backoff capped at a configured ceiling,
// re-authenticates, and emits a synthetic Player change so consumers
// resynchronize their view of the daemon.
//
// # Usage
//
//	sess := daemon.NewSession(settings.MPDAddr(), settings.MPDPassword,
//	    settings.ReconnectMaxBackoff(), log)
//	go sess.Run(ctx)
//
//	for change := range sess.Events() {
//	    switch change.Kind {
//	    case daemon.Player:
//	        // fetch current song
//	    case daemon.Queue:
//	        // refresh queue length
//	    }
//	}
package daemon
