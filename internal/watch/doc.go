// Package watch notifies a callback when a single file is modified.
//
// # Overview
//
// The watcher subscribes to the file's parent directory rather than the
// file itself. Editors that save atomically (write a temporary file, then
// rename it over the original) replace the inode, which would silently end
// a watch placed on the file. Events for other names in the directory are
// ignored.
//
// # Debouncing
//
// A save usually produces several events in quick succession. After the
// first relevant event the watcher waits for the settle delay; every
// further event restarts the delay. The callback then runs once, in the
// watcher's goroutine, so callbacks never overlap.
//
// # Readiness
//
// A quiet event stream does not prove the writer has finished. WaitStable
// polls the file's size and modification time and returns once they have
// held still for a quiet interval, or fails after a timeout.
package watch
