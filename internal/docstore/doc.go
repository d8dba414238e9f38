// Package docstore provides a concurrent-safe, file-backed store holding a
// single JSON document.
//
// # Overview
//
// A [Store] owns one [jsondoc.Value] behind a sync.RWMutex shared by every
// handle returned by [Store.Clone]. Callers either take a detached
// [jsondoc.View] with [Store.Snapshot], mutate it freely and splice it back
// with [Store.Merge], or hold the lock through a guarded view: [ReadView]
// (shared) or [WriteView] (exclusive).
//
// # Concurrency: Pessimistic Locking
//
// A WriteView holds the exclusive lock from [Store.Update] until
// [WriteView.Release]; every mutation is spliced into the locked document
// before the call returns, so no retry is ever needed. [Store.View] and
// [Store.Modify] scope the guard to a callback. Opening a second WriteView on
// the same goroutine before releasing the first deadlocks.
//
// Merge re-resolves the view's path against the current document: when the
// document changed shape since the snapshot, it fails with
// jsondoc.ErrInvalidPath or jsondoc.ErrIndexOutOfBounds and leaves the
// document untouched.
//
// # Persistence
//
// Bytes go through a [Backend]. [FileBackend] writes atomically through a
// temporary file and a rename; [MemoryBackend] keeps everything in memory.
// [Store.Write] saves pretty-printed JSON. [WithAutoFlush] saves after
// committed mutations, throttled by a token bucket. [Store.Watch] reloads the
// document when another process rewrites the file.
package docstore
