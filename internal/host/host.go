// Package host is the collaborator contract for filesystem reads, watches,
// hashing, case-folding and current-directory queries. Everything above
// this package talks to the Host interface only; the real OS-backed
// implementation and the in-memory fake used by tests both satisfy it.
package host

import "time"

// EventKind is the kind of change a watcher callback reports.
type EventKind int

const (
	Created EventKind = iota
	Changed
	Deleted
)

func (k EventKind) String() string {
	switch k {
	case Created:
		return "created"
	case Changed:
		return "changed"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// FileWatchCallback is invoked when a watched file changes.
type FileWatchCallback func(path string, kind EventKind)

// DirWatchCallback is invoked when an entry inside a watched directory
// changes. path is the entry that changed, not the watched directory.
type DirWatchCallback func(path string, kind EventKind)

// Watcher is a handle to an active watch. Close releases the underlying
// resource; it is idempotent.
type Watcher interface {
	Close()
}

// Host is the set of primitives the coordinator needs from its environment.
type Host interface {
	FileExists(path string) bool
	ReadFile(path string) (contents string, ok bool)
	GetFileSize(path string) (size int64, ok bool)
	GetCurrentDirectory() string
	UseCaseSensitiveFileNames() bool
	CreateHash(data string) string

	WatchFile(path string, callback FileWatchCallback) Watcher
	WatchDirectory(path string, recursive bool, callback DirWatchCallback) Watcher
}

// watcherFunc adapts a plain close function to the Watcher interface.
type watcherFunc struct {
	close func()
	done  bool
}

func (w *watcherFunc) Close() {
	if w.done {
		return
	}
	w.done = true
	if w.close != nil {
		w.close()
	}
}

func newWatcher(close func()) Watcher {
	return &watcherFunc{close: close}
}

// pollInterval is not read by either Host implementation: FakeHost fires
// watcher callbacks synchronously and OSHost is event-driven (fsnotify).
const pollInterval = 50 * time.Millisecond
