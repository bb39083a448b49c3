package host

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// OSHost is the real, filesystem-backed Host implementation.
type OSHost struct {
	caseSensitive bool

	mu       sync.Mutex
	watchers *fsnotify.Watcher
	fileSubs map[string][]fileSub
	dirSubs  map[string]dirSub
	nextSub  int
}

type fileSub struct {
	id       int
	callback FileWatchCallback
}

type dirSub struct {
	recursive bool
	callback  DirWatchCallback
}

// NewOSHost creates a Host backed by the real filesystem. caseSensitive
// should come from ProbeCaseSensitivity for the target directory.
func NewOSHost(caseSensitive bool) (*OSHost, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	h := &OSHost{
		caseSensitive: caseSensitive,
		watchers:      w,
		fileSubs:      make(map[string][]fileSub),
		dirSubs:       make(map[string]dirSub),
	}
	go h.dispatch()
	return h, nil
}

func (h *OSHost) dispatch() {
	for event := range h.watchers.Events {
		kind := translateOp(event.Op)
		h.mu.Lock()
		path := filepath.Clean(event.Name)
		for _, sub := range h.fileSubs[path] {
			cb := sub.callback
			go cb(path, kind)
		}
		dir := filepath.Dir(path)
		if sub, ok := h.dirSubs[dir]; ok {
			cb := sub.callback
			go cb(path, kind)
		}
		h.mu.Unlock()
	}
}

func translateOp(op fsnotify.Op) EventKind {
	switch {
	case op&fsnotify.Create != 0:
		return Created
	case op&fsnotify.Remove != 0, op&fsnotify.Rename != 0:
		return Deleted
	default:
		return Changed
	}
}

func (h *OSHost) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (h *OSHost) ReadFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (h *OSHost) GetFileSize(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}

func (h *OSHost) GetCurrentDirectory() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return dir
}

func (h *OSHost) UseCaseSensitiveFileNames() bool {
	return h.caseSensitive
}

func (h *OSHost) CreateHash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func (h *OSHost) WatchFile(path string, callback FileWatchCallback) Watcher {
	path = filepath.Clean(path)
	h.mu.Lock()
	_, already := h.fileSubs[path]
	h.nextSub++
	id := h.nextSub
	h.fileSubs[path] = append(h.fileSubs[path], fileSub{id: id, callback: callback})
	if !already {
		_ = h.watchers.Add(path)
	}
	h.mu.Unlock()

	return newWatcher(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.fileSubs[path]
		for i, sub := range subs {
			if sub.id == id {
				subs = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(subs) == 0 {
			delete(h.fileSubs, path)
			_ = h.watchers.Remove(path)
		} else {
			h.fileSubs[path] = subs
		}
	})
}

func (h *OSHost) WatchDirectory(path string, recursive bool, callback DirWatchCallback) Watcher {
	path = filepath.Clean(path)
	h.mu.Lock()
	h.dirSubs[path] = dirSub{recursive: recursive, callback: callback}
	_ = h.watchers.Add(path)
	if recursive {
		_ = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil || !d.IsDir() || p == path {
				return nil
			}
			_ = h.watchers.Add(p)
			return nil
		})
	}
	h.mu.Unlock()

	return newWatcher(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.dirSubs, path)
		_ = h.watchers.Remove(path)
	})
}

// Close stops the underlying fsnotify watcher. Not part of the Host
// interface; callers that own an OSHost for the lifetime of the process
// call it on shutdown.
func (h *OSHost) Close() error {
	return h.watchers.Close()
}
