package host

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"sort"
	"strings"
)

// FakeHost is an in-memory Host used by every coordinator test. Under the
// coordinator's single-threaded contract a test drives watcher callbacks
// synchronously rather than waiting on a real filesystem.
type FakeHost struct {
	caseSensitive bool
	cwd           string

	files map[string]string

	fileWatches map[string][]FileWatchCallback
	dirWatches  map[string][]DirWatchCallback
}

// NewFakeHost creates an empty in-memory host. caseSensitive mirrors
// UseCaseSensitiveFileNames.
func NewFakeHost(caseSensitive bool) *FakeHost {
	return &FakeHost{
		caseSensitive: caseSensitive,
		cwd:           "/",
		files:         make(map[string]string),
		fileWatches:   make(map[string][]FileWatchCallback),
		dirWatches:    make(map[string][]DirWatchCallback),
	}
}

func (h *FakeHost) key(path string) string {
	path = filepath.Clean(path)
	if h.caseSensitive {
		return path
	}
	return strings.ToLower(path)
}

// WriteFile creates or updates path with contents, firing Created on first
// write and Changed thereafter to any file watcher and to the watchers of
// every ancestor directory of path.
func (h *FakeHost) WriteFile(path, contents string) {
	k := h.key(path)
	_, existed := h.files[k]
	h.files[k] = contents

	kind := Changed
	if !existed {
		kind = Created
	}
	h.fireFile(path, kind)
	h.fireDir(path, kind)
}

// DeleteFile removes path, firing Deleted to its watchers and to the
// watchers of every ancestor directory. A no-op if path is unknown.
func (h *FakeHost) DeleteFile(path string) {
	k := h.key(path)
	if _, ok := h.files[k]; !ok {
		return
	}
	delete(h.files, k)
	h.fireFile(path, Deleted)
	h.fireDir(path, Deleted)
}

func (h *FakeHost) fireFile(path string, kind EventKind) {
	for _, cb := range h.fileWatches[h.key(path)] {
		if cb != nil {
			cb(filepath.Clean(path), kind)
		}
	}
}

func (h *FakeHost) fireDir(path string, kind EventKind) {
	dir := filepath.Dir(filepath.Clean(path))
	for {
		if cbs, ok := h.dirWatches[h.key(dir)]; ok {
			for _, cb := range cbs {
				if cb != nil {
					cb(filepath.Clean(path), kind)
				}
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}

func (h *FakeHost) FileExists(path string) bool {
	_, ok := h.files[h.key(path)]
	return ok
}

func (h *FakeHost) ReadFile(path string) (string, bool) {
	c, ok := h.files[h.key(path)]
	return c, ok
}

func (h *FakeHost) GetFileSize(path string) (int64, bool) {
	c, ok := h.files[h.key(path)]
	if !ok {
		return 0, false
	}
	return int64(len(c)), true
}

func (h *FakeHost) GetCurrentDirectory() string {
	return h.cwd
}

func (h *FakeHost) SetCurrentDirectory(dir string) {
	h.cwd = dir
}

func (h *FakeHost) UseCaseSensitiveFileNames() bool {
	return h.caseSensitive
}

func (h *FakeHost) CreateHash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func (h *FakeHost) WatchFile(path string, callback FileWatchCallback) Watcher {
	k := h.key(path)
	h.fileWatches[k] = append(h.fileWatches[k], callback)
	idx := len(h.fileWatches[k]) - 1
	return newWatcher(func() {
		cbs := h.fileWatches[k]
		if idx < len(cbs) {
			cbs[idx] = nil
		}
	})
}

func (h *FakeHost) WatchDirectory(path string, recursive bool, callback DirWatchCallback) Watcher {
	k := h.key(path)
	h.dirWatches[k] = append(h.dirWatches[k], callback)
	idx := len(h.dirWatches[k]) - 1
	return newWatcher(func() {
		cbs := h.dirWatches[k]
		if idx < len(cbs) {
			cbs[idx] = nil
		}
	})
}

// Glob lists every known file under dir. Used by compilerfe's default
// parser to resolve include patterns without a real filesystem walk.
func (h *FakeHost) Glob(dir string, recursive bool) []string {
	kdir := h.key(dir)
	var out []string
	for k, orig := range h.reverseKeys() {
		if strings.HasPrefix(k, kdir+"/") || k == kdir {
			if !recursive {
				rel := strings.TrimPrefix(k, kdir+"/")
				if strings.Contains(rel, "/") {
					continue
				}
			}
			out = append(out, orig)
		}
	}
	sort.Strings(out)
	return out
}

// reverseKeys returns a map from folded path to the original (display)
// path, reconstructed from GetFileSize-equivalent storage. FakeHost stores
// only folded keys, so the "original" path returned is the folded form;
// callers that need exact casing should avoid relying on Glob for that.
func (h *FakeHost) reverseKeys() map[string]string {
	out := make(map[string]string, len(h.files))
	for k := range h.files {
		out[k] = k
	}
	return out
}
