package projectset

import "pscoord/internal/host"

// PresenceEntry is the per-canonical-config-path cache of: whether the
// path exists on disk, which open scripts' upward searches have visited
// it (and whether each is an inferred-root tracker), whether a Configured
// project currently adopts it, and an optional watcher.
//
// State derives from the fields rather than being stored redundantly:
//   - Absent:        no trackers, ConfiguredProjectName == "".
//   - Ghost:         trackers exist, none isRoot, ConfiguredProjectName == "".
//   - Ghost-watched: trackers exist, >=1 isRoot, ConfiguredProjectName == "".
//   - Adopted:       ConfiguredProjectName != "" (watcher is always absent).
type PresenceEntry struct {
	Exists                bool
	Tracking              map[string]bool // script path -> isInferredRoot
	Watcher               host.Watcher
	ConfiguredProjectName string
}

func newPresenceEntry() *PresenceEntry {
	return &PresenceEntry{Tracking: make(map[string]bool)}
}

// HasInferredRootTracker reports whether any tracker is an inferred-root.
func (e *PresenceEntry) HasInferredRootTracker() bool {
	for _, isRoot := range e.Tracking {
		if isRoot {
			return true
		}
	}
	return false
}

// IsAdopted reports whether a Configured project currently owns this path.
func (e *PresenceEntry) IsAdopted() bool {
	return e.ConfiguredProjectName != ""
}

// IsAbsent reports whether the entry has no reason to exist: an entry
// exists whenever either a Configured project for that path exists or at
// least one open file's upward search has visited that path.
func (e *PresenceEntry) IsAbsent() bool {
	return !e.IsAdopted() && len(e.Tracking) == 0
}

// PresenceTable is the coordinator's full config-presence cache (C3),
// keyed by canonical configuration-file path.
type PresenceTable struct {
	entries map[string]*PresenceEntry
}

// NewPresenceTable creates an empty table.
func NewPresenceTable() *PresenceTable {
	return &PresenceTable{entries: make(map[string]*PresenceEntry)}
}

// GetOrCreate returns the entry for path, creating one (with Exists read
// from the host) if absent. Used by upward search: every probed path gets
// a presence entry, created if missing.
func (t *PresenceTable) GetOrCreate(path string, h host.Host) *PresenceEntry {
	if e, ok := t.entries[path]; ok {
		return e
	}
	e := newPresenceEntry()
	e.Exists = h.FileExists(path)
	t.entries[path] = e
	return e
}

// Get returns the entry for path, if any.
func (t *PresenceTable) Get(path string) (*PresenceEntry, bool) {
	e, ok := t.entries[path]
	return e, ok
}

// Delete removes the entry for path entirely (only valid when IsAbsent).
func (t *PresenceTable) Delete(path string) {
	delete(t.entries, path)
}

// PruneAbsent removes every entry that has become Absent, closing any
// stray watcher first (there should not be one, by invariant, but this
// keeps GC defensive against the invariant already having been checked
// elsewhere).
func (t *PresenceTable) PruneAbsent() {
	for path, e := range t.entries {
		if e.IsAbsent() {
			if e.Watcher != nil {
				e.Watcher.Close()
				e.Watcher = nil
			}
			delete(t.entries, path)
		}
	}
}

// AddTracker records that scriptPath's upward search visited path, with
// isRoot indicating whether scriptPath is currently an Inferred project's
// sole root. Returns the entry so the caller can arm/disarm the real host
// watcher to match the new state.
func (t *PresenceTable) AddTracker(path, scriptPath string, isRoot bool) *PresenceEntry {
	e := t.entries[path]
	if e == nil {
		e = newPresenceEntry()
		t.entries[path] = e
	}
	e.Tracking[scriptPath] = isRoot
	return e
}

// RemoveTracker drops scriptPath from path's tracker set.
func (t *PresenceTable) RemoveTracker(path, scriptPath string) {
	e := t.entries[path]
	if e == nil {
		return
	}
	delete(e.Tracking, scriptPath)
}

// PathsTrackedBy returns every config path that scriptPath currently
// tracks. Used when a script closes or is removed, to know which presence
// entries need RemoveTracker and possibly a watcher re-sync.
func (t *PresenceTable) PathsTrackedBy(scriptPath string) []string {
	var out []string
	for path, e := range t.entries {
		if _, ok := e.Tracking[scriptPath]; ok {
			out = append(out, path)
		}
	}
	return out
}

// ShouldWatch reports whether the watcher-lifecycle state machine wants a
// watcher present for e right now: Ghost-watched (no project, >=1
// inferred-root tracker). Adopted and plain Ghost entries want none.
func (e *PresenceEntry) ShouldWatch() bool {
	return !e.IsAdopted() && e.HasInferredRootTracker()
}
