package coordinator

import (
	"path/filepath"
	"sort"

	"pscoord/internal/coorderr"
	"pscoord/internal/compilerfe"
	"pscoord/internal/coordlog"
	"pscoord/internal/host"
	"pscoord/internal/projectset"
)

// OpenFileArg describes one file to open, as part of a batch (an
// ApplyChangesInOpenFiles "opens" entry) or a single call to
// OpenClientFile.
type OpenFileArg struct {
	Path            string
	Contents        *string
	ScriptKind      *compilerfe.ScriptKind
	ProjectRootPath string
}

// FileEdit is a single replace-range edit against an already-open script.
type FileEdit struct {
	Path    string
	Start   int
	End     int
	NewText string
}

// OpenClientFile is the central ingress for a client opening a file. It
// returns the canonical configuration file path adopted as the script's
// carrier, if upward search found one, and whether the script ended up
// belonging to at least one project (always true once rebalancing runs).
func (c *Coordinator) OpenClientFile(arg OpenFileArg) (configFileName string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.openClientFileLocked(arg)
}

func (c *Coordinator) openClientFileLocked(arg OpenFileArg) (string, bool) {
	c.log.Debug("client file opened", coordlog.ScriptFields(arg.Path))
	script := c.registry.GetOrCreate(arg.Path)
	if arg.Contents != nil {
		script.Contents = *arg.Contents
	}
	if arg.ScriptKind != nil {
		script.Kind = *arg.ScriptKind
	}
	script.Open = true
	if script.Watcher != nil {
		script.Watcher.Close()
		script.Watcher = nil
	}

	foundExternal := false
	for _, ext := range c.projects.ByKind(projectset.External) {
		if ext.HasRoot(script.NormalizedPath) {
			script.AddMembership(ext.Key)
			foundExternal = true
		}
	}

	configFileName := ""
	if !foundExternal {
		dir := filepath.Dir(script.CanonicalPath)
		if cfgPath, found := c.upwardConfigSearch(script.NormalizedPath, dir, arg.ProjectRootPath, false); found {
			configFileName = cfgPath
			cp := c.findOrCreateConfiguredProject(cfgPath)
			if cp.HasRoot(script.NormalizedPath) {
				script.AddMembership(cp.Key)
			}
		}
	}

	c.rebalanceAfterOpen(script)

	c.openFiles = append(c.openFiles, script.NormalizedPath)
	c.bumpOpenRefs(script)

	c.gcClosedOrphans()
	return configFileName, !script.MembershipEmpty()
}

// bumpOpenRefs increments OpenRefCount for every Configured/External
// project script currently belongs to.
func (c *Coordinator) bumpOpenRefs(script *projectset.Script) {
	for key := range script.Memberships {
		if key.Kind == projectset.External || key.Kind == projectset.Configured {
			if p, ok := c.projects.Get(key); ok {
				p.OpenRefCount++
			}
		}
	}
}

// CloseClientFile closes a previously opened client file. Closing an
// unknown path is a no-op.
func (c *Coordinator) CloseClientFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeClientFileLocked(path)
}

func (c *Coordinator) closeClientFileLocked(path string) {
	script, ok := c.registry.Get(path)
	if !ok {
		return
	}
	c.log.Debug("client file closed", coordlog.ScriptFields(path))
	script.Open = false

	c.removeOpenFile(script.NormalizedPath)

	if !script.HasMixedContent {
		p := script.CanonicalPath
		script.Watcher = c.host.WatchFile(p, func(changedPath string, kind host.EventKind) {
			c.onScriptFilesystemEvent(script.NormalizedPath, kind)
		})
	}

	memberships := make([]projectset.ProjectKey, 0, len(script.Memberships))
	for key := range script.Memberships {
		memberships = append(memberships, key)
	}
	for _, key := range memberships {
		p, ok := c.projects.Get(key)
		if !ok {
			script.RemoveMembership(key)
			continue
		}
		switch key.Kind {
		case projectset.External, projectset.Configured:
			p.OpenRefCount--
			script.RemoveMembership(key)
			if p.OpenRefCount <= 0 && key.Kind == projectset.Configured {
				c.removeConfiguredProject(p)
			}
		case projectset.Inferred:
			if len(p.Roots) == 1 && p.Roots[0] == script.NormalizedPath {
				script.RemoveMembership(key)
				c.teardownProject(p)
				if c.cfg.SingleInferredProject && key == c.singleInferredKey {
					c.hasSingleInferred = false
				}
			} else {
				p.RemoveRoot(script.NormalizedPath)
				script.RemoveMembership(key)
			}
		}
	}

	for _, orphanPath := range c.openFilesWithEmptyMembership() {
		c.rebalanceOrphan(orphanPath)
	}
	c.pruneRedundantInferred()

	c.rearmOrphanedConfigWatchers(script.NormalizedPath)
	c.gcClosedOrphans()
}

// rearmOrphanedConfigWatchers drops scriptPath as a tracker of every config
// path its upward search had visited (trackers only ever concern open
// files, §3) and re-evaluates the watcher-armed state of each affected
// entry, deleting it entirely once it has no reason left to exist.
func (c *Coordinator) rearmOrphanedConfigWatchers(scriptPath string) {
	for _, path := range c.presence.PathsTrackedBy(scriptPath) {
		c.presence.RemoveTracker(path, scriptPath)
		entry, ok := c.presence.Get(path)
		if !ok {
			continue
		}
		c.syncPresenceWatcher(path, entry)
		if entry.IsAbsent() {
			c.presence.Delete(path)
		}
	}
}

func (c *Coordinator) removeOpenFile(path string) {
	for i, p := range c.openFiles {
		if p == path {
			c.openFiles = append(c.openFiles[:i], c.openFiles[i+1:]...)
			return
		}
	}
}

func (c *Coordinator) openFilesWithEmptyMembership() []string {
	var out []string
	for _, path := range c.openFiles {
		if s, ok := c.registry.Get(path); ok && s.MembershipEmpty() {
			out = append(out, path)
		}
	}
	return out
}

// gcClosedOrphans deletes every closed script with empty membership,
// deferred from a prior close.
func (c *Coordinator) gcClosedOrphans() {
	for _, s := range c.registry.CollectClosedOrphans() {
		if s.Watcher != nil {
			s.Watcher.Close()
		}
		c.registry.Remove(s.NormalizedPath)
	}
}

// ApplyChangesInOpenFiles applies a batch in the fixed order opens, then
// edits (each file's edits applied in reverse offset order), then closes.
// Any opens or closes force a full reconciliation by running the debounce
// queue immediately; pure edits rely on the scheduler to flush.
func (c *Coordinator) ApplyChangesInOpenFiles(opens []OpenFileArg, edits []FileEdit, closes []string) {
	c.mu.Lock()
	forced := len(opens) > 0 || len(closes) > 0

	for _, o := range opens {
		c.openClientFileLocked(o)
	}

	byFile := make(map[string][]FileEdit)
	for _, e := range edits {
		byFile[e.Path] = append(byFile[e.Path], e)
	}
	for path, fileEdits := range byFile {
		c.applyEditsLocked(path, fileEdits)
	}

	for _, p := range closes {
		c.closeClientFileLocked(p)
	}
	c.mu.Unlock()

	if forced {
		c.Flush()
	}
}

// applyEditsLocked applies fileEdits to path in reverse Start order so
// earlier spans keep their coordinates, and marks the script's containing
// projects dirty. The edit-unknown-file case is a fatal assertion: the
// session layer is expected to have opened it first.
func (c *Coordinator) applyEditsLocked(path string, fileEdits []FileEdit) {
	script, ok := c.registry.Get(path)
	coorderr.Assert(ok && script.Open, "EDIT_UNKNOWN_FILE", path)
	if len(fileEdits) == 0 {
		return
	}

	sorted := append([]FileEdit(nil), fileEdits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })
	for _, e := range sorted {
		if e.Start < 0 || e.End > len(script.Contents) || e.Start > e.End {
			continue
		}
		script.Contents = script.Contents[:e.Start] + e.NewText + script.Contents[e.End:]
	}

	c.changedFiles = append(c.changedFiles, path)
	for key := range script.Memberships {
		if p, ok := c.projects.Get(key); ok {
			c.markPending(p)
		}
	}
}
