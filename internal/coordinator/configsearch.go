package coordinator

import (
	"path/filepath"

	"pscoord/internal/compilerfe"
	"pscoord/internal/host"
	"pscoord/internal/paths"
	"pscoord/internal/projectset"
)

// upwardConfigSearch walks from dir toward the filesystem root (bounded by
// boundedRoot if non-empty), probing each level for the primary config
// name then the secondary one. For every probed path it creates a
// presence entry if missing and records scriptPath as a tracker. The
// first existing path wins and the search stops there; if none exist, ok
// is false.
func (c *Coordinator) upwardConfigSearch(scriptPath, dir, boundedRoot string, isRoot bool) (configPath string, ok bool) {
	for _, level := range paths.WalkUpward(dir, boundedRoot) {
		for _, name := range c.cfg.ConfigFileNames {
			candidate := filepath.Join(level, name)
			entry := c.presence.GetOrCreate(candidate, c.host)
			c.armPresenceTracker(candidate, entry, scriptPath, isRoot)
			if entry.Exists {
				return candidate, true
			}
		}
	}
	return "", false
}

// armPresenceTracker records scriptPath as a tracker of entry and applies
// the watcher-lifecycle transition for a tracker being added.
func (c *Coordinator) armPresenceTracker(path string, entry *projectset.PresenceEntry, scriptPath string, isRoot bool) {
	entry.Tracking[scriptPath] = isRoot
	c.syncPresenceWatcher(path, entry)
}

// syncPresenceWatcher arms or disarms entry's watcher so it matches
// ShouldWatch(): present only for Ghost-watched.
func (c *Coordinator) syncPresenceWatcher(path string, entry *projectset.PresenceEntry) {
	want := entry.ShouldWatch()
	has := entry.Watcher != nil
	if want && !has {
		p := path
		entry.Watcher = c.host.WatchFile(path, func(changedPath string, kind host.EventKind) {
			c.onConfigFileEvent(p, kind)
		})
	} else if !want && has {
		entry.Watcher.Close()
		entry.Watcher = nil
	}
}

// findOrCreateConfiguredProject returns the existing Configured project for
// configPath, or parses and creates one. Creation applies the size gate,
// registers the config-file watcher (transitioning the presence entry to
// Adopted), and registers a directory watcher for each wildcard directory
// if the language service ends up enabled. No type-root watchers are
// registered.
func (c *Coordinator) findOrCreateConfiguredProject(configPath string) *projectset.Project {
	key := projectset.ProjectKey{Kind: projectset.Configured, Name: configPath}
	if p, ok := c.projects.Get(key); ok {
		return p
	}

	parsed := compilerfe.ParseConfigFile(configPath, c.reader)
	p := projectset.NewConfiguredProject(configPath, parsed)
	c.projects.Put(p)
	c.applySizeGate(p, p.Roots)
	c.adoptConfigEntry(configPath, p)

	for dir := range parsed.WildcardDirectories {
		if p.LanguageServiceEnabled {
			c.armWildcardWatcher(p, dir)
		}
	}

	if len(parsed.Diagnostics) > 0 {
		c.events.ConfigFileDiagnostics("", configPath, parsed.Diagnostics)
	}
	c.emitTelemetry(p)
	return p
}

// adoptConfigEntry transitions configPath's presence entry to Adopted:
// any ghost watcher on it is cancelled.
func (c *Coordinator) adoptConfigEntry(configPath string, p *projectset.Project) {
	entry := c.presence.GetOrCreate(configPath, c.host)
	entry.Exists = true
	entry.ConfiguredProjectName = configPath
	if entry.Watcher != nil {
		entry.Watcher.Close()
		entry.Watcher = nil
	}
	p.Watchers[configPath] = c.host.WatchFile(configPath, func(changedPath string, kind host.EventKind) {
		c.onAdoptedConfigEvent(configPath, kind)
	})
}

// removeConfiguredProject tears down p and transitions its presence entry
// back to Ghost/Ghost-watched/Absent.
func (c *Coordinator) removeConfiguredProject(p *projectset.Project) {
	configPath := p.Key.Name
	p.CloseWatchers()
	c.sizegate.Forget(configPath)
	c.projects.Remove(p.Key)
	delete(c.pending, p.Key)

	entry, ok := c.presence.Get(configPath)
	if !ok {
		return
	}
	entry.ConfiguredProjectName = ""
	c.syncPresenceWatcher(configPath, entry)
	if entry.IsAbsent() {
		c.presence.Delete(configPath)
	}
}

func (c *Coordinator) armWildcardWatcher(p *projectset.Project, dir string) {
	if _, ok := p.Watchers[dir]; ok {
		return
	}
	p.Watchers[dir] = c.host.WatchDirectory(dir, true, func(changedPath string, kind host.EventKind) {
		c.onWildcardDirEvent(p, changedPath, kind)
	})
}

// reloadConfiguredProject re-parses p's config file and applies the result
// in place immediately, marking p dirty so its graph is rebuilt on the next
// update-graph call. A reload that now fits re-enables the language
// service and re-arms wildcard-directory watchers.
func (c *Coordinator) reloadConfiguredProject(p *projectset.Project) {
	p.PendingReload = false
	parsed := compilerfe.ParseConfigFile(p.Key.Name, c.reader)
	p.CompilerOptions = parsed.CompilerOptions
	p.CompileOnSave = parsed.CompileOnSave
	p.Parsed = parsed
	p.Diagnostics = parsed.Diagnostics

	oldRoots := p.Roots
	newRoots := append([]string(nil), parsed.FileNames...)
	p.Roots = newRoots
	p.MarkDirty()

	newSet := make(map[string]bool, len(newRoots))
	for _, r := range newRoots {
		newSet[r] = true
	}
	var orphaned []string
	for _, r := range oldRoots {
		if !newSet[r] {
			if s, ok := c.registry.Get(r); ok {
				s.RemoveMembership(p.Key)
				if s.Open && s.MembershipEmpty() {
					orphaned = append(orphaned, r)
				}
			}
		}
	}
	for _, r := range newRoots {
		if s, ok := c.registry.Get(r); ok {
			s.AddMembership(p.Key)
		}
	}

	wasEnabled := p.LanguageServiceEnabled
	c.applySizeGate(p, p.Roots)
	if p.LanguageServiceEnabled && !wasEnabled {
		for dir := range parsed.WildcardDirectories {
			c.armWildcardWatcher(p, dir)
		}
	}

	if len(parsed.Diagnostics) > 0 {
		c.events.ConfigFileDiagnostics("", p.Key.Name, parsed.Diagnostics)
	}

	for _, path := range orphaned {
		c.rebalanceOrphan(path)
	}
}
