package coordinator

import (
	"path/filepath"

	"pscoord/internal/coordlog"
	"pscoord/internal/host"
	"pscoord/internal/projectset"
)

func projectKeyConfigured(configPath string) projectset.ProjectKey {
	return projectset.ProjectKey{Kind: projectset.Configured, Name: configPath}
}

// detachAllScripts removes p from every one of its roots' membership sets.
// The root list is copied first since detaching mutates it.
func (c *Coordinator) detachAllScripts(p *projectset.Project) {
	roots := append([]string(nil), p.Roots...)
	for _, r := range roots {
		if s, ok := c.registry.Get(r); ok {
			s.RemoveMembership(p.Key)
		}
	}
}

// reconcileScriptProjects re-runs containment determination for an
// already-known open script whose upward search may now resolve
// differently: a Ghost-watched config path transitioned, or an Adopted
// config's project was just removed. External memberships are untouched —
// they do not depend on upward search.
func (c *Coordinator) reconcileScriptProjects(scriptPath string) {
	script, ok := c.registry.Get(scriptPath)
	if !ok || !script.Open {
		return
	}

	hasExternal := false
	for key := range script.Memberships {
		if key.Kind == projectset.External {
			hasExternal = true
		}
	}

	for key := range copyKeys(script.Memberships) {
		if key.Kind != projectset.Configured {
			continue
		}
		p, ok := c.projects.Get(key)
		script.RemoveMembership(key)
		if !ok {
			continue
		}
		p.OpenRefCount--
		if p.OpenRefCount <= 0 {
			c.removeConfiguredProject(p)
		}
	}

	if !hasExternal {
		dir := filepath.Dir(script.CanonicalPath)
		if cfgPath, found := c.upwardConfigSearch(scriptPath, dir, "", false); found {
			cp := c.findOrCreateConfiguredProject(cfgPath)
			if cp.HasRoot(scriptPath) {
				script.AddMembership(cp.Key)
				cp.OpenRefCount++
			}
		}
	}

	c.rebalanceAfterOpen(script)
}

func copyKeys(m map[projectset.ProjectKey]bool) map[projectset.ProjectKey]bool {
	out := make(map[projectset.ProjectKey]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

// onScriptFilesystemEvent handles a filesystem event for a known,
// currently-watched script path: Deleted detaches from every containing
// project and removes the script; Changed reloads from disk unless the
// script is open (client owns content) or its membership is already empty
// (it is simply dropped).
func (c *Coordinator) onScriptFilesystemEvent(scriptPath string, kind host.EventKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	script, ok := c.registry.Get(scriptPath)
	if !ok {
		c.log.Warn("watch event for unknown script path, ignoring", coordlog.ScriptFields(scriptPath))
		return
	}

	switch kind {
	case host.Deleted:
		if script.Watcher != nil {
			script.Watcher.Close()
			script.Watcher = nil
		}
		for key := range copyKeys(script.Memberships) {
			p, ok := c.projects.Get(key)
			script.RemoveMembership(key)
			if !ok {
				continue
			}
			switch key.Kind {
			case projectset.Inferred:
				if len(p.Roots) == 1 && p.Roots[0] == scriptPath {
					c.teardownProject(p)
					continue
				}
				p.RemoveRoot(scriptPath)
			default:
				p.RemoveRoot(scriptPath)
			}
			c.markPending(p)
		}
		c.registry.Remove(scriptPath)

	case host.Changed, host.Created:
		if script.Open {
			return
		}
		if script.MembershipEmpty() {
			if script.Watcher != nil {
				script.Watcher.Close()
				script.Watcher = nil
			}
			c.registry.Remove(scriptPath)
			return
		}
		if contents, ok := c.host.ReadFile(scriptPath); ok {
			script.Contents = contents
		}
		for key := range script.Memberships {
			if p, ok := c.projects.Get(key); ok {
				c.markPending(p)
			}
		}
	}
}
