package coordinator

import (
	"pscoord/internal/coordlog"
	"pscoord/internal/host"
	"pscoord/internal/projectset"
)

// onConfigFileEvent handles a watcher callback for a Ghost-watched presence
// entry: any create/delete/change fires a reload pass over every tracking
// open file, since the upward search may now resolve differently.
func (c *Coordinator) onConfigFileEvent(configPath string, kind host.EventKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.presence.Get(configPath)
	if !ok {
		c.log.Warn("watch event for unknown config path, ignoring", coordlog.ConfigFields(configPath))
		return
	}
	entry.Exists = kind != host.Deleted

	trackers := make([]string, 0, len(entry.Tracking))
	for scriptPath := range entry.Tracking {
		trackers = append(trackers, scriptPath)
	}
	for _, scriptPath := range trackers {
		c.reconcileScriptProjects(scriptPath)
	}
}

// onAdoptedConfigEvent handles a watcher callback on an Adopted config
// entry: delete removes the Configured project and triggers reload over
// its trackers; create/change marks the project pending-reload and
// enqueues a graph-update.
func (c *Coordinator) onAdoptedConfigEvent(configPath string, kind host.EventKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := projectKeyConfigured(configPath)
	p, ok := c.projects.Get(key)
	if !ok {
		c.log.Warn("watch event for adopted config with no project, ignoring", coordlog.ConfigFields(configPath))
		return
	}

	if kind == host.Deleted {
		c.log.Info("adopted config deleted, tearing down project", coordlog.ProjectFields("configured", p.Key.Name))
		entry, _ := c.presence.Get(configPath)
		var trackers []string
		if entry != nil {
			entry.Exists = false
			for s := range entry.Tracking {
				trackers = append(trackers, s)
			}
		}
		c.detachAllScripts(p)
		c.removeConfiguredProject(p)
		for _, s := range trackers {
			c.reconcileScriptProjects(s)
		}
		return
	}

	p.PendingReload = true
	c.markPending(p)
}

// onWildcardDirEvent handles a directory-watch callback for a Configured
// project's wildcard include directories. A new or deleted file under the
// directory means the file list may have changed, so the project is marked
// pending-reload the same as an edit to the config file itself.
func (c *Coordinator) onWildcardDirEvent(p *projectset.Project, changedPath string, kind host.EventKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.projects.Get(p.Key); !ok {
		return
	}
	p.PendingReload = true
	c.markPending(p)
}
