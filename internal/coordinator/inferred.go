package coordinator

import (
	"pscoord/internal/coordlog"
	"pscoord/internal/projectset"
)

// rebalanceOrphan ensures scriptPath belongs to some project by creating
// (or, in single-inferred mode, reusing) an Inferred project rooted at it,
// and rebuilds that project's graph eagerly.
func (c *Coordinator) rebalanceOrphan(scriptPath string) {
	script, ok := c.registry.Get(scriptPath)
	if !ok || !script.MembershipEmpty() {
		return
	}

	if c.cfg.SingleInferredProject {
		var p *projectset.Project
		if c.hasSingleInferred {
			p, ok = c.projects.Get(c.singleInferredKey)
		}
		if !ok || p == nil {
			key := projectset.ProjectKey{Kind: projectset.Inferred, Name: newInferredName()}
			p = projectset.NewInferredProject(key.Name, scriptPath, c.inferredCompilerOptions)
			c.projects.Put(p)
			c.singleInferredKey = key
			c.hasSingleInferred = true
			c.log.Debug("single-inferred project created", coordlog.ProjectFields("inferred", p.Key.Name).With(coordlog.ScriptFields(scriptPath)))
		} else {
			p.AddRoot(scriptPath)
		}
		script.AddMembership(p.Key)
		c.updateGraph(p)
		c.emitTelemetry(p)
		c.markInferredRootTracker(scriptPath, true)
		return
	}

	p := projectset.NewInferredProject(newInferredName(), scriptPath, c.inferredCompilerOptions)
	c.projects.Put(p)
	c.log.Debug("inferred project created", coordlog.ProjectFields("inferred", p.Key.Name).With(coordlog.ScriptFields(scriptPath)))
	script.AddMembership(p.Key)
	c.updateGraph(p)
	c.emitTelemetry(p)
	c.markInferredRootTracker(scriptPath, true)
}

// markInferredRootTracker updates every config-presence entry scriptPath
// currently tracks to reflect whether scriptPath is serving as an Inferred
// project's root right now, and resyncs each entry's watcher to match
// (Ghost <-> Ghost-watched, §4.3).
func (c *Coordinator) markInferredRootTracker(scriptPath string, isRoot bool) {
	for _, path := range c.presence.PathsTrackedBy(scriptPath) {
		entry, ok := c.presence.Get(path)
		if !ok {
			continue
		}
		entry.Tracking[scriptPath] = isRoot
		c.syncPresenceWatcher(path, entry)
	}
}

// pruneRedundantInferred removes every Inferred project whose sole root has
// gained a second owner, which can only be a higher-priority External or
// Configured project (priority order External > Configured > Inferred).
// Single-inferred mode's shared project is exempt from removal by this
// scan — it is removed only when its last root leaves.
func (c *Coordinator) pruneRedundantInferred() {
	for _, p := range c.projects.ByKind(projectset.Inferred) {
		if c.cfg.SingleInferredProject && p.Key == c.singleInferredKey {
			c.pruneSingleInferredRoots(p)
			continue
		}
		if len(p.Roots) != 1 {
			continue
		}
		root := p.Roots[0]
		script, ok := c.registry.Get(root)
		if !ok {
			continue
		}
		if len(script.Memberships) > 1 {
			script.RemoveMembership(p.Key)
			c.markInferredRootTracker(root, false)
			c.teardownProject(p)
		}
	}
}

// pruneSingleInferredRoots drops any root of the shared single-inferred
// project that has gained a higher-priority owner, tearing the project
// down entirely once it has no roots left.
func (c *Coordinator) pruneSingleInferredRoots(p *projectset.Project) {
	var keep []string
	for _, root := range p.Roots {
		script, ok := c.registry.Get(root)
		if !ok {
			continue
		}
		if len(script.Memberships) > 1 {
			script.RemoveMembership(p.Key)
			c.markInferredRootTracker(root, false)
			continue
		}
		keep = append(keep, root)
	}
	if len(keep) != len(p.Roots) {
		p.Roots = keep
		p.MarkDirty()
	}
	if len(p.Roots) == 0 {
		c.teardownProject(p)
		c.hasSingleInferred = false
	}
}

// teardownProject removes p from the project set entirely, closing its
// watchers and forgetting its size-gate accounting.
func (c *Coordinator) teardownProject(p *projectset.Project) {
	c.log.Debug("project torn down", coordlog.ProjectFields(p.Key.Kind.String(), p.Key.Name))
	p.CloseWatchers()
	c.sizegate.Forget(p.Key.Name)
	c.projects.Remove(p.Key)
	delete(c.pending, p.Key)
}

// refreshInferredProjects is the tail-of-quiesce pass: for every open file
// with empty membership, create or extend an Inferred project; then prune
// redundant single-root Inferred projects.
func (c *Coordinator) refreshInferredProjects() {
	for _, path := range c.openFiles {
		script, ok := c.registry.Get(path)
		if !ok || !script.MembershipEmpty() {
			continue
		}
		c.rebalanceOrphan(path)
	}
	c.pruneRedundantInferred()
}

// rebalanceAfterOpen runs the inferred-rebalance step inline (not
// debounced) immediately after an open.
func (c *Coordinator) rebalanceAfterOpen(script *projectset.Script) {
	if script.MembershipEmpty() {
		c.rebalanceOrphan(script.NormalizedPath)
	}
	c.pruneRedundantInferred()
}
