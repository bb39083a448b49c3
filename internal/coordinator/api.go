package coordinator

import (
	"sort"

	"pscoord/internal/projectset"
	"pscoord/internal/safelist"
)

// SetCompilerOptionsForInferredProjects updates the default options
// applied to every current and future Inferred project, marking every
// existing one dirty so the next debounced update picks the change up.
func (c *Coordinator) SetCompilerOptionsForInferredProjects(opts map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inferredCompilerOptions = opts
	for _, p := range c.projects.ByKind(projectset.Inferred) {
		p.CompilerOptions = opts
		c.markPending(p)
	}
}

// HostConfiguration is the payload for SetHostConfiguration.
type HostConfiguration struct {
	FormatOptionsFile   *string
	HostInfo            *string
	FormatOptions       map[string]interface{}
	ExtraFileExtensions []string
}

// SetHostConfiguration records a client-pushed host configuration. This
// module's scope stops at acknowledging the call: format options and host
// info belong to the language-service query layer that sits above this
// coordinator. The coordinator's only obligation is not to lose the call
// if a future component needs it, so it is stashed verbatim.
func (c *Coordinator) SetHostConfiguration(cfg HostConfiguration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hostConfiguration = cfg
}

// LoadSafeList loads and installs a safelist file, applied to every
// subsequent OpenExternalProject/OpenExternalProjects call.
func (c *Coordinator) LoadSafeList(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	list, err := safelist.Load(path, c.host, c.log)
	if err != nil {
		return err
	}
	c.safelist = list
	return nil
}

// ResetSafeList clears the installed safelist.
func (c *Coordinator) ResetSafeList() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.safelist = nil
}

// AllProjects returns every project currently in the set, in no particular
// order. Exposed for introspection tools (a status dump) that have no
// single key to look up.
func (c *Coordinator) AllProjects() []*projectset.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projects.All()
}

// FindProject looks up a project by its key. Callers that only know a
// client-visible name (an external project name, a config path, or a
// generated inferred name) should try the kind they expect.
func (c *Coordinator) FindProject(key projectset.ProjectKey) (*projectset.Project, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projects.Get(key)
}

// GetScriptInfo returns the registry entry for path, if known.
func (c *Coordinator) GetScriptInfo(path string) (*projectset.Script, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Get(path)
}

// GetDefaultProjectForFile returns the project a file should be queried
// against, following the priority order External > Configured > Inferred.
// refresh forces a full reconciliation pass for path's script before
// choosing, which picks up a just-created file that upward search has not
// yet seen.
func (c *Coordinator) GetDefaultProjectForFile(path string, refresh bool) (*projectset.Project, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if refresh {
		c.reconcileScriptProjects(path)
	}
	script, ok := c.registry.Get(path)
	if !ok {
		return nil, false
	}

	var best *projectset.Project
	bestPriority := -1
	for key := range script.Memberships {
		p, ok := c.projects.Get(key)
		if !ok {
			continue
		}
		priority := projectPriority(key.Kind)
		if priority > bestPriority {
			best, bestPriority = p, priority
		}
	}
	return best, best != nil
}

func projectPriority(kind projectset.ProjectKind) int {
	switch kind {
	case projectset.External:
		return 2
	case projectset.Configured:
		return 1
	default:
		return 0
	}
}

// SynchronizeProjectList reports which known projects have changed since
// knownVersions was captured: a project missing from knownVersions, or
// whose Dirty flag is set, is considered changed. The session layer is
// expected to bump its own version counter for any project this call
// reports.
func (c *Coordinator) SynchronizeProjectList(knownVersions map[string]int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var changed []string
	for _, p := range c.projects.All() {
		name := p.Key.Name
		if _, known := knownVersions[name]; !known || p.Dirty {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}

// ReloadProjects forces every Configured project to reparse its config
// file and every open file's upward search to re-run, then flushes the
// debounce queue so the result is observable synchronously. Concurrent
// calls coalesce via reloadGroup since a full reparse is idempotent.
func (c *Coordinator) ReloadProjects() {
	_, _, _ = c.reloadGroup.Do("reload", func() (interface{}, error) {
		c.mu.Lock()
		for _, p := range c.projects.ByKind(projectset.Configured) {
			p.PendingReload = true
			c.reloadConfiguredProject(p)
		}
		openPaths := append([]string(nil), c.openFiles...)
		c.mu.Unlock()

		for _, path := range openPaths {
			c.mu.Lock()
			c.reconcileScriptProjects(path)
			c.mu.Unlock()
		}
		c.Flush()
		return nil, nil
	})
}
