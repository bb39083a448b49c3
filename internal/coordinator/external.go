package coordinator

import (
	"pscoord/internal/compilerfe"
	"pscoord/internal/coordlog"
	"pscoord/internal/projectset"
	"pscoord/internal/safelist"
	"pscoord/internal/typings"
)

// ExternalFile describes one root of an external project declaration.
type ExternalFile struct {
	Path            string
	ScriptKind      *compilerfe.ScriptKind
	HasMixedContent bool
	Content         *string
}

// ExternalProjectSpec is the client-pushed declaration for
// OpenExternalProject.
type ExternalProjectSpec struct {
	Name            string
	RootFiles       []ExternalFile
	Options         map[string]interface{}
	CompileOnSave   bool
	Acquisition     typings.Acquisition
	ConfigFilePaths []string // configs this external declaration adopts
}

// OpenExternalProject creates or updates the External project named
// spec.Name. Safelist rules are applied to the root list before it is
// recorded; config paths listed in ConfigFilePaths are adopted as
// Configured projects held alive by the external project's reference.
func (c *Coordinator) OpenExternalProject(spec ExternalProjectSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openExternalProjectLocked(spec)
}

func (c *Coordinator) openExternalProjectLocked(spec ExternalProjectSpec) {
	c.log.Debug("external project opened", coordlog.ProjectFields("external", spec.Name))
	key := projectset.ProjectKey{Kind: projectset.External, Name: spec.Name}

	rootPaths := make([]string, 0, len(spec.RootFiles))
	for _, f := range spec.RootFiles {
		rootPaths = append(rootPaths, f.Path)
	}

	var typingsInjected []string
	if c.safelist != nil {
		res := safelist.Apply(c.safelist, rootPaths, c.log)
		rootPaths = safelist.FilterRoots(rootPaths, res)
		typingsInjected = res.Typings
	}
	keep := make(map[string]bool, len(rootPaths))
	for _, r := range rootPaths {
		keep[r] = true
	}

	existing, hadExisting := c.projects.Get(key)
	if hadExisting {
		for _, old := range existing.Roots {
			if !keep[old] {
				if s, ok := c.registry.Get(old); ok {
					s.RemoveMembership(key)
				}
			}
		}
	}

	p := projectset.NewExternalProject(spec.Name, rootPaths, spec.Options, spec.CompileOnSave)
	p.Key = key
	c.projects.Put(p)

	for _, f := range spec.RootFiles {
		if !keep[f.Path] {
			continue
		}
		script, ok := c.registry.Get(f.Path)
		if !ok {
			kind := compilerfe.ScriptKindFromPath(f.Path)
			if f.ScriptKind != nil {
				kind = *f.ScriptKind
			}
			script = projectset.NewScript(c.foldPath(f.Path), f.Path, kind, f.HasMixedContent)
			c.registry.Put(script)
		} else if f.ScriptKind != nil {
			script.Kind = *f.ScriptKind
		}
		if f.Content != nil {
			script.Contents = *f.Content
		}
		script.HasMixedContent = f.HasMixedContent
		script.AddMembership(key)
	}

	if hadExisting {
		p.OpenRefCount = existing.OpenRefCount
		p.LanguageServiceEnabled = existing.LanguageServiceEnabled
	} else {
		p.OpenRefCount = 1
	}

	c.applySizeGate(p, p.Roots)
	c.reconcileAdoptedConfigs(spec, hadExisting)

	c.typ.UpdateTypingsForProject(spec.Name, spec.Options, spec.Acquisition, nil, typingsInjected)

	for _, orphan := range c.openFilesWithEmptyMembership() {
		c.rebalanceOrphan(orphan)
	}
	c.pruneRedundantInferred()

	c.emitTelemetry(p)
}

// reconcileAdoptedConfigs creates/keeps-alive Configured projects for every
// path in spec.ConfigFilePaths and drops adoption of any path no longer
// listed.
func (c *Coordinator) reconcileAdoptedConfigs(spec ExternalProjectSpec, hadExisting bool) {
	newSet := make(map[string]bool, len(spec.ConfigFilePaths))
	for _, p := range sortedCopy(spec.ConfigFilePaths) {
		newSet[p] = true
		c.findOrCreateConfiguredProject(p)
	}
	for _, old := range c.externalToConfigs[spec.Name] {
		if !newSet[old] {
			if cp, ok := c.projects.Get(projectKeyConfigured(old)); ok {
				c.removeConfiguredProject(cp)
			}
		}
	}
	c.externalToConfigs[spec.Name] = sortedCopy(spec.ConfigFilePaths)
}

// OpenExternalProjects applies an atomic delta: projects absent from list
// are closed, then every entry in list is opened (an unchanged entry is
// simply re-applied, which is idempotent).
func (c *Coordinator) OpenExternalProjects(list []ExternalProjectSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()

	wanted := make(map[string]bool, len(list))
	for _, s := range list {
		wanted[s.Name] = true
	}
	for _, p := range c.projects.ByKind(projectset.External) {
		if !wanted[p.Key.Name] {
			c.closeExternalProjectLocked(p.Key.Name)
		}
	}
	for _, s := range list {
		c.openExternalProjectLocked(s)
	}
}

// CloseExternalProject tears down the named External project: detaches
// every root, drops adopted configs, and re-runs inferred rebalancing for
// any open file left without a project.
func (c *Coordinator) CloseExternalProject(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeExternalProjectLocked(name)
}

func (c *Coordinator) closeExternalProjectLocked(name string) {
	key := projectset.ProjectKey{Kind: projectset.External, Name: name}
	p, ok := c.projects.Get(key)
	if !ok {
		return
	}
	c.log.Debug("external project closed", coordlog.ProjectFields("external", name))
	c.detachAllScripts(p)
	c.teardownProject(p)
	c.typ.Invalidate(name)

	for _, old := range c.externalToConfigs[name] {
		if cp, ok := c.projects.Get(projectKeyConfigured(old)); ok {
			c.removeConfiguredProject(cp)
		}
	}
	delete(c.externalToConfigs, name)

	for _, orphan := range c.openFilesWithEmptyMembership() {
		c.rebalanceOrphan(orphan)
	}
	c.pruneRedundantInferred()
}
