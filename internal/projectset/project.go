package projectset

import (
	"pscoord/internal/coorderr"
	"pscoord/internal/compilerfe"
	"pscoord/internal/host"
)

// ProjectKind tags which of the three project variants a Project is.
type ProjectKind int

const (
	External ProjectKind = iota
	Configured
	Inferred
)

func (k ProjectKind) String() string {
	switch k {
	case External:
		return "external"
	case Configured:
		return "configured"
	case Inferred:
		return "inferred"
	default:
		return "unknown"
	}
}

// ProjectKey uniquely identifies a project: for External, the opaque
// client-supplied name; for Configured, the canonical config file path;
// for Inferred, a generated name. Comparable, so it can key a map directly.
type ProjectKey struct {
	Kind ProjectKind
	Name string
}

// Project is a tagged variant with a shared header: a single struct for
// all three project kinds, distinguished by Key.Kind, rather than a class
// hierarchy. Dispatch on Kind is a small match rather than virtual
// methods.
type Project struct {
	Key ProjectKey

	CompilerOptions        map[string]interface{}
	CompileOnSave           bool
	LanguageServiceEnabled  bool
	Dirty                   bool

	// Roots is the ordered set of root script keys (normalized paths).
	// Projects own their root lists; scripts hold only a non-owning
	// back-reference.
	Roots []string

	Graph *compilerfe.LanguageServiceHandle

	// Watchers holds every watcher this project registered directly:
	// wildcard directories and (Configured only) the config file itself.
	// Keyed by watched path.
	Watchers map[string]host.Watcher

	// OpenRefCount is used for Configured/External projects only: the
	// count of currently-open scripts the project contains. An External
	// project's count starts at 1 for the client's declaration itself, so
	// it is one more than its number of open scripts.
	OpenRefCount int

	// PendingReload is Configured-only: set when a watcher fires a change
	// on an Adopted config entry; cleared on the next graph update, which
	// reparses before rebuilding.
	PendingReload bool

	// Parsed carries the last ParseConfigFile result for Configured
	// projects: include/exclude/extends booleans, wildcard directories,
	// type acquisition, diagnostics.
	Parsed compilerfe.ParsedConfig

	Diagnostics []coorderr.Diagnostic
}

// NewExternalProject creates an External project (roots/options supplied
// verbatim by the client).
func NewExternalProject(name string, roots []string, options map[string]interface{}, compileOnSave bool) *Project {
	return &Project{
		Key:             ProjectKey{Kind: External, Name: name},
		CompilerOptions: options,
		CompileOnSave:   compileOnSave,
		Roots:           append([]string(nil), roots...),
		Watchers:        make(map[string]host.Watcher),
		Dirty:           true,
	}
}

// NewConfiguredProject creates a Configured project for configFilePath,
// parsed already into parsed.
func NewConfiguredProject(configFilePath string, parsed compilerfe.ParsedConfig) *Project {
	return &Project{
		Key:             ProjectKey{Kind: Configured, Name: configFilePath},
		CompilerOptions: parsed.CompilerOptions,
		CompileOnSave:   parsed.CompileOnSave,
		Roots:           append([]string(nil), parsed.FileNames...),
		Watchers:        make(map[string]host.Watcher),
		Parsed:          parsed,
		Diagnostics:     parsed.Diagnostics,
		Dirty:           true,
	}
}

// NewInferredProject creates an Inferred project rooted solely at
// rootScript. An Inferred project never persists beyond its last root.
func NewInferredProject(name string, rootScript string, options map[string]interface{}) *Project {
	return &Project{
		Key:                    ProjectKey{Kind: Inferred, Name: name},
		CompilerOptions:        options,
		Roots:                  []string{rootScript},
		Watchers:               make(map[string]host.Watcher),
		LanguageServiceEnabled: true,
		Dirty:                  true,
	}
}

// HasRoot reports whether path is one of the project's roots.
func (p *Project) HasRoot(path string) bool {
	for _, r := range p.Roots {
		if r == path {
			return true
		}
	}
	return false
}

// AddRoot appends path to the root list if not already present.
func (p *Project) AddRoot(path string) {
	if !p.HasRoot(path) {
		p.Roots = append(p.Roots, path)
		p.Dirty = true
	}
}

// RemoveRoot removes path from the root list, preserving order.
func (p *Project) RemoveRoot(path string) {
	for i, r := range p.Roots {
		if r == path {
			p.Roots = append(p.Roots[:i], p.Roots[i+1:]...)
			p.Dirty = true
			return
		}
	}
}

// MarkDirty sets the dirty flag, signalling a graph rebuild is due.
func (p *Project) MarkDirty() {
	p.Dirty = true
}

// CloseWatchers closes and clears every project-owned watcher (config
// file, wildcard directories). Called when the project is
// torn down, or by the size gate disabling the language service.
func (p *Project) CloseWatchers() {
	for path, w := range p.Watchers {
		if w != nil {
			w.Close()
		}
		delete(p.Watchers, path)
	}
}

// Set is the coordinator's full project collection, keyed by ProjectKey.
type Set struct {
	projects map[ProjectKey]*Project
}

// NewSet creates an empty project set.
func NewSet() *Set {
	return &Set{projects: make(map[ProjectKey]*Project)}
}

// Get returns the project for key, if present.
func (s *Set) Get(key ProjectKey) (*Project, bool) {
	p, ok := s.projects[key]
	return p, ok
}

// Put registers or replaces a project.
func (s *Set) Put(p *Project) {
	s.projects[p.Key] = p
}

// Remove deletes key from the set.
func (s *Set) Remove(key ProjectKey) {
	delete(s.projects, key)
}

// All returns every project. Iteration order is not meaningful.
func (s *Set) All() []*Project {
	out := make([]*Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	return out
}

// ByKind returns every project of the given kind.
func (s *Set) ByKind(kind ProjectKind) []*Project {
	var out []*Project
	for _, p := range s.projects {
		if p.Key.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// Count returns the number of projects in the set.
func (s *Set) Count() int {
	return len(s.projects)
}
