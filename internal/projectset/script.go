// Package projectset holds the coordinator's core data model: the script
// registry and config-presence table. Project objects live in project.go.
//
// Scripts and projects form a cyclic-looking graph, modeled here as two
// collections owned by the coordinator, with the script side holding only
// non-owning lookup-by-name references into the project set.
package projectset

import (
	"pscoord/internal/compilerfe"
	"pscoord/internal/host"
)

// Script is a single known source file, open or watched-closed.
type Script struct {
	// NormalizedPath is the case-folded path used as the registry key.
	NormalizedPath string
	// CanonicalPath preserves the original casing/form for display and
	// for re-deriving directory ancestry during upward search.
	CanonicalPath string

	Kind            compilerfe.ScriptKind
	Open            bool
	Contents        string
	HasMixedContent bool

	// Watcher is present iff !Open && !HasMixedContent && the script is
	// known to the registry. Watcher handles are owned uniquely by their
	// registering owner.
	Watcher host.Watcher

	// Memberships is the non-owning set of project keys this script
	// currently belongs to. Projects, not scripts, own the authoritative
	// root lists; this set exists purely so membership-emptiness and
	// multi-owner checks don't require scanning every project.
	Memberships map[ProjectKey]bool
}

// NewScript creates a script with no content and no memberships. kind
// should come from compilerfe.ScriptKindFromPath unless the caller (an
// External project declaration) supplied one explicitly.
func NewScript(normalizedPath, canonicalPath string, kind compilerfe.ScriptKind, mixed bool) *Script {
	return &Script{
		NormalizedPath:  normalizedPath,
		CanonicalPath:   canonicalPath,
		Kind:            kind,
		HasMixedContent: mixed,
		Memberships:     make(map[ProjectKey]bool),
	}
}

// AddMembership records that key now contains this script.
func (s *Script) AddMembership(key ProjectKey) {
	s.Memberships[key] = true
}

// RemoveMembership records that key no longer contains this script.
func (s *Script) RemoveMembership(key ProjectKey) {
	delete(s.Memberships, key)
}

// MembershipEmpty reports whether the script belongs to no project. Every
// open script should belong to at least one project once a mutation
// settles; empty membership is only ever momentary between mutations.
func (s *Script) MembershipEmpty() bool {
	return len(s.Memberships) == 0
}

// Registry is the canonical store of every known script, keyed by
// normalized path.
type Registry struct {
	caseSensitive bool
	scripts       map[string]*Script
}

// NewRegistry creates an empty registry. caseSensitive should come from
// host.Host.UseCaseSensitiveFileNames for the host the coordinator runs
// against.
func NewRegistry(caseSensitive bool) *Registry {
	return &Registry{caseSensitive: caseSensitive, scripts: make(map[string]*Script)}
}

func (r *Registry) fold(path string) string {
	if r.caseSensitive {
		return path
	}
	return toLowerASCII(path)
}

// Get returns the script for path, if known.
func (r *Registry) Get(path string) (*Script, bool) {
	s, ok := r.scripts[r.fold(path)]
	return s, ok
}

// GetOrCreate returns the existing script for path, or creates, registers
// and returns a new one tagged from its extension.
func (r *Registry) GetOrCreate(path string) *Script {
	key := r.fold(path)
	if s, ok := r.scripts[key]; ok {
		return s
	}
	s := NewScript(key, path, compilerfe.ScriptKindFromPath(path), false)
	r.scripts[key] = s
	return s
}

// Put registers an already-constructed script (used by external-project
// declarations, which may carry an explicit kind or mixed-content flag).
func (r *Registry) Put(s *Script) {
	r.scripts[r.fold(s.CanonicalPath)] = s
}

// Remove deletes path from the registry: called only once the script is
// closed and has no memberships.
func (r *Registry) Remove(path string) {
	delete(r.scripts, r.fold(path))
}

// All returns every known script. Iteration order is not meaningful;
// callers that need determinism should sort the result.
func (r *Registry) All() []*Script {
	out := make([]*Script, 0, len(r.scripts))
	for _, s := range r.scripts {
		out = append(out, s)
	}
	return out
}

// CollectClosedOrphans returns scripts that are closed and have empty
// membership, for deferred garbage collection.
func (r *Registry) CollectClosedOrphans() []*Script {
	var out []*Script
	for _, s := range r.scripts {
		if !s.Open && s.MembershipEmpty() {
			out = append(out, s)
		}
	}
	return out
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
