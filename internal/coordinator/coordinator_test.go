package coordinator

import (
	"strings"
	"testing"

	"pscoord/internal/config"
	"pscoord/internal/coordlog"
	"pscoord/internal/host"
	"pscoord/internal/projectset"
	"pscoord/internal/typings"
)

func newTestCoordinator() (*Coordinator, *host.FakeHost, *RecordingEvents, *typings.FakeInstaller) {
	h := host.NewFakeHost(true)
	cfg := config.DefaultConfig()
	log := coordlog.NewLogger(coordlog.Config{Format: coordlog.HumanFormat, Level: coordlog.ErrorLevel})
	ev := &RecordingEvents{}
	typ := &typings.FakeInstaller{}
	c := New(h, h, cfg, log, typ, ev)
	return c, h, ev, typ
}

func strPtr(s string) *string { return &s }

// S1: opening a file with no config anywhere gives it its own Inferred
// project and no config watcher is left adopted.
func TestS1_OpenWithNoAncestorConfig(t *testing.T) {
	c, _, _, _ := newTestCoordinator()

	configName, ok := c.OpenClientFile(OpenFileArg{Path: "/a/b/c.ts"})
	if configName != "" {
		t.Fatalf("configFileName = %q, want empty", configName)
	}
	if !ok {
		t.Fatal("expected the opened script to end up with a project")
	}
	c.Flush()

	inferred := c.projects.ByKind(projectset.Inferred)
	if len(inferred) != 1 {
		t.Fatalf("inferred projects = %d, want 1", len(inferred))
	}
	if !inferred[0].HasRoot("/a/b/c.ts") {
		t.Fatal("inferred project does not root the opened file")
	}
	if len(c.projects.ByKind(projectset.Configured)) != 0 {
		t.Fatal("expected no configured project to have been created")
	}
}

// S2: a tsconfig.json above the file that lists it adopts it into a
// Configured project instead of an Inferred one.
func TestS2_OpenWithConfiguredProject(t *testing.T) {
	c, h, _, _ := newTestCoordinator()
	h.WriteFile("/a/tsconfig.json", `{"files":["b/c.ts"]}`)
	h.WriteFile("/a/b/c.ts", "const x = 1;")

	configName, _ := c.OpenClientFile(OpenFileArg{Path: "/a/b/c.ts"})
	if configName != "/a/tsconfig.json" {
		t.Fatalf("configFileName = %q, want /a/tsconfig.json", configName)
	}
	c.Flush()

	configured := c.projects.ByKind(projectset.Configured)
	if len(configured) != 1 {
		t.Fatalf("configured projects = %d, want 1", len(configured))
	}
	if len(c.projects.ByKind(projectset.Inferred)) != 0 {
		t.Fatal("expected no inferred project once a configured one adopts the file")
	}
	if configured[0].OpenRefCount != 1 {
		t.Fatalf("OpenRefCount = %d, want 1", configured[0].OpenRefCount)
	}
}

// S3: a sibling file the config does not list gets its own Inferred
// project; the configured file's membership is untouched.
func TestS3_SiblingNotInFilesGetsInferred(t *testing.T) {
	c, h, _, _ := newTestCoordinator()
	h.WriteFile("/a/tsconfig.json", `{"files":["b/c.ts"]}`)
	h.WriteFile("/a/b/c.ts", "const x = 1;")
	h.WriteFile("/a/b/d.ts", "const y = 2;")

	c.OpenClientFile(OpenFileArg{Path: "/a/b/c.ts"})
	c.Flush()
	configName, _ := c.OpenClientFile(OpenFileArg{Path: "/a/b/d.ts"})
	c.Flush()

	if configName != "/a/tsconfig.json" {
		t.Fatalf("configFileName = %q, want /a/tsconfig.json", configName)
	}
	configured := c.projects.ByKind(projectset.Configured)
	if len(configured) != 1 {
		t.Fatalf("configured projects = %d, want 1", len(configured))
	}
	if configured[0].HasRoot("/a/b/d.ts") {
		t.Fatal("d.ts is not listed in files, it should not be a root of the configured project")
	}
	inferred := c.projects.ByKind(projectset.Inferred)
	if len(inferred) != 1 || !inferred[0].HasRoot("/a/b/d.ts") {
		t.Fatal("expected d.ts to get its own inferred project")
	}
	cScript, ok := c.registry.Get("/a/b/c.ts")
	if !ok || len(cScript.Memberships) != 1 {
		t.Fatal("c.ts should still belong only to the configured project")
	}
}

// S4: deleting the adopted config falls the open file back to an Inferred
// project, and leaves a Ghost-watched presence entry behind so a config
// file recreated later is picked up.
func TestS4_ConfigDeletionFallsBackToInferred(t *testing.T) {
	c, h, _, _ := newTestCoordinator()
	h.WriteFile("/a/tsconfig.json", `{"files":["b/c.ts"]}`)
	h.WriteFile("/a/b/c.ts", "const x = 1;")

	c.OpenClientFile(OpenFileArg{Path: "/a/b/c.ts"})
	c.Flush()

	h.DeleteFile("/a/tsconfig.json")
	c.Flush()

	if len(c.projects.ByKind(projectset.Configured)) != 0 {
		t.Fatal("expected the configured project to be torn down")
	}
	inferred := c.projects.ByKind(projectset.Inferred)
	if len(inferred) != 1 || !inferred[0].HasRoot("/a/b/c.ts") {
		t.Fatal("expected c.ts to fall back to its own inferred project")
	}

	entry, ok := c.presence.Get("/a/tsconfig.json")
	if !ok {
		t.Fatal("expected the deleted config's presence entry to remain")
	}
	if entry.IsAdopted() {
		t.Fatal("presence entry should no longer be adopted")
	}
	if !entry.ShouldWatch() {
		t.Fatal("expected a Ghost-watched presence entry, since c.ts is now an inferred root")
	}
}

// S5: an external project whose non-source roots exceed the shared byte
// budget has its language service disabled.
func TestS5_ExternalProjectExceedsSizeGate(t *testing.T) {
	c, h, ev, _ := newTestCoordinator()
	h.WriteFile("/lib/p.js", strings.Repeat("a", 2*1024*1024))
	h.WriteFile("/lib/q.js", strings.Repeat("a", 19*1024*1024))

	c.OpenExternalProject(ExternalProjectSpec{
		Name: "proj1",
		RootFiles: []ExternalFile{
			{Path: "/lib/p.js"},
			{Path: "/lib/q.js"},
		},
	})

	p, ok := c.FindProject(projectset.ProjectKey{Kind: projectset.External, Name: "proj1"})
	if !ok {
		t.Fatal("expected the external project to exist")
	}
	if p.LanguageServiceEnabled {
		t.Fatal("expected the language service to be disabled: roots exceed the default 20 MiB budget")
	}
	found := false
	for _, tel := range ev.Telemetry {
		if tel.ProjectType == "external" && !tel.LanguageServiceEnabled {
			found = true
		}
	}
	if !found {
		t.Fatal("expected project telemetry reporting languageServiceEnabled=false")
	}
}

// S6: a safelist rule strips a known third-party bundle from an external
// project's roots and injects its typings.
func TestS6_SafelistExcludesKnownBundle(t *testing.T) {
	c, h, _, typ := newTestCoordinator()
	h.WriteFile("/safelist.json", `{
		"jquery": {
			"match": "jquery.*\\.js$",
			"types": ["jquery"]
		}
	}`)
	if err := c.LoadSafeList("/safelist.json"); err != nil {
		t.Fatalf("LoadSafeList: %v", err)
	}
	h.WriteFile("/lib/jquery-1.10.2.min.js", "/* jquery */")

	c.OpenExternalProject(ExternalProjectSpec{
		Name:      "proj1",
		RootFiles: []ExternalFile{{Path: "/lib/jquery-1.10.2.min.js"}},
	})

	p, ok := c.FindProject(projectset.ProjectKey{Kind: projectset.External, Name: "proj1"})
	if !ok {
		t.Fatal("expected the external project to exist")
	}
	if len(p.Roots) != 0 {
		t.Fatalf("roots = %v, want empty after the safelist rule excludes jquery", p.Roots)
	}
	if len(typ.Updates) != 1 || len(typ.Updates[0].Typings) != 1 || typ.Updates[0].Typings[0] != "jquery" {
		t.Fatalf("expected a typings update injecting jquery, got %+v", typ.Updates)
	}
}

// Invariant: every open file belongs to at least one project once a
// mutation has settled.
func TestInvariant_MembershipCompleteness(t *testing.T) {
	c, _, _, _ := newTestCoordinator()
	c.OpenClientFile(OpenFileArg{Path: "/x/y.ts"})
	c.Flush()

	s, ok := c.registry.Get("/x/y.ts")
	if !ok || s.MembershipEmpty() {
		t.Fatal("open file has no project membership after settling")
	}
}

// Invariant: no script roots more than one Inferred project.
func TestInvariant_InferredUniqueness(t *testing.T) {
	c, _, _, _ := newTestCoordinator()
	c.OpenClientFile(OpenFileArg{Path: "/a.ts"})
	c.OpenClientFile(OpenFileArg{Path: "/b.ts"})
	c.Flush()

	inferred := c.projects.ByKind(projectset.Inferred)
	if len(inferred) != 2 {
		t.Fatalf("inferred projects = %d, want 2 (one per orphan)", len(inferred))
	}
	seen := make(map[string]bool)
	for _, p := range inferred {
		for _, r := range p.Roots {
			if seen[r] {
				t.Fatalf("root %s belongs to more than one inferred project", r)
			}
			seen[r] = true
		}
	}
}

// Invariant: the watcher-lifecycle state machine only leaves a watcher
// armed on a Ghost-watched entry, and cleans the entry up entirely once
// nothing tracks it any more.
func TestInvariant_WatcherLifecycle(t *testing.T) {
	c, h, _, _ := newTestCoordinator()
	h.WriteFile("/a/tsconfig.json", `{"files":["b/c.ts"]}`)
	h.WriteFile("/a/b/c.ts", "x")
	c.OpenClientFile(OpenFileArg{Path: "/a/b/c.ts"})
	c.Flush()

	entry, ok := c.presence.Get("/a/tsconfig.json")
	if !ok {
		t.Fatal("expected a presence entry for the adopted config")
	}
	if entry.ShouldWatch() {
		t.Fatal("an Adopted config should never want its own ghost watcher")
	}

	c.CloseClientFile("/a/b/c.ts")
	c.Flush()

	if _, ok := c.presence.Get("/a/tsconfig.json"); ok {
		t.Fatal("expected the presence entry to be deleted once nothing tracks it")
	}
}

// Invariant: the size gate never accounts more bytes across every project
// than its configured budget.
func TestInvariant_SizeGateNeverExceedsBudget(t *testing.T) {
	c, h, _, _ := newTestCoordinator()
	h.WriteFile("/p1/a.js", strings.Repeat("a", 12*1024*1024))
	h.WriteFile("/p2/b.js", strings.Repeat("a", 12*1024*1024))

	c.OpenExternalProject(ExternalProjectSpec{Name: "p1", RootFiles: []ExternalFile{{Path: "/p1/a.js"}}})
	c.OpenExternalProject(ExternalProjectSpec{Name: "p2", RootFiles: []ExternalFile{{Path: "/p2/b.js"}}})

	if total := c.sizegate.TotalAccounted(); total > c.sizegate.Budget() {
		t.Fatalf("accounted total %d exceeds budget %d", total, c.sizegate.Budget())
	}
	p1, _ := c.FindProject(projectset.ProjectKey{Kind: projectset.External, Name: "p1"})
	p2, _ := c.FindProject(projectset.ProjectKey{Kind: projectset.External, Name: "p2"})
	if !p1.LanguageServiceEnabled {
		t.Fatal("p1 alone should fit under the budget")
	}
	if p2.LanguageServiceEnabled {
		t.Fatal("p2 should be denied: p1 already accounts for over half the shared budget")
	}
}

// Invariant: a burst of edits against the same file coalesces into a
// single graph update once the debounce queue is flushed.
func TestInvariant_DebounceCoalescesBurstsIntoOneUpdate(t *testing.T) {
	c, _, ev, _ := newTestCoordinator()
	c.OpenClientFile(OpenFileArg{Path: "/a.ts", Contents: strPtr("0123456789")})
	c.Flush()
	initial := len(ev.ContextChanges)

	for i := 0; i < 5; i++ {
		c.ApplyChangesInOpenFiles(nil, []FileEdit{{Path: "/a.ts", Start: 0, End: 1, NewText: "x"}}, nil)
	}
	c.Flush()

	if added := len(ev.ContextChanges) - initial; added != 1 {
		t.Fatalf("ContextChanged fired %d times for a debounced burst, want 1", added)
	}
}

// Invariant: an empty edit batch is a no-op, not just idempotent.
func TestInvariant_EmptyEditBatchIsNoop(t *testing.T) {
	c, _, ev, _ := newTestCoordinator()
	c.OpenClientFile(OpenFileArg{Path: "/a.ts", Contents: strPtr("hello")})
	c.Flush()
	before := len(ev.ContextChanges)

	c.ApplyChangesInOpenFiles(nil, []FileEdit{}, nil)
	c.Flush()

	if len(ev.ContextChanges) != before {
		t.Fatalf("empty edit batch triggered a graph update: before=%d after=%d", before, len(ev.ContextChanges))
	}
	s, ok := c.registry.Get("/a.ts")
	if !ok || s.Contents != "hello" {
		t.Fatalf("contents mutated by an empty edit batch: %q", s.Contents)
	}
}

// Invariant: re-applying the same external project declaration list is a
// round trip, not a further mutation.
func TestInvariant_ExternalProjectsRoundTrip(t *testing.T) {
	c, h, ev, _ := newTestCoordinator()
	h.WriteFile("/lib/a.js", "a")
	spec := []ExternalProjectSpec{
		{Name: "proj1", RootFiles: []ExternalFile{{Path: "/lib/a.js"}}},
	}

	c.OpenExternalProjects(spec)
	p1, _ := c.FindProject(projectset.ProjectKey{Kind: projectset.External, Name: "proj1"})
	rootsBefore := append([]string(nil), p1.Roots...)
	refBefore := p1.OpenRefCount

	statesBefore := len(ev.ServiceStates)
	c.OpenExternalProjects(spec)
	if len(ev.ServiceStates) != statesBefore {
		t.Fatalf("idempotent re-apply fired %d LanguageServiceState event(s), want 0 (nothing observable changed)",
			len(ev.ServiceStates)-statesBefore)
	}
	p2, ok := c.FindProject(projectset.ProjectKey{Kind: projectset.External, Name: "proj1"})
	if !ok {
		t.Fatal("expected the project to still exist after re-applying the same list")
	}
	if len(p2.Roots) != len(rootsBefore) {
		t.Fatalf("roots changed across an idempotent re-apply: before=%v after=%v", rootsBefore, p2.Roots)
	}
	if p2.OpenRefCount != refBefore {
		t.Fatalf("OpenRefCount changed across an idempotent re-apply: before=%d after=%d", refBefore, p2.OpenRefCount)
	}
	if len(c.projects.ByKind(projectset.External)) != 1 {
		t.Fatal("expected exactly one external project after the round trip")
	}
}
