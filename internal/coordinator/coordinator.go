// Package coordinator implements the reconciliation logic that keeps a
// project set consistent as files open, close, change, and get watched:
// open/close/change, config discovery by upward search, inferred-project
// rebalancing, and watcher lifecycle. It is the only thing in this module
// that mutates the script registry, project collection, config-presence
// table and pending-update state.
package coordinator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"pscoord/internal/compilerfe"
	"pscoord/internal/config"
	"pscoord/internal/coordlog"
	"pscoord/internal/host"
	"pscoord/internal/paths"
	"pscoord/internal/projectset"
	"pscoord/internal/safelist"
	"pscoord/internal/sizegate"
	"pscoord/internal/typings"
	"pscoord/internal/watcher"
)

// Coordinator owns every piece of shared mutable state and exposes the
// public API described above. Every entry point is meant to run to
// completion on one logical thread; mu only guards against a host
// callback re-entering from a different goroutine than the caller
// expected (the real OSHost's fsnotify dispatch loop), not against
// genuine concurrent mutation.
type Coordinator struct {
	mu sync.Mutex

	host   host.Host
	reader compilerfe.FileReader
	cfg    *config.Config
	log    *coordlog.Logger
	events Events
	typ    typings.Installer

	registry *projectset.Registry
	presence *projectset.PresenceTable
	projects *projectset.Set

	sched    *watcher.Scheduler
	sizegate *sizegate.Gate
	safelist *safelist.List

	// reloadGroup coalesces concurrent ReloadProjects calls into a single
	// pass: a full reparse is idempotent, so sharing one in-flight result
	// across duplicate concurrent calls is safe. Config-watcher-driven
	// reloads do not go through it.
	reloadGroup singleflight.Group

	openFiles []string // ordered normalized paths

	// externalToConfigs maps an external project name to the sorted list
	// of canonical config paths it has adopted.
	externalToConfigs map[string][]string

	// pending maps project-name (here, ProjectKey) -> project, paired with
	// a pending-inferred-refresh bit and the changed-files list.
	pending                map[projectset.ProjectKey]*projectset.Project
	pendingInferredRefresh bool
	changedFiles           []string

	inferredCompilerOptions map[string]interface{}
	singleInferredKey       projectset.ProjectKey
	hasSingleInferred       bool
	hostConfiguration       HostConfiguration

	languageServiceEnabledDefault bool
}

// New builds a Coordinator wired to h and cfg. events may be nil, in which
// case NoopEvents is used. reader is the compiler front-end's file access
// surface for config parsing (compilerfe.OSFileReader{} for a real host,
// or the FakeHost itself in tests, which also implements FileReader).
func New(h host.Host, reader compilerfe.FileReader, cfg *config.Config, log *coordlog.Logger, typ typings.Installer, events Events) *Coordinator {
	if events == nil {
		events = NoopEvents{}
	}
	if typ == nil {
		typ = typings.NoopInstaller{}
	}
	c := &Coordinator{
		host:                    h,
		reader:                  reader,
		cfg:                     cfg,
		log:                     log,
		events:                  events,
		typ:                     typ,
		registry:                projectset.NewRegistry(h.UseCaseSensitiveFileNames()),
		presence:                projectset.NewPresenceTable(),
		projects:                projectset.NewSet(),
		sched:                   watcher.NewScheduler(cfg.DebounceDelay()),
		sizegate:                sizegate.New(cfg.SizeGateBudgetBytes),
		externalToConfigs:       make(map[string][]string),
		pending:                 make(map[projectset.ProjectKey]*projectset.Project),
		inferredCompilerOptions: cfg.InferredCompilerOptions,
		languageServiceEnabledDefault: true,
	}
	return c
}

// markPending queues p for a debounced graph update. Keyed by the
// project's ProjectKey so bursts against the same project coalesce.
func (c *Coordinator) markPending(p *projectset.Project) {
	p.MarkDirty()
	c.pending[p.Key] = p
	c.pendingInferredRefresh = true
	key := schedulerKey(p.Key)
	c.log.Debug("project marked pending, debounce scheduled", coordlog.DebounceFields(key))
	c.sched.Schedule(key, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.flushProject(p.Key)
	})
	c.scheduleInferredRefresh()
}

func schedulerKey(key projectset.ProjectKey) string {
	return fmt.Sprintf("%s:%s", key.Kind, key.Name)
}

// flushProject is the debounced per-project task: reload a pending
// Configured project if needed, then rebuild its graph and remove it from
// the pending map.
func (c *Coordinator) flushProject(key projectset.ProjectKey) {
	c.log.Debug("debounce fired, flushing project", coordlog.DebounceFields(schedulerKey(key)))
	p, ok := c.projects.Get(key)
	if !ok {
		delete(c.pending, key)
		return
	}
	if key.Kind == projectset.Configured && p.PendingReload {
		c.reloadConfiguredProject(p)
	}
	c.updateGraph(p)
	delete(c.pending, key)
}

// updateGraph calls the compiler collaborator's graph-build entry point for
// p and clears its dirty flag.
func (c *Coordinator) updateGraph(p *projectset.Project) {
	if !p.Dirty {
		return
	}
	p.Graph = compilerfe.CreateLanguageService(p.Key.Name, p.Roots)
	p.Dirty = false
	for _, root := range p.Roots {
		c.events.ContextChanged(p.Key.Name, root)
	}
}

// scheduleInferredRefresh arms the tail-of-quiesce task: while pending is
// non-empty when the task fires, it reschedules itself; otherwise it runs
// exactly one inferred-refresh pass.
func (c *Coordinator) scheduleInferredRefresh() {
	c.sched.Schedule(watcher.RefreshInferredKey, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if len(c.pending) > 0 {
			c.pendingInferredRefresh = true
			c.scheduleInferredRefresh()
			return
		}
		c.pendingInferredRefresh = false
		c.refreshInferredProjects()
	})
}

// Flush runs every scheduled task immediately, bypassing the debounce
// delay. Exposed for tests that need a deterministic quiescent point
// instead of sleeping past the debounce window. Must NOT be called while
// holding c.mu: each flushed task acquires it itself, the same as it would
// from a real timer goroutine.
func (c *Coordinator) Flush() {
	c.sched.FlushAll()
	// The inferred-refresh task reschedules itself when it runs before a
	// pending per-project task; run that rescheduled pass now too.
	c.mu.Lock()
	refresh := c.pendingInferredRefresh
	c.mu.Unlock()
	if refresh {
		c.sched.Flush(watcher.RefreshInferredKey)
	}
}

func newInferredName() string {
	return "/inferred-project/" + uuid.NewString()
}

// foldPath applies the same case-folding rule the registry uses, so
// callers comparing a raw client-supplied path against registry keys get
// consistent results.
func (c *Coordinator) foldPath(p string) string {
	return paths.FoldCase(p, c.host.UseCaseSensitiveFileNames())
}

// sortedCopy returns a sorted copy of ss, used wherever a map's keys need
// a deterministic order (the External-to-configs map) or wherever test
// determinism matters.
func sortedCopy(ss []string) []string {
	out := append([]string(nil), ss...)
	sort.Strings(out)
	return out
}
