// Package sizegate enforces the process-wide byte budget across projects
// for non-TypeScript-extension files.
package sizegate

import (
	"pscoord/internal/compilerfe"
	"pscoord/internal/host"
)

// Gate tracks accounted non-source bytes per project name against a shared
// budget. Accounting is recomputed on every call from a fresh candidate
// list rather than maintained incrementally, keeping the invariant
// trivial to reason about.
type Gate struct {
	budget   int64
	accounted map[string]int64
}

// New creates a gate with the given process-wide budget (default 20 MiB,
// see internal/config.Config.SizeGateBudgetBytes).
func New(budget int64) *Gate {
	return &Gate{budget: budget, accounted: make(map[string]int64)}
}

// Decision is the outcome of evaluating a project's candidate file list.
type Decision struct {
	Fits               bool
	AccountedBytes      int64
	AvailableBeforeThis int64
}

// Evaluate resets projectName's entry to 0, computes the budget remaining
// after every other project's accounted bytes, sums the non-source sizes
// of candidates (short-circuiting once either the budget or the available
// space is exceeded), and records the total iff it fits. Call on every
// create or reload of an External or Configured project.
func (g *Gate) Evaluate(projectName string, candidates []string, h host.Host) Decision {
	delete(g.accounted, projectName)

	var otherTotal int64
	for _, v := range g.accounted {
		otherTotal += v
	}
	available := g.budget - otherTotal
	if available < 0 {
		available = 0
	}

	var sum int64
	fits := true
	for _, path := range candidates {
		if compilerfe.IsSourceExtension(path) {
			continue
		}
		size, ok := h.GetFileSize(path)
		if !ok {
			continue
		}
		sum += size
		if sum > g.budget || sum > available {
			fits = false
			break
		}
	}

	if fits {
		g.accounted[projectName] = sum
	} else {
		delete(g.accounted, projectName)
	}

	return Decision{Fits: fits, AccountedBytes: sum, AvailableBeforeThis: available}
}

// Forget removes projectName's accounted entry, e.g. when the project is
// torn down.
func (g *Gate) Forget(projectName string) {
	delete(g.accounted, projectName)
}

// TotalAccounted sums every project's accounted bytes. Used by property
// tests asserting the budget is never exceeded.
func (g *Gate) TotalAccounted() int64 {
	var total int64
	for _, v := range g.accounted {
		total += v
	}
	return total
}

// Budget returns the configured budget.
func (g *Gate) Budget() int64 {
	return g.budget
}
