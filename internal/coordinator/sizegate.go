package coordinator

import (
	"pscoord/internal/coordlog"
	"pscoord/internal/coorderr"
	"pscoord/internal/projectset"
)

// applySizeGate runs the size-limit gate for p against candidates and
// applies the result: enable/disable the language service, tear down
// wildcard-directory watchers on disable, and emit the
// language-service-state event on a transition.
func (c *Coordinator) applySizeGate(p *projectset.Project, candidates []string) {
	wasEnabled := p.LanguageServiceEnabled
	decision := c.sizegate.Evaluate(p.Key.Name, candidates, c.host)
	p.LanguageServiceEnabled = decision.Fits
	c.log.Debug("size gate evaluated", coordlog.SizeGateFields(p.Key.Name, decision.AccountedBytes, decision.Fits))

	if !decision.Fits {
		// Tear down wildcard-directory watchers only; the Configured
		// project's own config-file watcher (keyed by its own name) stays
		// armed so a later edit can still trigger a reload.
		for path, w := range p.Watchers {
			if path == p.Key.Name {
				continue
			}
			if w != nil {
				w.Close()
			}
			delete(p.Watchers, path)
		}
		p.Diagnostics = append(p.Diagnostics, coorderr.NewDiagnostic(
			coorderr.CodeSizeGateDisabled,
			"language service disabled: project exceeds the shared non-source byte budget",
		))
	}

	if decision.Fits != wasEnabled {
		c.log.Info("language service state transitioned", coordlog.SizeGateFields(p.Key.Name, decision.AccountedBytes, decision.Fits))
		c.events.LanguageServiceState(p.Key.Name, decision.Fits)
	}
}
