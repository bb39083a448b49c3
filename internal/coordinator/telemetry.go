package coordinator

import (
	"pscoord/internal/compilerfe"
	"pscoord/internal/projectset"
)

// emitTelemetry builds and emits the scrubbed project-info-telemetry record
// for p: a hashed project id (never the raw name, which may be a path),
// extension counts over its roots, and the language service /
// compile-on-save flags. Enum options would be stringified here too if
// CompilerOptions carried any recognized enum fields; this default compiler
// front-end's options map is opaque key/value pairs, so nothing further is
// scrubbed.
func (c *Coordinator) emitTelemetry(p *projectset.Project) {
	counts := make(map[string]int)
	for _, root := range p.Roots {
		counts[extensionBucket(root)]++
	}
	c.events.ProjectInfoTelemetry(ProjectTelemetry{
		HashedProjectID:        c.host.CreateHash(p.Key.Name),
		ProjectType:            p.Key.Kind.String(),
		ExtensionCounts:        counts,
		LanguageServiceEnabled: p.LanguageServiceEnabled,
		CompileOnSave:          p.CompileOnSave,
	})
}

func extensionBucket(path string) string {
	return compilerfe.ScriptKindFromPath(path).String()
}
