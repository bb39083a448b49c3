package coordinator

import (
	"pscoord/internal/coorderr"
)

// Events is the fire-and-forget single-handler sink for the coordinator's
// emitted events.
type Events interface {
	ContextChanged(projectName, file string)
	ConfigFileDiagnostics(triggerFile, configFileName string, diagnostics []coorderr.Diagnostic)
	LanguageServiceState(projectName string, enabled bool)
	ProjectInfoTelemetry(info ProjectTelemetry)
}

// ProjectTelemetry is the scrubbed record emitted on project creation:
// hashed project id, extension counts, taxonomic project type and the
// language-service / compile-on-save flags. It carries no compiler
// options.
type ProjectTelemetry struct {
	HashedProjectID        string
	ProjectType            string // "external" | "configured" | "inferred"
	ExtensionCounts        map[string]int
	LanguageServiceEnabled bool
	CompileOnSave          bool
}

// NoopEvents discards every event. The default when no sink is wired.
type NoopEvents struct{}

func (NoopEvents) ContextChanged(string, string)                                 {}
func (NoopEvents) ConfigFileDiagnostics(string, string, []coorderr.Diagnostic)    {}
func (NoopEvents) LanguageServiceState(string, bool)                              {}
func (NoopEvents) ProjectInfoTelemetry(ProjectTelemetry)                          {}

// RecordingEvents records every call, for tests that assert an event fired.
type RecordingEvents struct {
	ContextChanges  []ContextChange
	ConfigDiags     []ConfigDiag
	ServiceStates   []ServiceState
	Telemetry       []ProjectTelemetry
}

type ContextChange struct{ Project, File string }
type ConfigDiag struct {
	TriggerFile, ConfigFileName string
	Diagnostics                 []coorderr.Diagnostic
}
type ServiceState struct {
	Project string
	Enabled bool
}

func (r *RecordingEvents) ContextChanged(project, file string) {
	r.ContextChanges = append(r.ContextChanges, ContextChange{project, file})
}

func (r *RecordingEvents) ConfigFileDiagnostics(triggerFile, configFileName string, diags []coorderr.Diagnostic) {
	r.ConfigDiags = append(r.ConfigDiags, ConfigDiag{triggerFile, configFileName, diags})
}

func (r *RecordingEvents) LanguageServiceState(project string, enabled bool) {
	r.ServiceStates = append(r.ServiceStates, ServiceState{project, enabled})
}

func (r *RecordingEvents) ProjectInfoTelemetry(info ProjectTelemetry) {
	r.Telemetry = append(r.Telemetry, info)
}
