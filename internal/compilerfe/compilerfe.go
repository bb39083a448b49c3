// Package compilerfe is the contract boundary for the compiler front-end
// collaborator: parsing a configuration file into a typed record, and
// producing a language-service factory. The real parser, type checker and
// language service live outside this module's scope; this package only
// carries enough of a default implementation — extension-based
// script-kind tagging and a minimal files/include/exclude/extends-aware
// JSON parse — to drive the coordinator's reconciliation algorithm and
// its tests without a real type checker.
package compilerfe

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"pscoord/internal/coorderr"
)

// ScriptKind tags what a file's bytes are understood to contain.
type ScriptKind int

const (
	KindUnknown ScriptKind = iota
	KindJS
	KindJSX
	KindTS
	KindTSX
	// KindExternalMixed marks a file declared by an External project that
	// mixes source with something the compiler does not understand (e.g. a
	// Vue single-file component). Mixed-content files are never watched.
	KindExternalMixed
)

func (k ScriptKind) String() string {
	switch k {
	case KindJS:
		return "JS"
	case KindJSX:
		return "JSX"
	case KindTS:
		return "TS"
	case KindTSX:
		return "TSX"
	case KindExternalMixed:
		return "external-mixed"
	default:
		return "unknown"
	}
}

// ScriptKindFromPath tags a path by extension the way the compiler
// front-end would on first reference to a Script.
func ScriptKindFromPath(path string) ScriptKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts":
		return KindTS
	case ".tsx":
		return KindTSX
	case ".js", ".mjs", ".cjs":
		return KindJS
	case ".jsx":
		return KindJSX
	default:
		return KindUnknown
	}
}

// IsSourceExtension reports whether path has a TypeScript-family extension.
// The size gate accounts only non-TypeScript-extension files against the
// budget; everything else (JS, JSX, and anything else a project pulled
// in) counts.
func IsSourceExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".d.ts":
		return true
	default:
		return false
	}
}

// TypeAcquisition mirrors the parsed typeAcquisition record of a config
// file.
type TypeAcquisition struct {
	Enable               bool     `json:"enable"`
	Include               []string `json:"include"`
	Exclude               []string `json:"exclude"`
}

// ParsedConfig is the typed record the compiler front-end collaborator
// returns for a configuration file.
type ParsedConfig struct {
	CompilerOptions map[string]interface{}
	FileNames       []string
	WildcardDirectories map[string]bool // dir -> recursive
	UsesFiles       bool
	UsesInclude     bool
	UsesExclude     bool
	UsesExtends     bool
	TypeAcquisition TypeAcquisition
	CompileOnSave   bool
	Diagnostics     []coorderr.Diagnostic
}

// rawConfig is the on-disk shape this default parser understands: a
// tsconfig/jsconfig-shaped JSON document. Real compiler front-ends resolve
// "extends" chains and glob include/exclude against the filesystem; this
// default implementation resolves only what it can do without a real
// filesystem glob engine, which is enough to drive the coordinator.
type rawConfig struct {
	CompilerOptions map[string]interface{} `json:"compilerOptions"`
	Files           []string                `json:"files"`
	Include         []string                `json:"include"`
	Exclude         []string                `json:"exclude"`
	Extends         string                  `json:"extends"`
	CompileOnSave   bool                    `json:"compileOnSave"`
	TypeAcquisition TypeAcquisition         `json:"typeAcquisition"`
}

// FileReader is the minimal host surface this parser needs: reading the
// config text itself and, for "files", checking the resolved paths exist.
type FileReader interface {
	ReadFile(path string) (string, bool)
	FileExists(path string) bool
	Glob(dir string, recursive bool) []string
}

// ParseConfigFile parses configFilePath using reader, resolving "files"
// relative to the config's directory. Each include entry (with a trailing
// "/**" trimmed) is recorded as a recursive wildcard directory under the
// config directory and every file below it is taken, minus exclude
// matches; this default implementation does not expand globs beyond that.
func ParseConfigFile(configFilePath string, reader FileReader) ParsedConfig {
	dir := filepath.Dir(configFilePath)

	text, ok := reader.ReadFile(configFilePath)
	if !ok {
		return ParsedConfig{
			Diagnostics: []coorderr.Diagnostic{
				coorderr.NewDiagnostic(coorderr.CodeReadFailed, fmt.Sprintf("cannot read %s", configFilePath)),
			},
		}
	}

	var raw rawConfig
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return ParsedConfig{
			Diagnostics: []coorderr.Diagnostic{
				coorderr.NewDiagnostic(coorderr.CodeConfigParseFailed, fmt.Sprintf("%s: %v", configFilePath, err)),
			},
		}
	}

	out := ParsedConfig{
		CompilerOptions:     raw.CompilerOptions,
		WildcardDirectories: make(map[string]bool),
		UsesFiles:           len(raw.Files) > 0,
		UsesInclude:         len(raw.Include) > 0,
		UsesExclude:         len(raw.Exclude) > 0,
		UsesExtends:         raw.Extends != "",
		TypeAcquisition:     raw.TypeAcquisition,
		CompileOnSave:       raw.CompileOnSave,
	}

	seen := make(map[string]bool)
	var missing []string
	for _, f := range raw.Files {
		abs := filepath.Join(dir, f)
		if !reader.FileExists(abs) {
			missing = append(missing, f)
			continue
		}
		if !seen[abs] {
			seen[abs] = true
			out.FileNames = append(out.FileNames, abs)
		}
	}

	for _, inc := range raw.Include {
		wdir := filepath.Join(dir, strings.TrimSuffix(inc, "/**"))
		out.WildcardDirectories[wdir] = true
		for _, f := range reader.Glob(wdir, true) {
			if excluded(f, raw.Exclude, dir) {
				continue
			}
			if !seen[f] {
				seen[f] = true
				out.FileNames = append(out.FileNames, f)
			}
		}
	}

	if len(raw.Files) == 0 && len(raw.Include) == 0 {
		out.WildcardDirectories[dir] = true
		for _, f := range reader.Glob(dir, true) {
			if excluded(f, raw.Exclude, dir) {
				continue
			}
			if !seen[f] {
				seen[f] = true
				out.FileNames = append(out.FileNames, f)
			}
		}
	}

	sort.Strings(out.FileNames)

	if len(missing) > 0 {
		out.Diagnostics = append(out.Diagnostics, coorderr.NewDiagnostic(
			coorderr.CodeConfigMissingInputs,
			fmt.Sprintf("%s: files not found on disk: %s", configFilePath, strings.Join(missing, ", ")),
		))
	}
	if len(out.FileNames) == 0 {
		out.Diagnostics = append(out.Diagnostics, coorderr.NewDiagnostic(
			coorderr.CodeConfigNoFilesMatched,
			fmt.Sprintf("%s: no files matched", configFilePath),
		))
	}

	return out
}

func excluded(path string, patterns []string, dir string) bool {
	for _, p := range patterns {
		pat := filepath.Join(dir, p)
		if ok, _ := filepath.Match(pat, path); ok {
			return true
		}
		if strings.Contains(path, string(filepath.Separator)+strings.Trim(p, "/*")+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// LanguageServiceHandle is an opaque per-project query engine handle. The
// real implementation belongs to the compiler collaborator; the
// coordinator only needs to know it exists and can be rebuilt or torn down.
type LanguageServiceHandle struct {
	ProjectName string
	RootCount   int
	Dirty       bool
}

// CreateLanguageService builds (or rebuilds) the graph/program handle for a
// project's current root set. Real implementations would parse and
// type-check; this default stand-in just snapshots the root count so tests
// can assert a graph update ran.
func CreateLanguageService(projectName string, roots []string) *LanguageServiceHandle {
	return &LanguageServiceHandle{ProjectName: projectName, RootCount: len(roots)}
}
