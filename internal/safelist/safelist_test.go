package safelist

import (
	"testing"

	"pscoord/internal/host"
)

func loadFromContents(t *testing.T, contents string) *List {
	t.Helper()
	h := host.NewFakeHost(true)
	h.WriteFile("/safelist.json", contents)
	list, err := Load("/safelist.json", h, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return list
}

func TestApplyExcludesWholeRootWithNoExcludePattern(t *testing.T) {
	list := loadFromContents(t, `{
		"jquery": {"match": "jquery.*\\.js$", "types": ["jquery"]}
	}`)

	roots := []string{"/lib/jquery-1.10.2.min.js", "/src/app.js"}
	res := Apply(list, roots, nil)
	filtered := FilterRoots(roots, res)

	if len(filtered) != 1 || filtered[0] != "/src/app.js" {
		t.Fatalf("filtered = %v, want only /src/app.js to survive", filtered)
	}
	if len(res.Typings) != 1 || res.Typings[0] != "jquery" {
		t.Fatalf("Typings = %v, want [jquery]", res.Typings)
	}
}

func TestApplyDedupesTypingsAcrossMultipleRoots(t *testing.T) {
	list := loadFromContents(t, `{
		"jquery": {"match": "jquery.*\\.js$", "types": ["jquery"]}
	}`)

	roots := []string{"/lib/jquery.js", "/lib/jquery-ui.js"}
	res := Apply(list, roots, nil)

	if len(res.Typings) != 1 {
		t.Fatalf("Typings = %v, want a single deduped jquery entry", res.Typings)
	}
}

func TestApplyWithCaptureGroupExclude(t *testing.T) {
	list := loadFromContents(t, `{
		"angular": {
			"match": "^.*/(angular)/.*\\.js$",
			"exclude": [["node_modules/", "1", "/"]],
			"types": ["angular"]
		}
	}`)

	roots := []string{"/node_modules/angular/angular.min.js"}
	res := Apply(list, roots, nil)
	filtered := FilterRoots(roots, res)

	if len(filtered) != 0 {
		t.Fatalf("filtered = %v, want the matched root excluded", filtered)
	}
}

func TestLoadSkipsInvalidRegexRules(t *testing.T) {
	h := host.NewFakeHost(true)
	h.WriteFile("/safelist.json", `{
		"bad": {"match": "("},
		"good": {"match": "ok"}
	}`)

	list, err := Load("/safelist.json", h, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(list.Rules) != 1 || list.Rules[0].Name != "good" {
		t.Fatalf("Rules = %v, want only the well-formed rule to survive", list.Rules)
	}
}

func TestFilterRootsNoExcludesReturnsSameSlice(t *testing.T) {
	roots := []string{"/a.js", "/b.js"}
	out := FilterRoots(roots, Result{})
	if len(out) != 2 {
		t.Fatalf("out = %v, want both roots preserved with no rules matched", out)
	}
}
