// Package safelist implements the rule-based exclusion of known
// third-party bundles from externally declared projects.
package safelist

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"pscoord/internal/coordlog"
	"pscoord/internal/host"
)

// Rule is one named safelist entry: a match regex, an optional exclusion
// template (groups of string-or-capture-index tokens), and typings to
// inject when the rule fires.
type Rule struct {
	Name    string
	Match   *regexp.Regexp
	Exclude [][]string // raw tokens: literal strings or numeric capture refs like "1"
	Types   []string
}

// List holds the loaded rules in a slice. Load fills it by ranging over the
// decoded JSON object, so the order is not the order the rules were
// declared in the safelist file and may differ from one load to the next.
type List struct {
	Rules []Rule
}

// rawRule is the on-disk shape of one safelist rule.
type rawRule struct {
	Match   string          `json:"match"`
	Exclude [][]string      `json:"exclude,omitempty"`
	Types   []string        `json:"types,omitempty"`
}

// Load reads and JSON-decodes a safelist file via the host, compiling every
// rule's regex case-insensitively.
func Load(path string, h host.Host, log *coordlog.Logger) (*List, error) {
	text, ok := h.ReadFile(path)
	if !ok {
		return nil, fmt.Errorf("safelist: cannot read %s", path)
	}

	var raw map[string]rawRule
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("safelist: parse %s: %w", path, err)
	}

	list := &List{}
	for name, r := range raw {
		re, err := regexp.Compile("(?i)" + r.Match)
		if err != nil {
			if log != nil {
				log.Warn("safelist rule has invalid regex, skipping", map[string]interface{}{
					"rule": name, "match": r.Match, "error": err.Error(),
				})
			}
			continue
		}
		list.Rules = append(list.Rules, Rule{
			Name:    name,
			Match:   re,
			Exclude: r.Exclude,
			Types:   r.Types,
		})
	}
	return list, nil
}

// Result is what Apply computed for one external project: the exclusion
// regexes to apply to the root list, and the typings to inject.
type Result struct {
	Excludes []*regexp.Regexp
	Typings  []string
}

// Apply evaluates every rule against every root filename and returns the
// union of exclusion regexes and injected typings. It does not mutate
// roots; the caller applies Excludes to filter the external project's
// declared roots in place.
func Apply(list *List, roots []string, log *coordlog.Logger) Result {
	var res Result
	seenTyping := make(map[string]bool)

	for _, root := range roots {
		for _, rule := range list.Rules {
			m := rule.Match.FindStringSubmatch(root)
			if m == nil {
				continue
			}

			for _, t := range rule.Types {
				if !seenTyping[t] {
					seenTyping[t] = true
					res.Typings = append(res.Typings, t)
				}
			}

			if len(rule.Exclude) == 0 {
				res.Excludes = append(res.Excludes, regexp.MustCompile(regexp.QuoteMeta(root)))
				continue
			}

			for _, group := range rule.Exclude {
				pattern := substituteGroups(group, m, rule.Name, log)
				re, err := regexp.Compile(pattern)
				if err != nil {
					if log != nil {
						log.Warn("safelist exclusion pattern failed to compile", map[string]interface{}{
							"rule": rule.Name, "pattern": pattern, "error": err.Error(),
						})
					}
					continue
				}
				res.Excludes = append(res.Excludes, re)
			}
		}
	}
	return res
}

// substituteGroups builds one exclusion regex from a token list, replacing
// numeric capture-index tokens (1-indexed) with the matched group text.
// Tokens that reference a missing group degrade to a literal "\*" and log
// a warning.
func substituteGroups(tokens []string, m []string, ruleName string, log *coordlog.Logger) string {
	var b strings.Builder
	for _, tok := range tokens {
		if n, err := strconv.Atoi(tok); err == nil {
			if n >= 1 && n < len(m) {
				b.WriteString(regexp.QuoteMeta(m[n]))
			} else {
				if log != nil {
					log.Warn("safelist exclude token references missing capture group, degrading to literal", map[string]interface{}{
						"rule": ruleName, "group": n,
					})
				}
				b.WriteString(`\*`)
			}
			continue
		}
		b.WriteString(tok)
	}
	return b.String()
}

// FilterRoots removes every root matched by any of res.Excludes, returning
// the survivors. Applied to an External project's declared root list in
// place.
func FilterRoots(roots []string, res Result) []string {
	if len(res.Excludes) == 0 {
		return roots
	}
	var out []string
	for _, r := range roots {
		excluded := false
		for _, re := range res.Excludes {
			if re.MatchString(r) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, r)
		}
	}
	return out
}
