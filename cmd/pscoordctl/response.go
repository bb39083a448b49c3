package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutputFormat selects how a command renders its result: human-readable
// text or a JSON document a script can parse.
type OutputFormat string

const (
	FormatHuman OutputFormat = "human"
	FormatJSON  OutputFormat = "json"
)

// FormatResponse renders v according to format. JSON uses indented
// encoding so pscoordctl output stays diffable in a terminal; human
// rendering falls back to fmt's default struct formatting, since this CLI
// is a debug tool rather than a polished end-user surface.
func FormatResponse(v interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal response: %w", err)
		}
		return string(data), nil
	default:
		return humanFormat(v), nil
	}
}

func humanFormat(v interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%+v", v)
	return b.String()
}
