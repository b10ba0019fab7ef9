// Package split divides a SQL script into individually executable statements.
// Terminators are honored only outside string literals, bracket identifiers,
// and comments, so a semicolon inside 'a;b' or [a;b] never splits.
package split

import (
	"strings"

	"sqlshift/internal/scan"
)

// Statement is one executable unit of a script. Text is trimmed; Start and
// End are byte offsets of the untrimmed unit in the original script, with End
// pointing past the terminating semicolon when one is present.
type Statement struct {
	Text  string
	Start int
	End   int
}

// Statements returns the trimmed statement texts of script in order. Empty
// and comment-only statements (for example between consecutive semicolons, or
// a trailing note after the last terminator) are dropped rather than
// reported; exported DDL routinely carries stray terminators, and a
// comment-only unit would be rejected by the server as an empty query.
func Statements(script string) []string {
	units := Split(script)
	out := make([]string, 0, len(units))
	for _, u := range units {
		out = append(out, u.Text)
	}
	return out
}

// Split returns the statements of script together with their byte offsets.
// The script is scanned once; a semicolon closes the current statement only
// when the scanner reports it in normal mode. Text after the last terminator
// is flushed as a final statement, so scripts need not end with a semicolon.
func Split(script string) []Statement {
	var stmts []Statement
	start := 0

	flush := func(end, next int) {
		text := strings.TrimSpace(script[start:end])
		if text != "" && !commentOnly(text) {
			stmts = append(stmts, Statement{Text: text, Start: start, End: next})
		}
		start = next
	}

	for _, span := range scan.Spans(script) {
		if span.Mode != scan.Normal {
			continue
		}
		for i := span.Start; i < span.End; i++ {
			if script[i] == ';' {
				flush(i, i+1)
			}
		}
	}
	flush(len(script), len(script))

	return stmts
}

// commentOnly reports whether text holds nothing but comments and whitespace.
func commentOnly(text string) bool {
	for _, s := range scan.Spans(text) {
		switch s.Mode {
		case scan.LineComment, scan.BlockComment:
		case scan.Normal:
			if strings.TrimSpace(text[s.Start:s.End]) != "" {
				return false
			}
		default:
			return false
		}
	}
	return true
}
