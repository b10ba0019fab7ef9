// Package translate rewrites SQL Server dialect DDL/DML into MySQL-compatible
// SQL. Translation is purely pattern-based over raw text: an ordered set of
// rewrite rules, each applied with the lexical scanner active so that nothing
// inside a string literal or comment is ever rewritten. The package does not
// parse SQL into an AST and does not validate semantics; it targets the fixed
// set of SQL Server constructs that show up in exported schema and data
// scripts.
package translate

import (
	"strings"

	"sqlshift/internal/scan"
)

// rule is one rewrite step. Protected rules are applied per normal-mode
// segment so their patterns cannot match inside literals or comments;
// unprotected rules see the whole text because their patterns deliberately
// cross protected spans or depend on real line boundaries (the DROP TABLE
// guard includes a string literal, the unbracket rule reads
// bracket-identifier content, the batch-separator rule anchors on full
// lines, the fold rule moves whole statements).
type rule struct {
	name      string
	protected bool
	apply     func(text string, rep *Report) string
}

// Translator holds the immutable, ordered rule set. Build it once with New
// and share it freely; Translate never mutates the translator or its input.
type Translator struct {
	rules []rule
}

// New returns a Translator with the full SQL Server → MySQL rule set in
// application order. Order is load-bearing: identifier unbracketing must run
// before COLLATE/IDENTITY/type handling so those patterns never fire inside a
// still-bracketed identifier, and type mapping runs last of the in-place
// rules so earlier rules see the original type names.
func New() *Translator {
	return &Translator{rules: []rule{
		{name: "drop-table-guard", apply: rewriteDropTableGuards},
		{name: "banner-comments", apply: removeBannerComments},
		{name: "batch-separator", apply: rewriteBatchSeparators},
		{name: "unbracket", apply: unbracketIdentifiers},
		{name: "identity-insert", protected: true, apply: removeIdentityInsert},
		{name: "lock-escalation", protected: true, apply: removeLockEscalation},
		{name: "storage-clauses", protected: true, apply: removeStorageClauses},
		{name: "collate", protected: true, apply: removeCollateClauses},
		{name: "identity", protected: true, apply: rewriteIdentityColumns},
		{name: "types", protected: true, apply: mapTypes},
		{name: "primary-key-fold", apply: foldPrimaryKeys},
	}}
}

// Translate applies every rule in order and returns the rewritten script
// together with a report of rule applications. The input is never modified.
// Translate is idempotent: every rule matches SQL Server syntax that is
// absent from the rule's own output, so re-running on translated text is a
// no-op.
func (t *Translator) Translate(script string) (string, *Report) {
	rep := &Report{}
	for _, r := range t.rules {
		if r.protected {
			script = applyToNormal(script, rep, r.apply)
		} else {
			script = r.apply(script, rep)
		}
	}
	return script, rep
}

// applyToNormal runs fn over each normal-mode segment of text and reassembles
// the result, leaving protected spans byte-for-byte intact. Segments are
// re-derived per rule because earlier rules shift offsets.
func applyToNormal(text string, rep *Report, fn func(string, *Report) string) string {
	spans := scan.Spans(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, s := range spans {
		seg := text[s.Start:s.End]
		if s.Mode == scan.Normal {
			seg = fn(seg, rep)
		}
		b.WriteString(seg)
	}
	return b.String()
}
