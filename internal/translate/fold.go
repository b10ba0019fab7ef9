package translate

import (
	"regexp"
	"sort"
	"strings"

	"sqlshift/internal/scan"
	"sqlshift/internal/split"
)

var (
	alterPKRe = regexp.MustCompile(`(?is)^ALTER\s+TABLE\s+([\pL\pN_]+(?:\s*\.\s*[\pL\pN_]+)*)\s+ADD\s+CONSTRAINT\s+[\pL\pN_]+\s+PRIMARY\s+KEY(?:\s+(?:CLUSTERED|NONCLUSTERED))?\s*\(([^()]*)\)\s*$`)

	createTableRe = regexp.MustCompile(`(?is)^CREATE\s+TABLE\s+([\pL\pN_]+(?:\s*\.\s*[\pL\pN_]+)*)\s*\(`)

	primaryKeyRe = regexp.MustCompile(`(?i)\bPRIMARY\s+KEY\b`)

	autoIncColumnRe = regexp.MustCompile(`(?im)^\s*([\pL\pN_]+)\s+[\pL\pN_]+(?:\s*\([^()]*\))?\s+AUTO_INCREMENT\b`)

	ascDescRe = regexp.MustCompile(`(?i)\s+(?:ASC|DESC)\s*$`)
)

// textEdit is a pending replacement of script[start:end] with repl. Edits are
// collected first and applied back-to-front so byte offsets stay valid.
type textEdit struct {
	start, end int
	repl       string
}

// foldPrimaryKeys merges separately expressed primary key constraints into
// their owning CREATE TABLE column lists. For every
// ALTER TABLE t ADD CONSTRAINT c PRIMARY KEY (cols) statement whose table is
// created in the same script and not yet keyed, the constraint is injected
// inline and the ALTER statement removed. An ALTER whose target cannot be
// located, or whose table is already keyed, is preserved verbatim. Finally,
// a table that gained an AUTO_INCREMENT column but still has no primary key
// anywhere gets PRIMARY KEY (col) appended, because MySQL requires
// AUTO_INCREMENT columns to be part of a key.
//
// Multiple constraint statements for the same table are handled
// independently: the first foldable one folds, later ones find the table
// already keyed and are preserved.
func foldPrimaryKeys(text string, rep *Report) string {
	stmts := split.Split(text)

	// Tables created in this script, keyed by lowercase bare name.
	creates := map[string]int{}
	for i, st := range stmts {
		if m := createTableRe.FindStringSubmatch(st.Text); m != nil {
			creates[strings.ToLower(lastIdent(m[1]))] = i
		}
	}

	var edits []textEdit
	keyed := map[string]bool{} // tables that have or will have a primary key
	for name, idx := range creates {
		if primaryKeyRe.MatchString(normalText(stmts[idx].Text)) {
			keyed[name] = true
		}
	}

	for _, st := range stmts {
		m := alterPKRe.FindStringSubmatch(st.Text)
		if m == nil {
			continue
		}
		table := strings.ToLower(lastIdent(m[1]))
		idx, ok := creates[table]
		if !ok || keyed[table] {
			rep.PrimaryKeysPreserved++
			continue
		}
		cols := cleanKeyColumns(m[2])
		if cols == "" {
			rep.PrimaryKeysPreserved++
			continue
		}
		insert, ok := primaryKeyInsertion(text, stmts[idx], cols)
		if !ok {
			rep.PrimaryKeysPreserved++
			continue
		}
		edits = append(edits, insert)
		edits = append(edits, textEdit{start: st.Start, end: st.End, repl: ""})
		keyed[table] = true
		rep.PrimaryKeysFolded++
	}

	// Synthesize a key for AUTO_INCREMENT tables left unkeyed.
	for name, idx := range creates {
		if keyed[name] {
			continue
		}
		m := autoIncColumnRe.FindStringSubmatch(stmts[idx].Text)
		if m == nil {
			continue
		}
		insert, ok := primaryKeyInsertion(text, stmts[idx], m[1])
		if !ok {
			continue
		}
		edits = append(edits, insert)
		keyed[name] = true
		rep.PrimaryKeysSynthesized++
	}

	return applyEdits(text, edits)
}

// primaryKeyInsertion builds the edit that injects PRIMARY KEY (cols) before
// the closing parenthesis of a CREATE TABLE column list. The closing paren is
// found by depth counting over normal-mode spans only, so parentheses inside
// literals or comments are ignored.
func primaryKeyInsertion(script string, st split.Statement, cols string) (textEdit, bool) {
	// Offset of the statement's trimmed text within the script.
	base := st.Start + strings.Index(script[st.Start:st.End], st.Text)
	closing := columnListEnd(st.Text)
	if closing < 0 {
		return textEdit{}, false
	}

	clause := ",\n  PRIMARY KEY (" + cols + ")\n"
	if endsWithComma(st.Text[:closing]) {
		clause = "\n  PRIMARY KEY (" + cols + ")\n"
	}
	return textEdit{start: base + closing, end: base + closing, repl: clause}, true
}

// columnListEnd returns the offset of the parenthesis closing the first
// normal-mode paren group of stmt, or -1 when the group never closes.
func columnListEnd(stmt string) int {
	depth := 0
	opened := false
	for _, s := range scan.Spans(stmt) {
		if s.Mode != scan.Normal {
			continue
		}
		for i := s.Start; i < s.End; i++ {
			switch stmt[i] {
			case '(':
				depth++
				opened = true
			case ')':
				depth--
				if opened && depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}

func endsWithComma(s string) bool {
	s = strings.TrimRight(s, " \t\r\n")
	return strings.HasSuffix(s, ",")
}

// cleanKeyColumns normalizes a SQL Server key column list: per-column
// ASC/DESC ordering is dropped (MySQL primary keys take bare column names).
func cleanKeyColumns(list string) string {
	parts := strings.Split(list, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = ascDescRe.ReplaceAllString(strings.TrimSpace(p), "")
		if p != "" {
			cols = append(cols, p)
		}
	}
	return strings.Join(cols, ", ")
}

// normalText returns only the normal-mode bytes of text, used when a keyword
// search must not be fooled by literals or comments.
func normalText(text string) string {
	var b strings.Builder
	for _, s := range scan.Spans(text) {
		if s.Mode == scan.Normal {
			b.WriteString(text[s.Start:s.End])
		}
	}
	return b.String()
}

// applyEdits replaces the edited ranges back-to-front.
func applyEdits(text string, edits []textEdit) string {
	if len(edits) == 0 {
		return text
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	for _, e := range edits {
		text = text[:e.start] + e.repl + text[e.end:]
	}
	return text
}
