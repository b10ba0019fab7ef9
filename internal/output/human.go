package output

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"sqlshift/internal/exec"
	"sqlshift/internal/translate"
)

type humanFormatter struct{}

// FormatReport renders a translation report as an aligned counter list,
// omitting rules that never fired.
func (humanFormatter) FormatReport(r *translate.Report) (string, error) {
	if r == nil {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("Translation report:\n")

	counters := []struct {
		label string
		count int
	}{
		{"DROP TABLE guards rewritten", r.DropTableGuards},
		{"Banner comments removed", r.BannerCommentsRemoved},
		{"GO batch separators replaced", r.BatchSeparators},
		{"Bracket identifiers unquoted", r.BracketsRemoved},
		{"Bracket identifiers skipped", r.BracketsSkipped},
		{"IDENTITY_INSERT statements removed", r.IdentityInsertRemoved},
		{"LOCK_ESCALATION statements removed", r.LockEscalationRemoved},
		{"Storage clauses removed", r.StorageClausesRemoved},
		{"COLLATE clauses removed", r.CollateClausesRemoved},
		{"IDENTITY columns mapped", r.IdentityColumns},
		{"numeric types mapped", r.NumericTypesMapped},
		{"money types mapped", r.MoneyTypesMapped},
		{"Primary keys folded inline", r.PrimaryKeysFolded},
		{"Primary keys preserved as ALTER", r.PrimaryKeysPreserved},
		{"Primary keys synthesized", r.PrimaryKeysSynthesized},
	}

	any := false
	for _, c := range counters {
		if c.count == 0 {
			continue
		}
		any = true
		fmt.Fprintf(&b, "  %-36s %d\n", c.label, c.count)
	}
	if !any {
		b.WriteString("  no rewrites applied\n")
	}

	if len(r.Notes) > 0 {
		b.WriteString("Notes:\n")
		for _, note := range r.Notes {
			fmt.Fprintf(&b, "  - %s\n", note)
		}
	}

	return b.String(), nil
}

// FormatOutcomes renders per-statement execution results followed by a
// success/failure summary line.
func (humanFormatter) FormatOutcomes(outcomes []exec.Outcome) (string, error) {
	var b strings.Builder
	for _, o := range outcomes {
		if o.Failed() {
			fmt.Fprintf(&b, "%d. FAILED: %s\n   %s\n", o.Index+1, firstLine(o.Statement), o.Err)
		} else {
			fmt.Fprintf(&b, "%d. ok (%s)\n", o.Index+1, o.Duration.Round(time.Millisecond))
		}
	}
	succeeded, failed := exec.Summary(outcomes)
	fmt.Fprintf(&b, "Executed %d statement(s): %d succeeded, %d failed\n", len(outcomes), succeeded, failed)
	return b.String(), nil
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		stmt = stmt[:i]
	}
	if len(stmt) > 80 {
		cut := 77
		for cut > 0 && !utf8.RuneStart(stmt[cut]) {
			cut--
		}
		stmt = stmt[:cut] + "..."
	}
	return stmt
}
