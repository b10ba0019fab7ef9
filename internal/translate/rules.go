package translate

import (
	"regexp"
	"strconv"
	"strings"

	"sqlshift/internal/scan"
)

// qualName matches a possibly schema-qualified, possibly bracket-quoted
// object name such as [dbo].[Recipe], dbo.Recipe, or Recipe.
const qualName = `(?:\[[^\[\]]+\]|[\pL\pN_]+)(?:\s*\.\s*(?:\[[^\[\]]+\]|[\pL\pN_]+))*`

var (
	identRe = regexp.MustCompile(`^[\pL\pN_]+$`)

	dropGuardRe = regexp.MustCompile(`(?is)\bIF\s+EXISTS\s*\(\s*SELECT\s+\*\s+FROM\s+sys\.all_objects\s+WHERE\s+object_id\s*=\s*OBJECT_ID\(\s*N?'([^']+)'\s*\)\s+AND\s+type\s+IN\s*\(\s*N?'U'\s*\)\s*\)\s*DROP\s+TABLE\s+(` + qualName + `)`)

	bannerDashesRe   = regexp.MustCompile(`^--\s*-{4,}\s*$`)
	bannerRecordsRe  = regexp.MustCompile(`(?i)^--\s*Records\s+of\b`)
	bannerPKStructRe = regexp.MustCompile(`(?i)^--\s*Primary\s+Key\s+structure\b`)

	batchSeparatorRe = regexp.MustCompile(`(?im)^[ \t]*GO[ \t]*\r?$`)

	identityInsertRe = regexp.MustCompile(`(?i)\bSET\s+IDENTITY_INSERT\s+[\pL\pN_]+(?:\s*\.\s*[\pL\pN_]+)*\s+(?:ON|OFF)\b`)

	lockEscalationRe = regexp.MustCompile(`(?i)\bALTER\s+TABLE\s+[\pL\pN_]+(?:\s*\.\s*[\pL\pN_]+)*\s+SET\s*\(\s*LOCK_ESCALATION\s*=\s*\w+\s*\)`)

	withOnPrimaryRe = regexp.MustCompile(`(?i)\s*\bWITH\s*\([^()]*\)\s*ON\s+PRIMARY\b`)
	onPrimaryRe     = regexp.MustCompile(`(?i)\s*\bON\s+PRIMARY\b(?:\s+TEXTIMAGE_ON\s+PRIMARY\b)?`)

	collateRe = regexp.MustCompile(`(?i)\s+COLLATE\s+[\pL\pN_]+`)

	identityRe     = regexp.MustCompile(`(?i)\bIDENTITY\s*\(\s*(\d+)\s*,\s*(\d+)\s*\)`)
	bareIdentityRe = regexp.MustCompile(`(?i)\b(int|bigint|smallint|tinyint|numeric\s*\([^()]*\)|decimal\s*\([^()]*\))\s+IDENTITY\b`)

	numericRe    = regexp.MustCompile(`(?i)\bnumeric\b`)
	smallmoneyRe = regexp.MustCompile(`(?i)\bsmallmoney\b`)
	moneyRe      = regexp.MustCompile(`(?i)\bmoney\b`)
)

// rewriteDropTableGuards turns the SQL Server existence-guarded drop idiom
// into DROP TABLE IF EXISTS. The pattern spans a string literal (the
// OBJECT_ID argument), so this rule runs unprotected and before unbracketing.
// RE2 has no backreferences; the guard and the drop target are captured
// separately and compared here.
func rewriteDropTableGuards(text string, rep *Report) string {
	return dropGuardRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := dropGuardRe.FindStringSubmatch(m)
		guarded := lastIdent(sub[1])
		target := lastIdent(sub[2])
		if !strings.EqualFold(guarded, target) {
			return m
		}
		rep.DropTableGuards++
		return "DROP TABLE IF EXISTS " + target
	})
}

// removeBannerComments drops the decorative line comments SQL Server export
// tools emit (dash separators, "-- Records of ...", "-- Primary Key
// structure ..."). It is the one rule that inspects line-comment spans.
func removeBannerComments(text string, rep *Report) string {
	spans := scan.Spans(text)
	var b strings.Builder
	b.Grow(len(text))
	skipNewline := false
	for _, s := range spans {
		seg := text[s.Start:s.End]
		if skipNewline {
			seg = strings.TrimPrefix(seg, "\n")
			skipNewline = false
		}
		if s.Mode == scan.LineComment && isBannerComment(seg) {
			rep.BannerCommentsRemoved++
			skipNewline = true
			continue
		}
		b.WriteString(seg)
	}
	return b.String()
}

func isBannerComment(comment string) bool {
	comment = strings.TrimRight(comment, "\r")
	return bannerDashesRe.MatchString(comment) ||
		bannerRecordsRe.MatchString(comment) ||
		bannerPKStructRe.MatchString(comment)
}

// rewriteBatchSeparators replaces standalone GO batch separators with
// statement terminators. GO is a client-side construct; MySQL only knows
// semicolons. The line anchors must see the whole text, not normal-mode
// segments, or a GO right after a closing quote on the same line would look
// line-initial; so the rule runs unprotected and checks span containment
// itself.
func rewriteBatchSeparators(text string, rep *Report) string {
	matches := batchSeparatorRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	spans := scan.Spans(text)
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		if !withinNormal(spans, m[0], m[1]) {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(";")
		last = m[1]
		rep.BatchSeparators++
	}
	b.WriteString(text[last:])
	return b.String()
}

func withinNormal(spans []scan.Span, start, end int) bool {
	for _, s := range spans {
		if start >= s.Start && end <= s.End {
			return s.Mode == scan.Normal
		}
	}
	return false
}

// unbracketIdentifiers strips [brackets] from quoted identifiers whose inner
// token matches the identifier grammar (letters, digits, underscore;
// Unicode letters cover localized names). A span whose content fails the
// grammar is left verbatim and counted as skipped so translation never fails
// outright on one malformed identifier.
func unbracketIdentifiers(text string, rep *Report) string {
	spans := scan.Spans(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, s := range spans {
		seg := text[s.Start:s.End]
		if s.Mode != scan.BracketIdent {
			b.WriteString(seg)
			continue
		}
		if len(seg) < 2 || seg[len(seg)-1] != ']' {
			// Unterminated at end of input; leave as-is.
			rep.BracketsSkipped++
			b.WriteString(seg)
			continue
		}
		inner := seg[1 : len(seg)-1]
		if !identRe.MatchString(inner) {
			rep.BracketsSkipped++
			b.WriteString(seg)
			continue
		}
		rep.BracketsRemoved++
		b.WriteString(inner)
	}
	return b.String()
}

// removeIdentityInsert deletes SET IDENTITY_INSERT ... ON/OFF statements.
// MySQL has no equivalent; AUTO_INCREMENT columns accept explicit values
// without a mode switch. The statement body is removed and its stray
// terminator is later dropped by the splitter as an empty statement.
func removeIdentityInsert(text string, rep *Report) string {
	return identityInsertRe.ReplaceAllStringFunc(text, func(string) string {
		rep.IdentityInsertRemoved++
		return ""
	})
}

// removeLockEscalation deletes ALTER TABLE ... SET (LOCK_ESCALATION = ...)
// statements, a SQL Server storage knob with no MySQL counterpart.
func removeLockEscalation(text string, rep *Report) string {
	return lockEscalationRe.ReplaceAllStringFunc(text, func(string) string {
		rep.LockEscalationRemoved++
		return ""
	})
}

// removeStorageClauses deletes WITH (...) index option lists and ON PRIMARY /
// TEXTIMAGE_ON PRIMARY filegroup placements left over from SQL Server DDL.
func removeStorageClauses(text string, rep *Report) string {
	text = withOnPrimaryRe.ReplaceAllStringFunc(text, func(string) string {
		rep.StorageClausesRemoved++
		return ""
	})
	return onPrimaryRe.ReplaceAllStringFunc(text, func(string) string {
		rep.StorageClausesRemoved++
		return ""
	})
}

// removeCollateClauses strips COLLATE plus the following collation name.
// Runs after unbracketing; COLLATE never appears inside brackets.
func removeCollateClauses(text string, rep *Report) string {
	return collateRe.ReplaceAllStringFunc(text, func(string) string {
		rep.CollateClausesRemoved++
		return ""
	})
}

// rewriteIdentityColumns maps IDENTITY(seed, increment) to AUTO_INCREMENT.
// MySQL has no inline seed/increment syntax in this position, so the pair is
// discarded; a non-default pair is recorded as a note because that
// information is lost and any ALTER TABLE ... AUTO_INCREMENT = N follow-up
// is the caller's responsibility.
func rewriteIdentityColumns(text string, rep *Report) string {
	text = identityRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := identityRe.FindStringSubmatch(m)
		seed, _ := strconv.Atoi(sub[1])
		increment, _ := strconv.Atoi(sub[2])
		rep.IdentityColumns++
		if seed != 1 || increment != 1 {
			rep.addNote("IDENTITY(%d,%d) mapped to AUTO_INCREMENT; seed/increment discarded, set AUTO_INCREMENT = %d manually if required", seed, increment, seed)
		}
		return "AUTO_INCREMENT"
	})
	// Bare IDENTITY without a seed pair defaults to (1,1). The property only
	// attaches to exact numeric types, so the match requires a preceding type
	// token; without that anchor a column named Identity would be rewritten.
	return bareIdentityRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := bareIdentityRe.FindStringSubmatch(m)
		rep.IdentityColumns++
		return sub[1] + " AUTO_INCREMENT"
	})
}

// mapTypes converts SQL Server numeric types to their MySQL equivalents:
// numeric(p,s) → decimal(p,s), money → decimal(19,4), smallmoney →
// decimal(10,4). Word boundaries keep identifiers like numeric_value intact;
// a column literally named after a type would still be caught, which a
// pattern rewriter cannot distinguish without parsing.
func mapTypes(text string, rep *Report) string {
	text = numericRe.ReplaceAllStringFunc(text, func(string) string {
		rep.NumericTypesMapped++
		return "decimal"
	})
	text = smallmoneyRe.ReplaceAllStringFunc(text, func(string) string {
		rep.MoneyTypesMapped++
		return "decimal(10,4)"
	})
	return moneyRe.ReplaceAllStringFunc(text, func(string) string {
		rep.MoneyTypesMapped++
		return "decimal(19,4)"
	})
}

// lastIdent reduces a possibly qualified, possibly bracketed name to its
// final bare identifier: [dbo].[Recipe] → Recipe.
func lastIdent(name string) string {
	name = strings.NewReplacer("[", "", "]", "").Replace(name)
	parts := strings.Split(name, ".")
	for i := len(parts) - 1; i >= 0; i-- {
		if p := strings.TrimSpace(parts[i]); p != "" {
			return p
		}
	}
	return strings.TrimSpace(name)
}
