// Package scan classifies every position of a SQL script as being inside or
// outside a string literal, bracket-quoted identifier, or comment. It is the
// leaf dependency of the statement splitter and the dialect translator: both
// must never act on a terminator or keyword that only appears inside a
// protected region.
package scan

// Mode identifies the lexical region a byte of input belongs to.
type Mode int

const (
	// Normal is plain SQL text outside any literal or comment.
	Normal Mode = iota
	// SingleQuote is the inside of a '...' string literal, including the
	// delimiting quotes. A doubled '' stays inside the literal.
	SingleQuote
	// BracketIdent is a SQL Server [quoted identifier], including the
	// brackets. Brackets do not nest.
	BracketIdent
	// LineComment runs from -- to the end of the line.
	LineComment
	// BlockComment runs from /* to the next */ (non-nesting).
	BlockComment
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case SingleQuote:
		return "string"
	case BracketIdent:
		return "bracket"
	case LineComment:
		return "line-comment"
	case BlockComment:
		return "block-comment"
	default:
		return "unknown"
	}
}

// Protected reports whether the mode marks a region that rewrite rules and
// the splitter must not inspect.
func (m Mode) Protected() bool {
	return m != Normal
}

// Span is a contiguous run of input bytes sharing one Mode. Start is
// inclusive, End exclusive. Delimiters (quotes, brackets, comment markers)
// belong to the span they open or close.
type Span struct {
	Start int
	End   int
	Mode  Mode
}

// Spans partitions text into contiguous mode spans in a single left-to-right
// pass. The spans cover the entire input with no gaps or overlaps. A region
// left unterminated at end of input is closed implicitly; callers treat the
// remainder as part of the open region. Mode transitions only ever look at
// the current byte and the one after it, so all trigger characters are ASCII
// and multi-byte runes pass through untouched.
func Spans(text string) []Span {
	if text == "" {
		return nil
	}

	var spans []Span
	mode := Normal
	start := 0

	emit := func(end int, next Mode) {
		if end > start {
			spans = append(spans, Span{Start: start, End: end, Mode: mode})
		}
		start = end
		mode = next
	}

	n := len(text)
	for i := 0; i < n; i++ {
		c := text[i]
		var peek byte
		if i+1 < n {
			peek = text[i+1]
		}

		switch mode {
		case Normal:
			switch {
			case c == '\'':
				emit(i, SingleQuote)
			case c == '[':
				emit(i, BracketIdent)
			case c == '-' && peek == '-':
				emit(i, LineComment)
				i++
			case c == '/' && peek == '*':
				emit(i, BlockComment)
				i++
			}
		case SingleQuote:
			if c == '\'' {
				if peek == '\'' {
					i++ // escaped quote, stay in the literal
					continue
				}
				emit(i+1, Normal)
			}
		case BracketIdent:
			if c == ']' {
				emit(i+1, Normal)
			}
		case LineComment:
			if c == '\n' {
				emit(i, Normal)
			}
		case BlockComment:
			if c == '*' && peek == '/' {
				emit(i+2, Normal)
				i++
			}
		}
	}

	emit(n, Normal)
	return spans
}
