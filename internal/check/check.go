// Package check validates that translated statements parse under MySQL
// grammar. It runs after translation as an optional gate; the translator
// itself stays pattern-based and never consults the parser.
package check

import (
	"github.com/pingcap/tidb/pkg/parser"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver" // required to register TiDB parser driver implementations
)

// Result is the parse verdict for one statement, identified by its position
// in the split statement list.
type Result struct {
	Index int
	Err   error
}

// Checker wraps a TiDB parser instance. The parser keeps internal buffers, so
// a Checker is not safe for concurrent use; create one per goroutine.
type Checker struct {
	parser *parser.Parser
}

// New returns a ready Checker.
func New() *Checker {
	return &Checker{parser: parser.New()}
}

// Validate parses every statement and returns a Result per statement, in
// order. A parse failure never stops validation of the remaining statements.
func (c *Checker) Validate(statements []string) []Result {
	results := make([]Result, 0, len(statements))
	for i, stmt := range statements {
		_, _, err := c.parser.Parse(stmt, "", "")
		results = append(results, Result{Index: i, Err: err})
	}
	return results
}

// Failures filters results down to the statements that did not parse.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
