package split

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementsBasic(t *testing.T) {
	stmts := Statements("CREATE TABLE a (id int);\nINSERT INTO a VALUES (1);")
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (id int)", stmts[0])
	assert.Equal(t, "INSERT INTO a VALUES (1)", stmts[1])
}

func TestStatementsConsecutiveTerminators(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Statements("A;;B;"))
}

func TestStatementsNoTrailingTerminator(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Statements("A;B"))
}

func TestStatementsEmptyScript(t *testing.T) {
	assert.Empty(t, Statements(""))
	assert.Empty(t, Statements("   \n\t  "))
	assert.Empty(t, Statements(";;;"))
}

func TestStatementsTerminatorInsideString(t *testing.T) {
	stmts := Statements("INSERT INTO t VALUES ('a;b')")
	require.Len(t, stmts, 1)
	assert.Equal(t, "INSERT INTO t VALUES ('a;b')", stmts[0])
}

func TestStatementsTerminatorInsideEscapedString(t *testing.T) {
	stmts := Statements("INSERT INTO t VALUES ('it''s; fine');SELECT 1")
	require.Len(t, stmts, 2)
	assert.Equal(t, "INSERT INTO t VALUES ('it''s; fine')", stmts[0])
}

func TestStatementsTerminatorInsideBracketIdentifier(t *testing.T) {
	stmts := Statements("SELECT [a;b] FROM t")
	require.Len(t, stmts, 1)
}

func TestStatementsTerminatorInsideComments(t *testing.T) {
	stmts := Statements("SELECT 1 -- one; two\n, 2 /* three; four */ FROM t")
	require.Len(t, stmts, 1)
}

func TestStatementsCommentOnlyScript(t *testing.T) {
	assert.Empty(t, Statements("-- just a comment\n/* and a block */"))
}

func TestStatementsTrailingCommentDropped(t *testing.T) {
	stmts := Statements("CREATE TABLE a (id int);\n-- migration generated 2024\n")
	require.Len(t, stmts, 1)
	assert.Equal(t, "CREATE TABLE a (id int)", stmts[0])
}

func TestStatementsCommentBetweenStatementsDropped(t *testing.T) {
	stmts := Statements("A;\n/* section */;\nB;")
	assert.Equal(t, []string{"A", "B"}, stmts)
}

func TestStatementsCommentAttachedToStatementKept(t *testing.T) {
	stmts := Statements("-- create the table\nCREATE TABLE a (id int);")
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], "create the table")
	assert.Contains(t, stmts[0], "CREATE TABLE")
}

func TestSplitOffsets(t *testing.T) {
	script := "A; B"
	stmts := Split(script)
	require.Len(t, stmts, 2)
	assert.Equal(t, Statement{Text: "A", Start: 0, End: 2}, stmts[0])
	assert.Equal(t, Statement{Text: "B", Start: 2, End: 4}, stmts[1])
}

func TestSplitOffsetsCoverTerminators(t *testing.T) {
	script := "CREATE TABLE a (id int);\n\nDROP TABLE b;\n"
	stmts := Split(script)
	require.Len(t, stmts, 2)
	for _, st := range stmts {
		assert.Equal(t, st.Text, strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(script[st.Start:st.End]), ";")))
	}
}

// Rejoining the statements with terminators reproduces the script up to
// whitespace.
func TestSplitRoundTrip(t *testing.T) {
	script := "CREATE TABLE a (\n  id int\n);\nINSERT INTO a VALUES ('x;y');\nDROP TABLE a"
	stmts := Statements(script)
	rejoined := strings.Join(stmts, "; ")
	assert.Equal(t, normalizeWhitespace(script), normalizeWhitespace(rejoined))
}

var wsRe = regexp.MustCompile(`\s+`)

func normalizeWhitespace(s string) string {
	return wsRe.ReplaceAllString(strings.TrimSpace(s), " ")
}
