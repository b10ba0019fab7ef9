package output

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlshift/internal/exec"
	"sqlshift/internal/translate"
)

func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"", "human", "HUMAN", " human "} {
		f, err := NewFormatter(name)
		require.NoError(t, err, name)
		assert.IsType(t, humanFormatter{}, f, name)
	}

	f, err := NewFormatter("json")
	require.NoError(t, err)
	assert.IsType(t, jsonFormatter{}, f)

	_, err = NewFormatter("yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestHumanFormatReport(t *testing.T) {
	r := &translate.Report{
		BracketsRemoved: 12,
		IdentityColumns: 2,
		Notes:           []string{"seed discarded"},
	}

	out, err := humanFormatter{}.FormatReport(r)
	require.NoError(t, err)
	assert.Contains(t, out, "Bracket identifiers unquoted")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "IDENTITY columns mapped")
	assert.NotContains(t, out, "COLLATE clauses removed")
	assert.Contains(t, out, "seed discarded")
}

func TestHumanFormatReportEmpty(t *testing.T) {
	out, err := humanFormatter{}.FormatReport(&translate.Report{})
	require.NoError(t, err)
	assert.Contains(t, out, "no rewrites applied")
}

func TestHumanFormatOutcomes(t *testing.T) {
	outcomes := []exec.Outcome{
		{Index: 0, Statement: "CREATE TABLE a (id int)", Duration: 12 * time.Millisecond},
		{Index: 1, Statement: "DROP TABLE missing", Err: errors.New("table does not exist")},
	}

	out, err := humanFormatter{}.FormatOutcomes(outcomes)
	require.NoError(t, err)
	assert.Contains(t, out, "1. ok")
	assert.Contains(t, out, "2. FAILED: DROP TABLE missing")
	assert.Contains(t, out, "table does not exist")
	assert.Contains(t, out, "Executed 2 statement(s): 1 succeeded, 1 failed")
}

func TestFirstLineTruncatesOnRuneBoundary(t *testing.T) {
	stmt := "INSERT INTO recipe (name) VALUES ('"
	for len(stmt) < 200 {
		stmt += "红烧肉"
	}
	got := firstLine(stmt)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 80)
	assert.Equal(t, "...", got[len(got)-3:])

	multiline := "SELECT 1\nFROM t"
	assert.Equal(t, "SELECT 1", firstLine(multiline))
}

func TestJSONFormatReport(t *testing.T) {
	r := &translate.Report{CollateClausesRemoved: 3}

	out, err := jsonFormatter{}.FormatReport(r)
	require.NoError(t, err)

	var payload struct {
		Format  string `json:"format"`
		Summary struct {
			Rewrites int `json:"rewrites"`
			Notes    int `json:"notes"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "json", payload.Format)
	assert.Equal(t, 3, payload.Summary.Rewrites)
	assert.Zero(t, payload.Summary.Notes)
}

func TestJSONFormatOutcomes(t *testing.T) {
	outcomes := []exec.Outcome{
		{Index: 0, Statement: "SELECT 1", Duration: 2 * time.Millisecond},
		{Index: 1, Statement: "SELECT bogus", Err: errors.New("unknown column")},
	}

	out, err := jsonFormatter{}.FormatOutcomes(outcomes)
	require.NoError(t, err)

	var payload struct {
		Outcomes []struct {
			Index     int    `json:"index"`
			Statement string `json:"statement"`
			Error     string `json:"error"`
		} `json:"outcomes"`
		Summary struct {
			Statements int `json:"statements"`
			Succeeded  int `json:"succeeded"`
			Failed     int `json:"failed"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Len(t, payload.Outcomes, 2)
	assert.Empty(t, payload.Outcomes[0].Error)
	assert.Equal(t, "unknown column", payload.Outcomes[1].Error)
	assert.Equal(t, 2, payload.Summary.Statements)
	assert.Equal(t, 1, payload.Summary.Succeeded)
	assert.Equal(t, 1, payload.Summary.Failed)
}
