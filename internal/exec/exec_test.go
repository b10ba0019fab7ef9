package exec

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDryRun(t *testing.T) {
	r := NewRunner(Options{DryRun: true, Logger: zerolog.Nop()})
	statements := []string{"CREATE TABLE a (id int)", "DROP TABLE a"}

	outcomes := r.Run(context.Background(), statements)
	require.Len(t, outcomes, 2)
	for i, o := range outcomes {
		assert.Equal(t, i, o.Index)
		assert.Equal(t, statements[i], o.Statement)
		assert.False(t, o.Failed())
	}
}

func TestRunDryRunEmptyBatch(t *testing.T) {
	r := NewRunner(Options{DryRun: true, Logger: zerolog.Nop()})
	assert.Empty(t, r.Run(context.Background(), nil))
}

func TestCloseWithoutConnect(t *testing.T) {
	r := NewRunner(Options{Logger: zerolog.Nop()})
	assert.NoError(t, r.Close())
}

func TestConnectBadDSN(t *testing.T) {
	r := NewRunner(Options{DSN: "not a dsn", Logger: zerolog.Nop()})
	err := r.Connect(context.Background())
	require.Error(t, err)
	assert.NoError(t, r.Close())
}

func TestSummary(t *testing.T) {
	outcomes := []Outcome{
		{Index: 0},
		{Index: 1, Err: errors.New("boom")},
		{Index: 2},
	}
	succeeded, failed := Summary(outcomes)
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, failed)
}

func TestOutcomeFailed(t *testing.T) {
	assert.False(t, Outcome{}.Failed())
	assert.True(t, Outcome{Err: errors.New("boom")}.Failed())
}

func TestPreviewTruncation(t *testing.T) {
	short := "SELECT 1"
	assert.Equal(t, short, preview(short))

	long := ""
	for len(long) < 200 {
		long += "SELECT something FROM somewhere "
	}
	got := preview(long)
	assert.Len(t, got, 80)
	assert.True(t, len(got) < len(long))
	assert.Equal(t, "...", got[len(got)-3:])
}

func TestPreviewTruncatesOnRuneBoundary(t *testing.T) {
	long := "INSERT INTO recipe (name) VALUES ('"
	for len(long) < 200 {
		long += "红烧肉"
	}
	got := preview(long)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 80)
	assert.Equal(t, "...", got[len(got)-3:])
}
