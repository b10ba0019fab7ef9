package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsMySQL(t *testing.T) {
	statements := []string{
		"CREATE TABLE recipe (id int AUTO_INCREMENT NOT NULL, name varchar(100), PRIMARY KEY (id))",
		"INSERT INTO recipe (id, name) VALUES (1, '红烧肉')",
		"DROP TABLE IF EXISTS recipe",
	}

	results := New().Validate(statements)
	require.Len(t, results, len(statements))
	for _, r := range results {
		assert.NoError(t, r.Err, statements[r.Index])
	}
	assert.Empty(t, Failures(results))
}

func TestValidateRejectsSQLServerSyntax(t *testing.T) {
	statements := []string{
		"CREATE TABLE [dbo].[Recipe] ([Id] int IDENTITY(1,1))",
		"SELECT 1",
	}

	results := New().Validate(statements)
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)

	failed := Failures(results)
	require.Len(t, failed, 1)
	assert.Equal(t, 0, failed[0].Index)
}

func TestValidateContinuesPastFailures(t *testing.T) {
	statements := []string{"NOT SQL AT ALL", "SELECT 1", "ALSO NOT SQL"}

	results := New().Validate(statements)
	require.Len(t, results, 3)
	assert.Len(t, Failures(results), 2)
}

func TestValidateEmptyInput(t *testing.T) {
	assert.Empty(t, New().Validate(nil))
	assert.Empty(t, Failures(nil))
}
