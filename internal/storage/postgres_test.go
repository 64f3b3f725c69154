package storage

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNamesAreOrdered(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)

	require.NotEmpty(t, names)
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "001_events.sql")
	assert.Contains(t, names, "002_results.sql")
}

func TestMigrationsAreReadable(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)

	for _, name := range names {
		body, err := migrationFS.ReadFile("sql/" + name)
		require.NoError(t, err, name)
		assert.Contains(t, strings.ToUpper(string(body)), "CREATE TABLE", name)
	}
}
