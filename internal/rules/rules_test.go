package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mitheesha/situational-awareness/internal/contracts"
)

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestDefaultsCoverEveryCategory(t *testing.T) {
	tables := Defaults()
	for _, category := range contracts.Categories() {
		assert.NotEmpty(t, tables.CategoryKeywords[category], "category %s", category)
	}
	assert.NotEmpty(t, tables.Clusters)
	assert.NotEmpty(t, tables.Cascades)
}

func TestValidateRejectsEmptyCategory(t *testing.T) {
	tables := Defaults()
	tables.CategoryKeywords[contracts.CategoryWeatherImpact] = nil
	assert.Error(t, tables.Validate())
}

func TestValidateRejectsBrokenCluster(t *testing.T) {
	tables := Defaults()
	tables.Clusters = append(tables.Clusters, Cluster{Title: "nameless"})
	assert.Error(t, tables.Validate())
}

func TestMatchesAny(t *testing.T) {
	keywords := []string{"fuel prices", "inflation"}

	assert.True(t, MatchesAny("fuel prices", keywords))
	assert.True(t, MatchesAny("Fuel Prices surging again", keywords))
	assert.True(t, MatchesAny("INFLATION", keywords))
	assert.False(t, MatchesAny("weather", keywords))
	assert.False(t, MatchesAny("", keywords))
}

func TestTopicKey(t *testing.T) {
	assert.Equal(t, "economic_cascade", TopicKey("Economic Cascade"))
	assert.Equal(t, "weather", TopicKey("Weather"))
}

func TestLoadOverlaysOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	body := []byte(`
recommendations:
  "fuel prices": "Lock in forward contracts."
economic_insight_topics:
  - "inflation"
  - "salary"
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	tables, err := Load(path)
	require.NoError(t, err)

	// Overridden sections replace the defaults.
	assert.Equal(t, "Lock in forward contracts.", tables.Recommendations["fuel prices"])
	assert.Equal(t, []string{"inflation", "salary"}, tables.EconomicInsightTopics)

	// Untouched sections keep the defaults.
	defaults := Defaults()
	assert.Equal(t, defaults.Clusters, tables.Clusters)
	assert.Equal(t, defaults.CategoryKeywords, tables.CategoryKeywords)
}

func TestLoadRejectsInvalidOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	body := []byte(`
category_keywords:
  economic_stress: ["inflation"]
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	// Replacing the category map while omitting three categories fails
	// validation.
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
