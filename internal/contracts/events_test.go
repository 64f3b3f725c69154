package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUrgencyRankOrdering(t *testing.T) {
	assert.Less(t, UrgencyLow.Rank(), UrgencyMedium.Rank())
	assert.Less(t, UrgencyMedium.Rank(), UrgencyHigh.Rank())
	assert.Less(t, UrgencyHigh.Rank(), UrgencyCritical.Rank())
	assert.Less(t, Urgency("bogus").Rank(), UrgencyLow.Rank())
}

func TestAtLeast(t *testing.T) {
	assert.True(t, UrgencyCritical.AtLeast(UrgencyHigh))
	assert.True(t, UrgencyHigh.AtLeast(UrgencyHigh))
	assert.False(t, UrgencyMedium.AtLeast(UrgencyHigh))
}

func TestMaxUrgency(t *testing.T) {
	assert.Equal(t, UrgencyLow, MaxUrgency(nil))
	assert.Equal(t, UrgencyHigh, MaxUrgency([]Urgency{UrgencyMedium, UrgencyHigh, UrgencyLow}))
	// Rank comparison, not lexicographic: "medium" > "critical" as strings.
	assert.Equal(t, UrgencyCritical, MaxUrgency([]Urgency{UrgencyMedium, UrgencyCritical}))
}

func TestSignalLocation(t *testing.T) {
	assert.Equal(t, "", Signal{}.Location())
	assert.Equal(t, "Colombo", Signal{Hotspot: &HotspotDetails{Location: "Colombo"}}.Location())
}
