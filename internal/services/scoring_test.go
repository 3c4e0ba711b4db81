package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCategorizeCommodity(t *testing.T) {
	tests := []struct {
		commodity string
		want      string
	}{
		{"Fresh Produce", "food"},
		{"grocery pallets", "food"},
		{"Computer parts", "electronics"},
		{"Household furniture", "furniture"},
		{"Auto parts", "automotive"},
		{"building materials", "construction"},
		{"steel beams", "general"},
		{"", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.commodity, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeCommodity(tt.commodity))
		})
	}
}

func TestCalculateUrgencyScore(t *testing.T) {
	asOf := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("past window end pins at 10", func(t *testing.T) {
		start := asOf.Add(-48 * time.Hour)
		end := asOf.Add(-24 * time.Hour)

		assert.Equal(t, 10.0, CalculateUrgencyScore(start, end, asOf))
	})

	t.Run("rises linearly inside the window", func(t *testing.T) {
		start := asOf.Add(-12 * time.Hour)
		end := asOf.Add(12 * time.Hour)

		assert.InDelta(t, 5.0, CalculateUrgencyScore(start, end, asOf), 0.001)
	})

	t.Run("short window inside 24h clamps to 10", func(t *testing.T) {
		start := asOf.Add(6 * time.Hour)
		end := start.Add(5 * time.Hour)

		assert.Equal(t, 10.0, CalculateUrgencyScore(start, end, asOf))
	})

	t.Run("36h lead with a day-long window", func(t *testing.T) {
		start := asOf.Add(36 * time.Hour)
		end := start.Add(24 * time.Hour)

		assert.InDelta(t, 8.0, CalculateUrgencyScore(start, end, asOf), 0.001)
	})

	t.Run("far-future pickup bottoms out at 1", func(t *testing.T) {
		start := asOf.Add(35 * 24 * time.Hour)
		end := start.Add(24 * time.Hour)

		assert.InDelta(t, 1.0, CalculateUrgencyScore(start, end, asOf), 0.001)
	})

	t.Run("closer windows never score lower", func(t *testing.T) {
		prev := 0.0
		for _, lead := range []time.Duration{
			30 * 24 * time.Hour,
			10 * 24 * time.Hour,
			6 * 24 * time.Hour,
			60 * time.Hour,
			30 * time.Hour,
			12 * time.Hour,
		} {
			start := asOf.Add(lead)
			score := CalculateUrgencyScore(start, start.Add(24*time.Hour), asOf)
			assert.GreaterOrEqual(t, score, prev, "lead %v", lead)
			prev = score
		}
	})
}

func TestDetermineMarketSegment(t *testing.T) {
	assert.Equal(t, "heavy_freight", DetermineMarketSegment(45000, "general"))
	assert.Equal(t, "medium_freight", DetermineMarketSegment(25000, "food"))
	assert.Equal(t, "light_freight", DetermineMarketSegment(15000, "electronics"))
	assert.Equal(t, "perishable_small", DetermineMarketSegment(5000, "food"))
	assert.Equal(t, "high_value", DetermineMarketSegment(8000, "electronics"))
	assert.Equal(t, "general_freight", DetermineMarketSegment(5000, "general"))
}

func TestSeasonalFactor(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want float64
	}{
		{"peak holiday rush", time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC), 1.4},
		{"early december", time.Date(2026, time.December, 5, 0, 0, 0, 0, time.UTC), 1.3},
		{"november", time.Date(2026, time.November, 15, 0, 0, 0, 0, time.UTC), 1.3},
		{"independence day week", time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC), 1.25},
		{"summer", time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC), 1.2},
		{"spring", time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC), 1.15},
		{"january lull", time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), 0.9},
		{"february", time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC), 0.95},
		{"september", time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC), 1.1},
		{"october", time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC), 1.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SeasonalFactor(tt.date))
		})
	}
}

func TestRatePerMile(t *testing.T) {
	assert.Equal(t, 4.0, RatePerMile(1000, 250))
	assert.Equal(t, 3.0, RatePerMile(1000, 333))
	assert.Equal(t, 0.0, RatePerMile(0, 250))
	assert.Equal(t, 0.0, RatePerMile(1000, 0))
}

func TestEstimateTransitTime(t *testing.T) {
	t.Run("short haul", func(t *testing.T) {
		assert.Equal(t, 2.0, EstimateTransitTime(100, "ftl"))
	})

	t.Run("expedited runs faster", func(t *testing.T) {
		assert.Equal(t, 2.0, EstimateTransitTime(130, "expedited"))
	})

	t.Run("ltl runs slower", func(t *testing.T) {
		// 500/45 = 11.1h driving plus one 10h rest block.
		assert.Equal(t, 22.0, EstimateTransitTime(500, "ltl"))
	})

	t.Run("long haul includes rest blocks", func(t *testing.T) {
		// 1000/55 = 18.2h driving plus two 10h rest blocks.
		assert.Equal(t, 39.0, EstimateTransitTime(1000, "ftl"))
	})
}

func TestMarketDemandScore(t *testing.T) {
	// Wednesday late morning, spring season.
	asOf := time.Date(2026, time.March, 11, 10, 0, 0, 0, time.UTC)
	noJitter := func() float64 { return 1.0 }

	t.Run("hot region clamps at 10", func(t *testing.T) {
		assert.Equal(t, 10.0, MarketDemandScore("IL", asOf, noJitter))
	})

	t.Run("unknown region uses neutral factor", func(t *testing.T) {
		// 5 * 1.0 * 1.15 * 1.2 * 1.3 = 8.97
		assert.Equal(t, 9.0, MarketDemandScore("ZZ", asOf, noJitter))
	})

	t.Run("jitter shifts the score", func(t *testing.T) {
		// 5 * 0.95 * 1.15 * 1.2 * 1.3 * 0.95 = 8.095...
		assert.Equal(t, 8.1, MarketDemandScore("WI", asOf, func() float64 { return 0.95 }))
	})

	t.Run("region casing is ignored", func(t *testing.T) {
		assert.Equal(t, MarketDemandScore("tx", asOf, noJitter), MarketDemandScore("TX", asOf, noJitter))
	})

	t.Run("overnight trough scores low", func(t *testing.T) {
		night := time.Date(2026, time.March, 11, 3, 0, 0, 0, time.UTC)
		day := MarketDemandScore("TX", asOf, noJitter)
		quiet := MarketDemandScore("TX", night, noJitter)

		assert.Less(t, quiet, day)
	})
}
