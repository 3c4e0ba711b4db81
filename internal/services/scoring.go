package services

import (
	"math"
	"strings"
	"time"
)

// Pure feature derivation for the demand pipeline. Every function takes the
// observation time explicitly so one captured timestamp drives a whole
// recording pass.

var commodityCategories = []struct {
	category string
	keywords []string
}{
	{"food", []string{"food", "produce", "grocery"}},
	{"electronics", []string{"electronics", "computer"}},
	{"furniture", []string{"furniture", "household"}},
	{"automotive", []string{"auto", "car", "vehicle"}},
	{"construction", []string{"construction", "building"}},
}

// CategorizeCommodity maps a free-text commodity description to a fixed
// category by case-insensitive substring match. First matching category wins.
func CategorizeCommodity(commodity string) string {
	lower := strings.ToLower(commodity)
	for _, c := range commodityCategories {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.category
			}
		}
	}
	return "general"
}

// CalculateUrgencyScore scores time pressure for a pickup/delivery window on a
// 0-10 scale. Inside the window the score rises linearly with the elapsed
// fraction; past the window it pins at 10; ahead of the window it decays with
// lead time, boosted or dampened by how short the window itself is.
func CalculateUrgencyScore(windowStart, windowEnd, asOf time.Time) float64 {
	if !asOf.Before(windowEnd) {
		return 10
	}

	if !asOf.Before(windowStart) {
		windowHours := windowEnd.Sub(windowStart).Hours()
		if windowHours <= 0 {
			return 10
		}
		percentPassed := asOf.Sub(windowStart).Hours() / windowHours
		return math.Min(10-10*(1-percentPassed), 10)
	}

	hoursToStart := windowStart.Sub(asOf).Hours()

	var base float64
	switch {
	case hoursToStart < 24:
		base = 9
	case hoursToStart < 48:
		base = 8
	case hoursToStart < 72:
		base = 7
	case hoursToStart < 120:
		base = 6
	case hoursToStart < 168:
		base = 5
	default:
		weeksOut := math.Floor(hoursToStart / 168)
		base = math.Max(1, 4-(weeksOut-1))
	}

	windowHours := windowEnd.Sub(windowStart).Hours()
	windowFactor := 1.2
	if windowHours > 0 {
		windowFactor = math.Min(math.Max(24/windowHours, 0.8), 1.2)
	}

	return math.Min(base*windowFactor, 10)
}

// DetermineMarketSegment buckets a load by weight first, falling back to
// commodity category for lighter freight.
func DetermineMarketSegment(weight float64, commodityType string) string {
	switch {
	case weight > 40000:
		return "heavy_freight"
	case weight > 20000:
		return "medium_freight"
	case weight > 10000:
		return "light_freight"
	}

	if commodityType == "food" && weight < 10000 {
		return "perishable_small"
	}
	if commodityType == "electronics" {
		return "high_value"
	}
	return "general_freight"
}

// SeasonalFactor is a calendar-only demand multiplier, typically 0.8-1.4.
func SeasonalFactor(asOf time.Time) float64 {
	month := asOf.Month()
	day := asOf.Day()

	switch month {
	case time.November, time.December:
		if month == time.December && day >= 16 {
			return 1.4
		}
		return 1.3
	case time.June, time.July, time.August:
		if month == time.July && day <= 7 {
			return 1.25
		}
		return 1.2
	case time.March, time.April, time.May:
		return 1.15
	case time.January:
		return 0.9
	case time.February:
		return 0.95
	case time.September:
		return 1.1
	case time.October:
		return 1.15
	}
	return 1.0
}

// RatePerMile guards against missing inputs; zero rate or distance yields 0.
func RatePerMile(rate, distance float64) float64 {
	if rate == 0 || distance == 0 {
		return 0
	}
	return math.Round(rate/distance*100) / 100
}

// EstimateTransitTime returns whole hours for a lane, including one 10-hour
// rest block per every 8 hours of driving (hours-of-service).
func EstimateTransitTime(distanceMiles float64, loadType string) float64 {
	speed := 55.0
	switch strings.ToLower(loadType) {
	case "expedited":
		speed = 65
	case "ltl":
		speed = 45
	}

	drivingHours := distanceMiles / speed
	restHours := math.Floor(drivingHours/8) * 10
	return math.Ceil(drivingHours + restHours)
}

var regionDemandFactors = map[string]float64{
	"TX": 1.3,
	"CA": 1.25,
	"IL": 1.2,
	"FL": 1.15,
	"GA": 1.15,
	"OH": 1.1,
	"IN": 1.1,
	"TN": 1.1,
	"PA": 1.1,
	"NC": 1.05,
	"NY": 1.05,
	"NJ": 1.05,
	"AZ": 1.0,
	"WI": 0.95,
	"MN": 0.95,
}

var dayOfWeekDemandFactors = [7]float64{
	0.85, // Sunday
	1.0,
	1.1,
	1.2, // midweek peak
	1.15,
	1.05,
	0.8, // Saturday
}

var hourOfDayDemandFactors = [24]float64{
	0.4, 0.35, 0.3, 0.3, 0.35, 0.5,
	0.7, 0.9, 1.1, 1.2, 1.3, 1.3,
	1.25, 1.3, 1.2, 1.1, 1.0, 0.9,
	0.8, 0.7, 0.6, 0.55, 0.5, 0.45,
}

// MarketDemandScore blends region, season, day-of-week and hour-of-day
// multipliers into a 0-10 demand proxy. The jitter source is injected so the
// deterministic core is testable; production callers supply a uniform draw in
// [0.95, 1.05].
func MarketDemandScore(region string, asOf time.Time, jitter func() float64) float64 {
	regionFactor, ok := regionDemandFactors[strings.ToUpper(region)]
	if !ok {
		regionFactor = 1.0
	}

	score := 5.0 *
		regionFactor *
		SeasonalFactor(asOf) *
		dayOfWeekDemandFactors[int(asOf.Weekday())] *
		hourOfDayDemandFactors[asOf.Hour()]

	if jitter != nil {
		score *= jitter()
	}

	return math.Round(math.Min(score, 10)*10) / 10
}
