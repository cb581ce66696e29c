// Package pricing holds the price presentation rules shared by the API:
// the stored-to-exposed conversion, trend classification, summaries and the
// human readable date helpers.
package pricing

import (
	"fmt"
	"math"
	"time"
)

// ExposureDivisor converts a stored price into the unit shown to users.
const ExposureDivisor = 5

type Trend string

const (
	TrendIncrease Trend = "increase"
	TrendDecrease Trend = "decrease"
	TrendStable   Trend = "stable"
)

// Exposed converts a stored price to the exposed unit, truncating toward zero.
func Exposed(stored int) int {
	return stored / ExposureDivisor
}

// Classify compares a current exposed price with the one before it. Without
// a previous value the trend is stable.
func Classify(current int, previous *int) Trend {
	if previous == nil {
		return TrendStable
	}
	switch {
	case current > *previous:
		return TrendIncrease
	case current < *previous:
		return TrendDecrease
	default:
		return TrendStable
	}
}

// Trends classifies a chronologically ascending series; the first element is
// always stable.
func Trends(series []int) []Trend {
	out := make([]Trend, len(series))
	for i, v := range series {
		if i == 0 {
			out[i] = TrendStable
			continue
		}
		prev := series[i-1]
		out[i] = Classify(v, &prev)
	}
	return out
}

// Point is one stored price observation.
type Point struct {
	Min   int
	Max   int
	Modal int
}

type Summary struct {
	Highest      int `json:"highest_price"`
	Lowest       int `json:"lowest_price"`
	Average      int `json:"average_price"`
	TotalEntries int `json:"total_entries"`
}

// Summarize reports, in exposed units, the highest max price, the lowest min
// price and the truncated mean of the stored modal prices.
func Summarize(points []Point) Summary {
	if len(points) == 0 {
		return Summary{}
	}
	s := Summary{Highest: math.MinInt, Lowest: math.MaxInt, TotalEntries: len(points)}
	sum := 0
	for _, p := range points {
		s.Highest = max(s.Highest, Exposed(p.Max))
		s.Lowest = min(s.Lowest, Exposed(p.Min))
		sum += p.Modal
	}
	s.Average = sum / (len(points) * ExposureDivisor)
	return s
}

// FormatPriceDate renders a YYYY-MM-DD date as "27 Aug". Anything else is
// returned unchanged.
func FormatPriceDate(raw string) string {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return raw
	}
	return t.Format("2 Jan")
}

// TimeAgo renders how long before now t happened.
func TimeAgo(t, now time.Time) string {
	seconds := int64(now.Sub(t).Seconds())
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return fmt.Sprintf("%d minutes ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%d hours ago", seconds/3600)
	case seconds < 604800:
		return fmt.Sprintf("%d days ago", seconds/86400)
	case seconds < 2592000:
		return fmt.Sprintf("%d weeks ago", seconds/604800)
	case seconds < 31536000:
		return fmt.Sprintf("%d months ago", seconds/2592000)
	default:
		return fmt.Sprintf("%d years ago", seconds/31536000)
	}
}
