// Package synth derives a complementary "secondary" search series from the
// primary provider series using a fixed market-share heuristic.
package synth

import (
	"math"
	"strconv"
	"time"

	"github.com/samber/lo"

	"trendboard/pkg/trends"
)

// Point is a primary observation extended with its derived values.
type Point struct {
	Period    time.Time `json:"period"`
	Primary   float64   `json:"primary"`
	Secondary float64   `json:"secondary"`
	Total     float64   `json:"total"`
}

type DerivedSeries []Point

// Ratio returns the assumed secondary-provider share for index i of n.
// Bands are inclusive-low and exclusive-high, evaluated in this order.
func Ratio(i, n int) float64 {
	fi, fn := float64(i), float64(n)
	switch {
	case fi < fn*0.25:
		return 0.8
	case fi < fn*0.33:
		return 0.7
	case fi < fn*0.5:
		return 0.4
	default:
		return 0.6
	}
}

// Secondary converts a primary value into the secondary value implied by
// share r, rounded to one decimal.
func Secondary(primary, r float64) float64 {
	return Round1(primary * r / (1 - r))
}

// Synthesize is pure: an empty series yields an empty result.
func Synthesize(series trends.Series) DerivedSeries {
	n := len(series)
	return lo.Map(series, func(p trends.Point, i int) Point {
		secondary := Secondary(p.Value, Ratio(i, n))
		return Point{
			Period:    p.Period,
			Primary:   p.Value,
			Secondary: secondary,
			Total:     p.Value + secondary,
		}
	})
}

// Round1 rounds x to one decimal place, half to even on the exact binary
// value of x. strconv's fixed-precision formatting is correctly rounded, so
// 0.25 -> 0.2 and 0.35 (stored as 0.34999...) -> 0.3.
func Round1(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return r
}
