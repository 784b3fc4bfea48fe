// Package distribution produces the illustrative gender and age breakdowns
// shown next to a keyword. The numbers are random and carry no model; the
// only guarantee is that each breakdown sums to exactly 100 percent.
package distribution

import (
	"github.com/shopspring/decimal"
)

// Source is the randomness the generator needs. *math/rand/v2.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

var (
	GenderLabels = []string{"Male", "Female"}
	AgeLabels    = []string{"10s", "20s", "30s", "40s", "50s+"}

	hundred = decimal.NewFromInt(100)
)

// Slice is one labelled share of a pie.
type Slice struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

type Distribution struct {
	Gender []Slice `json:"gender"`
	Age    []Slice `json:"age"`
}

type Generator struct {
	src Source
}

func NewGenerator(src Source) *Generator {
	return &Generator{src: src}
}

// Generate draws a fresh gender and age breakdown.
func (g *Generator) Generate() Distribution {
	return Distribution{
		Gender: g.gender(),
		Age:    g.age(),
	}
}

// gender draws the male share uniformly from [40, 60]; female is the rest.
func (g *Generator) gender() []Slice {
	male := g.randInt(40, 60)
	return []Slice{
		{Label: GenderLabels[0], Percent: float64(male)},
		{Label: GenderLabels[1], Percent: float64(100 - male)},
	}
}

// age draws a weight in [10, 30] per bucket and normalises to percent.
func (g *Generator) age() []Slice {
	weights := make([]int64, len(AgeLabels))
	for i := range weights {
		weights[i] = int64(g.randInt(10, 30))
	}
	return Normalize(AgeLabels, weights)
}

// randInt is inclusive on both ends.
func (g *Generator) randInt(lo, hi int) int {
	return lo + g.src.IntN(hi-lo+1)
}

// Normalize turns weights into one-decimal percentages that sum to exactly
// 100. The last slice takes whatever rounding left over. All-zero weights
// yield all-zero percentages.
func Normalize(labels []string, weights []int64) []Slice {
	total := decimal.Zero
	for _, w := range weights {
		total = total.Add(decimal.NewFromInt(w))
	}

	slices := make([]Slice, len(weights))
	if total.IsZero() {
		for i := range slices {
			slices[i] = Slice{Label: labels[i]}
		}
		return slices
	}

	assigned := decimal.Zero
	for i, w := range weights {
		var pct decimal.Decimal
		if i == len(weights)-1 {
			pct = hundred.Sub(assigned)
		} else {
			pct = decimal.NewFromInt(w).Div(total).Mul(hundred).Round(1)
			assigned = assigned.Add(pct)
		}
		slices[i] = Slice{Label: labels[i], Percent: pct.InexactFloat64()}
	}
	return slices
}

// Sum adds slice percentages without float drift.
func Sum(slices []Slice) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range slices {
		sum = sum.Add(decimal.NewFromFloat(s.Percent))
	}
	return sum
}
