package trends

import (
	"context"
	"time"
)

// PeriodLayout is the provider's date format for both request and response.
const PeriodLayout = "2006-01-02"

// Point is one monthly observation. Period is the first day of the month.
type Point struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
}

// Series is ordered by ascending Period with no duplicates. It is built per
// request and never shared.
type Series []Point

// Fetcher retrieves a monthly search-interest series for one keyword.
type Fetcher interface {
	Fetch(ctx context.Context, keyword string, start, end time.Time) (Series, error)
}
