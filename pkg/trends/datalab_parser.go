package trends

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// dataPath selects the first keyword group's data array.
const dataPath = "results.0.data"

// DataLabParser reads DataLab search-trend responses into a Series.
type DataLabParser struct{}

func NewDataLabParser() *DataLabParser {
	return &DataLabParser{}
}

// ParseResponse extracts every {period, ratio} pair of the first keyword
// group, preserving provider order. A missing group or empty data array is an
// empty series, not an error.
func (p *DataLabParser) ParseResponse(body []byte) (Series, error) {
	if len(body) == 0 {
		return nil, errors.New("empty response body")
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON response: %s", truncate(body, 200))
	}

	data := gjson.GetBytes(body, dataPath)
	if !data.Exists() {
		return Series{}, nil
	}
	if !data.IsArray() {
		return nil, fmt.Errorf("%s is %s, want array", dataPath, data.Type)
	}

	items := data.Array()
	series := make(Series, 0, len(items))
	for i, item := range items {
		period, err := time.Parse(PeriodLayout, item.Get("period").String())
		if err != nil {
			return nil, fmt.Errorf("data[%d]: bad period: %w", i, err)
		}
		ratio := item.Get("ratio")
		if ratio.Type != gjson.Number {
			return nil, fmt.Errorf("data[%d]: ratio is %s, want number", i, ratio.Type)
		}
		series = append(series, Point{Period: period, Value: ratio.Float()})
	}

	return series, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
