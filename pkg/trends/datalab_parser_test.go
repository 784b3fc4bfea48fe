package trends

import (
	"testing"
	"time"
)

func TestDataLabParser_ParseResponse_Success(t *testing.T) {
	parser := NewDataLabParser()

	responseBody := `{
		"startDate": "2024-01-01",
		"endDate": "2024-03-31",
		"timeUnit": "month",
		"results": [
			{
				"title": "coffee",
				"keywords": ["coffee"],
				"data": [
					{"period": "2024-01-01", "ratio": 100},
					{"period": "2024-02-01", "ratio": 87.5},
					{"period": "2024-03-01", "ratio": 12.34}
				]
			},
			{
				"title": "ignored",
				"keywords": ["ignored"],
				"data": [{"period": "2024-01-01", "ratio": 1}]
			}
		]
	}`

	series, err := parser.ParseResponse([]byte(responseBody))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(series) != 3 {
		t.Fatalf("Expected 3 points, got: %d", len(series))
	}

	want := []struct {
		period string
		value  float64
	}{
		{"2024-01-01", 100},
		{"2024-02-01", 87.5},
		{"2024-03-01", 12.34},
	}
	for i, w := range want {
		if got := series[i].Period.Format(PeriodLayout); got != w.period {
			t.Errorf("point %d: expected period %s, got %s", i, w.period, got)
		}
		if series[i].Value != w.value {
			t.Errorf("point %d: expected value %v, got %v", i, w.value, series[i].Value)
		}
		if series[i].Period.Location() != time.UTC {
			t.Errorf("point %d: expected UTC period, got %v", i, series[i].Period.Location())
		}
	}
}

func TestDataLabParser_ParseResponse_EmptyData(t *testing.T) {
	parser := NewDataLabParser()

	series, err := parser.ParseResponse([]byte(`{"results": [{"title": "x", "data": []}]}`))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("Expected 0 points, got: %d", len(series))
	}
}

func TestDataLabParser_ParseResponse_NoResults(t *testing.T) {
	parser := NewDataLabParser()

	for _, body := range []string{`{"results": []}`, `{}`} {
		series, err := parser.ParseResponse([]byte(body))
		if err != nil {
			t.Fatalf("body %s: expected no error, got: %v", body, err)
		}
		if len(series) != 0 {
			t.Errorf("body %s: expected 0 points, got: %d", body, len(series))
		}
	}
}

func TestDataLabParser_ParseResponse_Invalid(t *testing.T) {
	parser := NewDataLabParser()

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"invalid json", `invalid json`},
		{"data not array", `{"results": [{"data": {"period": "2024-01-01"}}]}`},
		{"bad period", `{"results": [{"data": [{"period": "January", "ratio": 1}]}]}`},
		{"ratio not number", `{"results": [{"data": [{"period": "2024-01-01", "ratio": "high"}]}]}`},
		{"missing ratio", `{"results": [{"data": [{"period": "2024-01-01"}]}]}`},
	}

	for _, test := range tests {
		if _, err := parser.ParseResponse([]byte(test.body)); err == nil {
			t.Errorf("%s: expected error, got nil", test.name)
		}
	}
}
