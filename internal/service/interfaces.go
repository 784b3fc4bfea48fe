package service

import (
	"context"
	"time"

	"trendboard/pkg/distribution"
	"trendboard/pkg/locale"
	"trendboard/pkg/synth"
)

// Menu selects which view of the result is rendered.
type Menu string

const (
	MenuTrend        Menu = "trend"
	MenuDistribution Menu = "distribution"
	MenuTable        Menu = "table"
)

// Menus lists every view in sidebar order.
var Menus = []Menu{MenuTrend, MenuDistribution, MenuTable}

// Request is everything one interaction needs. It is built per request from
// query parameters and the caller's session; nothing here is process-wide.
type Request struct {
	Keyword string `query:"keyword" validate:"required"`
	Country string `query:"country" validate:"required,country"`
	Menu    Menu   `query:"menu" validate:"omitempty,oneof=trend distribution table"`
}

// Query is the resolved outbound query: the keyword actually sent may differ
// from the one shown.
type Query struct {
	DisplayKeyword string         `json:"display_keyword"`
	QueryKeyword   string         `json:"query_keyword"`
	Country        locale.Country `json:"country"`
	Start          time.Time      `json:"start"`
	End            time.Time      `json:"end"`
}

const (
	WarnFetchFailed = "FETCH_FAILED"
	WarnNoData      = "NO_DATA"
)

// Warning is a user-visible, non-fatal problem with one interaction.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the outcome of one pipeline run. Series is empty whenever
// Warnings is not.
type Result struct {
	Query       Query               `json:"query"`
	Menu        Menu                `json:"menu"`
	EngineLabel string              `json:"engine_label"`
	MapImageURL string              `json:"map_image_url,omitempty"`
	Series      synth.DerivedSeries `json:"series"`
	Warnings    []Warning           `json:"warnings"`
}

// HasData reports whether there is anything to render.
func (r *Result) HasData() bool {
	return len(r.Series) > 0
}

// DashboardService runs the fetch -> synthesize pipeline for one request.
type DashboardService interface {
	Run(ctx context.Context, req Request) (*Result, error)
	Distribution() distribution.Distribution
	Countries() *locale.Table
}
