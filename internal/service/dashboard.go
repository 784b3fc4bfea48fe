package service

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"trendboard/pkg/distribution"
	"trendboard/pkg/locale"
	"trendboard/pkg/logger"
	"trendboard/pkg/synth"
	"trendboard/pkg/trends"
)

const (
	windowDays = 365

	noDataMessage = "No data available. Please check your keyword."
)

type Dashboard struct {
	fetcher   trends.Fetcher
	table     *locale.Table
	validator *requestValidator
	now       func() time.Time
	newSource func() distribution.Source
	log       *logger.Logger
}

var _ DashboardService = (*Dashboard)(nil)

type Option func(*Dashboard)

// WithClock replaces time.Now for the date window.
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) {
		d.now = now
	}
}

// WithSource replaces the per-call random source of Distribution.
func WithSource(newSource func() distribution.Source) Option {
	return func(d *Dashboard) {
		d.newSource = newSource
	}
}

func NewDashboard(fetcher trends.Fetcher, table *locale.Table, opts ...Option) *Dashboard {
	d := &Dashboard{
		fetcher:   fetcher,
		table:     table,
		validator: newRequestValidator(table),
		now:       time.Now,
		newSource: func() distribution.Source {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		log: logger.GetLogger().WithField("component", "dashboard"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Window is the fixed trailing date range: one year ending at now.
func Window(now time.Time) (start, end time.Time) {
	return now.AddDate(0, 0, -windowDays), now
}

// Run validates req, resolves the country substitution, fetches and
// synthesizes. Fetch failures and empty results become warnings with an
// empty series; only an invalid request returns an error. A failed fetch
// yields FETCH_FAILED followed by NO_DATA.
func (d *Dashboard) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Menu == "" {
		req.Menu = MenuTrend
	}
	// a keyword of only spaces counts as empty
	check := req
	check.Keyword = strings.TrimSpace(req.Keyword)
	if err := d.validator.Struct(check); err != nil {
		return nil, err
	}

	resolved, err := d.table.Resolve(req.Keyword, locale.Country(req.Country))
	if err != nil {
		return nil, err
	}
	entry, _ := d.table.Lookup(resolved.Country)

	start, end := Window(d.now())
	result := &Result{
		Query: Query{
			DisplayKeyword: resolved.DisplayKeyword,
			QueryKeyword:   resolved.QueryKeyword,
			Country:        resolved.Country,
			Start:          start,
			End:            end,
		},
		Menu:        req.Menu,
		EngineLabel: entry.EngineLabel,
		MapImageURL: entry.MapImageURL,
		Series:      synth.DerivedSeries{},
		Warnings:    []Warning{},
	}

	log := d.log.WithFields(map[string]interface{}{
		"country":         resolved.Country,
		"display_keyword": resolved.DisplayKeyword,
		"query_keyword":   resolved.QueryKeyword,
	})

	series, err := d.fetcher.Fetch(ctx, resolved.QueryKeyword, start, end)
	if err != nil {
		log.WithError(err).Warn("Fetch failed, continuing with empty series")
		result.Warnings = append(result.Warnings, fetchWarning(err), noDataWarning())
		return result, nil
	}

	if len(series) == 0 {
		log.Info("Fetch returned no data")
		result.Warnings = append(result.Warnings, noDataWarning())
		return result, nil
	}

	result.Series = synth.Synthesize(series)
	log.WithField("points", len(result.Series)).Debug("Pipeline completed")
	return result, nil
}

// fetchWarning carries the provider's raw body for rejections.
func fetchWarning(err error) Warning {
	msg := "API request failed: " + err.Error()
	if fe, ok := trends.AsFetchError(err); ok && fe.Kind == trends.KindRemoteRejected {
		msg = "API request failed: " + fe.Body
	}
	return Warning{Code: WarnFetchFailed, Message: msg}
}

func noDataWarning() Warning {
	return Warning{Code: WarnNoData, Message: noDataMessage}
}

// Distribution draws an independent random gender/age breakdown.
func (d *Dashboard) Distribution() distribution.Distribution {
	return distribution.NewGenerator(d.newSource()).Generate()
}

func (d *Dashboard) Countries() *locale.Table {
	return d.table
}
