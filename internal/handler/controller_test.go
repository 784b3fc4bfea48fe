package handler

import (
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"trendboard/internal/config"
	"trendboard/internal/server"
	"trendboard/internal/service"
	"trendboard/pkg/distribution"
	"trendboard/pkg/locale"
	"trendboard/pkg/trends"
)

const testCookie = "trendboard_test"

type stubFetcher struct {
	series   trends.Series
	err      error
	keywords []string
}

func (f *stubFetcher) Fetch(_ context.Context, keyword string, _, _ time.Time) (trends.Series, error) {
	f.keywords = append(f.keywords, keyword)
	return f.series, f.err
}

func monthly(values ...float64) trends.Series {
	series := make(trends.Series, len(values))
	for i, v := range values {
		series[i] = trends.Point{Period: time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC), Value: v}
	}
	return series
}

func newTestApp(t *testing.T, fetcher trends.Fetcher) *fiber.App {
	t.Helper()

	app := server.Create(config.ServerConfig{
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: time.Second,
	})
	dashboard := service.NewDashboard(fetcher, locale.DefaultTable(),
		service.WithClock(func() time.Time { return time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC) }),
		service.WithSource(func() distribution.Source { return rand.New(rand.NewPCG(7, 7)) }),
	)
	store := server.NewSessionStore(config.SessionConfig{CookieName: testCookie, Expiration: time.Hour})
	NewController(dashboard, store).Register(app)
	return app
}

func get(t *testing.T, app *fiber.App, target string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return body
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, &stubFetcher{})

	resp := get(t, app, "/healthz")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(readBody(t, resp), &status))
	assert.Equal(t, "ok", status.Status)
}

func TestTrends(t *testing.T) {
	app := newTestApp(t, &stubFetcher{series: monthly(50, 50, 50, 50)})

	resp := get(t, app, "/api/trends?keyword=coffee&country=KR")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out TrendsResponse
	require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
	assert.Equal(t, "coffee", out.DisplayKeyword)
	assert.Equal(t, "KR", out.Country)
	assert.Equal(t, "Naver", out.EngineLabel)
	assert.Equal(t, "2024-02-01", out.Start)
	assert.Equal(t, "2025-01-31", out.End)
	require.Len(t, out.Points, 4)
	assert.Equal(t, "2024-02", out.Points[1].Period)
	assert.Equal(t, 116.7, out.Points[1].Secondary)
	assert.Equal(t, 166.7, out.Points[1].Total)
	assert.Empty(t, out.Warnings)
}

func TestTrends_Substitution(t *testing.T) {
	fetcher := &stubFetcher{series: monthly(10)}
	app := newTestApp(t, fetcher)

	resp := get(t, app, "/api/trends?keyword="+url.QueryEscape("커피")+"&country=DE")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out TrendsResponse
	require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
	assert.Equal(t, "커피", out.DisplayKeyword)
	assert.Equal(t, "news", out.QueryKeyword)
	assert.Equal(t, []string{"news"}, fetcher.keywords)
}

func TestTrends_FetchFailed(t *testing.T) {
	app := newTestApp(t, &stubFetcher{err: trends.RemoteRejected(500, "rate limited")})

	resp := get(t, app, "/api/trends?keyword=coffee&country=KR")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out TrendsResponse
	require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
	assert.Empty(t, out.Points)
	require.Len(t, out.Warnings, 2)
	assert.Equal(t, service.WarnFetchFailed, out.Warnings[0].Code)
	assert.Equal(t, service.WarnNoData, out.Warnings[1].Code)
	assert.Contains(t, out.Warnings[0].Message, "rate limited")
}

func TestTrends_InvalidRequest(t *testing.T) {
	fetcher := &stubFetcher{series: monthly(1)}
	app := newTestApp(t, fetcher)

	resp := get(t, app, "/api/trends?keyword=&country=XX")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var out struct {
		Code       string              `json:"code"`
		Message    string              `json:"message"`
		Violations []service.Violation `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
	assert.Equal(t, "INVALID_REQUEST", out.Code)
	require.Len(t, out.Violations, 2)
	assert.Equal(t, "keyword", out.Violations[0].Field)
	assert.Equal(t, "country", out.Violations[1].Field)
	assert.Empty(t, fetcher.keywords)
}

func TestDistribution(t *testing.T) {
	app := newTestApp(t, &stubFetcher{})

	resp := get(t, app, "/api/distribution")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out distribution.Distribution
	require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
	require.Len(t, out.Gender, 2)
	require.Len(t, out.Age, 5)
	assert.InDelta(t, 100, out.Gender[0].Percent+out.Gender[1].Percent, 1e-9)
}

func TestExport(t *testing.T) {
	app := newTestApp(t, &stubFetcher{series: monthly(50, 50)})

	resp := get(t, app, "/export.xlsx?keyword=coffee&country=JP")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, mimeXLSX, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "trend-JP-2025-01-31.xlsx")

	f, err := excelize.OpenReader(strings.NewReader(string(readBody(t, resp))))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Trend")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Period", "Yahoo", "Google", "Total"}, rows[0])
}

func TestExport_NoData(t *testing.T) {
	app := newTestApp(t, &stubFetcher{series: trends.Series{}})

	resp := get(t, app, "/export.xlsx?keyword=coffee&country=KR")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestIndex_FormOnly(t *testing.T) {
	fetcher := &stubFetcher{series: monthly(1)}
	app := newTestApp(t, fetcher)

	resp := get(t, app, "/")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := string(readBody(t, resp))

	assert.Contains(t, body, `<form method="get" action="/">`)
	assert.Contains(t, body, `<option value="KR" selected>`)
	assert.Equal(t, 8, strings.Count(body, "<option "))
	assert.NotContains(t, body, "<svg")
	assert.Empty(t, fetcher.keywords)
}

func TestIndex_Views(t *testing.T) {
	app := newTestApp(t, &stubFetcher{series: monthly(50, 50, 50, 50)})

	trend := string(readBody(t, get(t, app, "/?keyword=coffee&country=KR")))
	assert.Contains(t, trend, "<svg")
	assert.Contains(t, trend, "<h2>'coffee' search trend</h2>")

	dist := string(readBody(t, get(t, app, "/?keyword=coffee&country=RU&menu=distribution")))
	assert.Contains(t, dist, "Gender ratio")
	assert.Equal(t, 2, strings.Count(dist, "<svg"))
	assert.Contains(t, dist, "i.imgur.com")

	table := string(readBody(t, get(t, app, "/?keyword=coffee&country=KR&menu=table")))
	assert.Contains(t, table, "<td>2024-02</td><td>50</td><td>116.7</td><td>166.7</td>")
	assert.Contains(t, table, "4 periods collected")
}

func TestIndex_NoDataShowsOnlyWarnings(t *testing.T) {
	fetchers := []struct {
		name    string
		fetcher *stubFetcher
		codes   []string
		message string
	}{
		{"rejected", &stubFetcher{err: trends.RemoteRejected(500, "rate limited")},
			[]string{service.WarnFetchFailed, service.WarnNoData}, "API request failed: rate limited"},
		{"empty", &stubFetcher{series: trends.Series{}},
			[]string{service.WarnNoData}, ""},
	}

	for _, f := range fetchers {
		for _, menu := range service.Menus {
			t.Run(f.name+"/"+string(menu), func(t *testing.T) {
				app := newTestApp(t, f.fetcher)

				resp := get(t, app, "/?keyword=zzqx&country=RU&menu="+string(menu))
				require.Equal(t, fiber.StatusOK, resp.StatusCode)
				body := string(readBody(t, resp))

				assert.Equal(t, len(f.codes), strings.Count(body, `class="warning"`))
				for _, code := range f.codes {
					assert.Contains(t, body, `data-code="`+code+`"`)
				}
				if f.message != "" {
					assert.Contains(t, body, f.message)
				}
				assert.NotContains(t, body, "<svg")
				assert.NotContains(t, body, "<table")
				assert.NotContains(t, body, "<img")
				assert.NotContains(t, body, "i.imgur.com")
				assert.NotContains(t, body, "<h1>")
			})
		}
	}
}

func TestIndex_InvalidCountryShowsViolation(t *testing.T) {
	app := newTestApp(t, &stubFetcher{series: monthly(1)})

	resp := get(t, app, "/?keyword=coffee&country=XX")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(readBody(t, resp)), `class="violation"`)
}

func TestIndex_SessionRemembersLastQuery(t *testing.T) {
	fetcher := &stubFetcher{series: monthly(5, 6)}
	app := newTestApp(t, fetcher)

	first := get(t, app, "/?keyword=coffee&country=JP")
	readBody(t, first)
	var sessionCookie *http.Cookie
	for _, c := range first.Cookies() {
		if c.Name == testCookie {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "session cookie must be set after a run")

	second := string(readBody(t, get(t, app, "/?menu=table", sessionCookie)))
	assert.Contains(t, second, `value="coffee"`)
	assert.Contains(t, second, `<option value="JP" selected>`)
	assert.Equal(t, []string{"anime", "anime"}, fetcher.keywords)

	fresh := string(readBody(t, get(t, app, "/")))
	assert.NotContains(t, fresh, `value="coffee"`, "other browsers do not see the session")
}
