package trends

import (
	"context"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"trendboard/pkg/logger"
)

const (
	DefaultEndpoint = "https://openapi.naver.com/v1/datalab/search"
	DefaultTimeout  = 30 * time.Second

	headerClientID     = "X-Naver-Client-Id"
	headerClientSecret = "X-Naver-Client-Secret"
)

// Config configures a DataLab client. ClientID and ClientSecret have no
// defaults and must be supplied.
type Config struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

type keywordGroup struct {
	GroupName string   `json:"groupName"`
	Keywords  []string `json:"keywords"`
}

type searchRequest struct {
	StartDate     string         `json:"startDate"`
	EndDate       string         `json:"endDate"`
	TimeUnit      string         `json:"timeUnit"`
	KeywordGroups []keywordGroup `json:"keywordGroups"`
	Device        string         `json:"device"`
	Ages          []string       `json:"ages"`
	Gender        string         `json:"gender"`
}

// Client issues exactly one POST per Fetch: no retry, no cache.
type Client struct {
	cfg    Config
	http   *fasthttp.Client
	parser *DataLabParser
	log    *logger.Logger
}

var _ Fetcher = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("trend API client id and secret are required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		cfg: cfg,
		http: &fasthttp.Client{
			Name:         "trendboard/1.0",
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		parser: NewDataLabParser(),
		log:    logger.GetLogger().WithField("component", "trends_client"),
	}, nil
}

// Fetch returns the monthly series for keyword over [start, end]. Every
// failure is a *FetchError.
func (c *Client) Fetch(ctx context.Context, keyword string, start, end time.Time) (Series, error) {
	started := time.Now()
	series, err := c.fetch(ctx, keyword, start, end)

	outcome := outcomeOK
	if fe, ok := AsFetchError(err); ok {
		outcome = fe.Kind.String()
	} else if len(series) == 0 {
		outcome = outcomeEmpty
	}
	fetchTotal.WithLabelValues(outcome).Inc()
	fetchDuration.Observe(time.Since(started).Seconds())

	log := c.log.WithFields(map[string]interface{}{
		"keyword":     keyword,
		"outcome":     outcome,
		"points":      len(series),
		"duration_ms": time.Since(started).Milliseconds(),
	})
	if err != nil {
		log.WithError(err).Warn("Trend fetch failed")
		return nil, err
	}
	log.Debug("Trend fetch completed")
	return series, nil
}

func (c *Client) fetch(ctx context.Context, keyword string, start, end time.Time) (Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, Transport(err)
	}

	body, err := c.encodeRequest(keyword, start, end)
	if err != nil {
		return nil, Transport(err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.cfg.Endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set(headerClientID, c.cfg.ClientID)
	req.Header.Set(headerClientSecret, c.cfg.ClientSecret)
	req.SetBody(body)

	if err := c.http.DoTimeout(req, resp, c.timeout(ctx)); err != nil {
		return nil, Transport(err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, RemoteRejected(resp.StatusCode(), string(resp.Body()))
	}

	series, err := c.parser.ParseResponse(resp.Body())
	if err != nil {
		return nil, Malformed(err)
	}
	return series, nil
}

func (c *Client) encodeRequest(keyword string, start, end time.Time) ([]byte, error) {
	return json.Marshal(searchRequest{
		StartDate: start.Format(PeriodLayout),
		EndDate:   end.Format(PeriodLayout),
		TimeUnit:  "month",
		KeywordGroups: []keywordGroup{
			{GroupName: keyword, Keywords: []string{keyword}},
		},
		Device: "pc",
		Ages:   []string{},
		Gender: "",
	})
}

// timeout shortens the configured timeout to the context deadline.
func (c *Client) timeout(ctx context.Context) time.Duration {
	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}
