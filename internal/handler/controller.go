package handler

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/samber/lo"

	"trendboard/internal/apperr"
	"trendboard/internal/service"
	"trendboard/pkg/logger"
	"trendboard/pkg/render"
	"trendboard/pkg/trends"
)

const (
	sessionKeyword = "keyword"
	sessionCountry = "country"

	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Controller struct {
	dashboard service.DashboardService
	sessions  *session.Store
	page      *template.Template
	log       *logger.Logger
}

type StatusResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// TrendsResponse is the JSON form of one pipeline run.
type TrendsResponse struct {
	DisplayKeyword string            `json:"display_keyword"`
	QueryKeyword   string            `json:"query_keyword"`
	Country        string            `json:"country"`
	EngineLabel    string            `json:"engine_label"`
	Start          string            `json:"start"`
	End            string            `json:"end"`
	Points         []render.Row      `json:"points"`
	Warnings       []service.Warning `json:"warnings"`
}

func NewTrendsResponse(result *service.Result) TrendsResponse {
	return TrendsResponse{
		DisplayKeyword: result.Query.DisplayKeyword,
		QueryKeyword:   result.Query.QueryKeyword,
		Country:        string(result.Query.Country),
		EngineLabel:    result.EngineLabel,
		Start:          result.Query.Start.Format(trends.PeriodLayout),
		End:            result.Query.End.Format(trends.PeriodLayout),
		Points:         render.NewTable(result.EngineLabel, result.Series).Rows,
		Warnings:       result.Warnings,
	}
}

func NewController(dashboard service.DashboardService, sessions *session.Store) *Controller {
	return &Controller{
		dashboard: dashboard,
		sessions:  sessions,
		page:      pageTemplate,
		log:       logger.GetLogger().WithField("component", "handler"),
	}
}

func (c *Controller) Register(r fiber.Router) {
	r.Get("/", c.Index)
	r.Get("/healthz", c.Health)
	r.Get("/export.xlsx", c.Export)

	api := r.Group("/api")
	api.Get("/trends", c.Trends)
	api.Get("/distribution", c.Distribution)
}

func (c *Controller) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(StatusResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Trends runs the pipeline for ?keyword=&country= and returns the series.
func (c *Controller) Trends(ctx *fiber.Ctx) error {
	result, err := c.dashboard.Run(ctx.UserContext(), c.apiRequest(ctx))
	if err != nil {
		return toAppError(err)
	}

	return ctx.JSON(NewTrendsResponse(result))
}

func (c *Controller) Distribution(ctx *fiber.Ctx) error {
	return ctx.JSON(c.dashboard.Distribution())
}

// Export downloads the raw table as a workbook, or 204 when there is no data.
func (c *Controller) Export(ctx *fiber.Ctx) error {
	result, err := c.dashboard.Run(ctx.UserContext(), c.apiRequest(ctx))
	if err != nil {
		return toAppError(err)
	}
	if !result.HasData() {
		return ctx.SendStatus(fiber.StatusNoContent)
	}

	table := render.NewTable(result.EngineLabel, result.Series)
	ctx.Attachment(fmt.Sprintf("trend-%s-%s.xlsx",
		result.Query.Country, result.Query.End.Format(trends.PeriodLayout)))
	ctx.Set(fiber.HeaderContentType, mimeXLSX)
	return table.WriteXLSX(ctx)
}

// Index renders the dashboard page. Query parameters win over the session;
// a successful run stores keyword and country back into it.
func (c *Controller) Index(ctx *fiber.Ctx) error {
	sess, err := c.sessions.Get(ctx)
	if err != nil {
		return err
	}

	req := c.pageRequest(ctx, sess)
	view := newPageView(c.dashboard.Countries(), req)

	if strings.TrimSpace(req.Keyword) != "" {
		result, err := c.dashboard.Run(ctx.UserContext(), req)
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			view.Violations = ve.Violations
		case err != nil:
			return err
		default:
			sess.Set(sessionKeyword, req.Keyword)
			sess.Set(sessionCountry, string(result.Query.Country))
			if err := sess.Save(); err != nil {
				c.log.WithError(err).Warn("Failed to save session")
			}
			if err := view.fill(result, c.dashboard.Distribution); err != nil {
				return err
			}
		}
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.page.Execute(ctx, view)
}

func (c *Controller) apiRequest(ctx *fiber.Ctx) service.Request {
	return service.Request{
		Keyword: ctx.Query("keyword"),
		Country: ctx.Query("country", string(c.dashboard.Countries().Default())),
		Menu:    service.Menu(ctx.Query("menu")),
	}
}

func (c *Controller) pageRequest(ctx *fiber.Ctx, sess *session.Session) service.Request {
	args := ctx.Context().QueryArgs()

	keyword := ctx.Query("keyword")
	if !args.Has("keyword") {
		keyword, _ = sess.Get(sessionKeyword).(string)
	}
	country := ctx.Query("country")
	if country == "" {
		country, _ = sess.Get(sessionCountry).(string)
	}

	return service.Request{
		Keyword: keyword,
		Country: lo.Ternary(country == "", string(c.dashboard.Countries().Default()), country),
		Menu:    service.Menu(ctx.Query("menu")),
	}
}

func toAppError(err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return apperr.NewInvalidViolations(ve.Violations)
	}
	return err
}
