package handler

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/samber/lo"

	"trendboard/internal/service"
	"trendboard/pkg/distribution"
	"trendboard/pkg/locale"
	"trendboard/pkg/render"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type countryOption struct {
	Code     string
	Name     string
	Selected bool
}

type menuOption struct {
	Menu   service.Menu
	Title  string
	Active bool
}

var menuTitles = map[service.Menu]string{
	service.MenuTrend:        "Search volume",
	service.MenuDistribution: "Distribution",
	service.MenuTable:        "Raw data",
}

// pageView is everything index.html reads. The SVG fields hold markup
// produced by pkg/render and are inserted verbatim.
type pageView struct {
	Keyword    string
	Country    string
	Menu       service.Menu
	Countries  []countryOption
	Menus      []menuOption
	Violations []service.Violation

	Ran         bool
	HasData     bool
	Query       service.Query
	EngineLabel string
	Warnings    []service.Warning

	TrendSVG    template.HTML
	GenderSVG   template.HTML
	AgeSVG      template.HTML
	MapImageURL string
	Table       *render.Table
}

func newPageView(table *locale.Table, req service.Request) *pageView {
	menu := lo.Ternary(req.Menu == "", service.MenuTrend, req.Menu)
	return &pageView{
		Keyword: req.Keyword,
		Country: req.Country,
		Menu:    menu,
		Countries: lo.Map(table.Entries(), func(e locale.Entry, _ int) countryOption {
			return countryOption{Code: string(e.Code), Name: e.Name, Selected: string(e.Code) == req.Country}
		}),
		Menus: lo.Map(service.Menus, func(m service.Menu, _ int) menuOption {
			return menuOption{Menu: m, Title: menuTitles[m], Active: m == menu}
		}),
	}
}

// fill renders the selected view of result. Without data only the warnings
// are shown, whatever the menu. draw is only called for the distribution view.
func (v *pageView) fill(result *service.Result, draw func() distribution.Distribution) error {
	v.Ran = true
	v.Menu = result.Menu
	v.Query = result.Query
	v.EngineLabel = result.EngineLabel
	v.Warnings = result.Warnings
	v.HasData = result.HasData()
	if !v.HasData {
		return nil
	}

	switch result.Menu {
	case service.MenuDistribution:
		dist := draw()
		gender, err := render.GenderPieSVG("Gender ratio", dist.Gender)
		if err != nil {
			return fmt.Errorf("render gender pie: %w", err)
		}
		age, err := render.AgePieSVG("Age ratio", dist.Age)
		if err != nil {
			return fmt.Errorf("render age pie: %w", err)
		}
		v.GenderSVG = template.HTML(gender)
		v.AgeSVG = template.HTML(age)
		v.MapImageURL = result.MapImageURL
	case service.MenuTable:
		t := render.NewTable(result.EngineLabel, result.Series)
		v.Table = &t
	default:
		title := fmt.Sprintf("'%s' search trend", result.Query.DisplayKeyword)
		svg, err := render.TrendChartSVG(title, result.EngineLabel, result.Series)
		if err != nil {
			return fmt.Errorf("render trend chart: %w", err)
		}
		v.TrendSVG = template.HTML(svg)
	}
	return nil
}
