package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"trendboard/internal/config"
	"trendboard/internal/handler"
	"trendboard/internal/service"
	"trendboard/pkg/logger"
	"trendboard/pkg/render"
	"trendboard/pkg/trends"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "CRITICAL ERROR: application panic recovered: %v\n", r)
			os.Exit(1)
		}
	}()

	app := &cli.App{
		Name:      "trendboard",
		Usage:     "one-shot keyword search trend report",
		UsageText: "trendboard -keyword <KEYWORD> [-country JP] [-xlsx out.xlsx]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "keyword", Aliases: []string{"k"}, Usage: "keyword to analyze", EnvVars: []string{"TRENDBOARD_KEYWORD"}, Required: true},
			&cli.StringFlag{Name: "country", Aliases: []string{"c"}, Usage: "country code", EnvVars: []string{"TRENDBOARD_COUNTRY"}},
			&cli.StringFlag{Name: "config", Usage: "configuration file path", EnvVars: []string{"TRENDBOARD_CONFIG"}},
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional .env file with credentials"},
			&cli.StringFlag{Name: "xlsx", Usage: "also write the table to this workbook"},
			&cli.BoolFlag{Name: "json", Usage: "print the result as JSON"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging", EnvVars: []string{"DEBUG"}},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if err := config.LoadDotEnv(c.String("env-file")); err != nil {
		return err
	}
	cfg, err := config.NewManager().Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// stdout carries the report
	cfg.Logger.Output = "stderr"
	if c.Bool("debug") {
		cfg.Logger.Level = "debug"
	}
	logger.SetLogger(logger.New(cfg.Logger))

	logger.GetSecurityLogger().SafeInfo("Configuration loaded", map[string]interface{}{
		"endpoint":      cfg.Trends.Endpoint,
		"client_id":     cfg.Trends.ClientID,
		"client_secret": cfg.Trends.ClientSecret,
	})

	table, err := cfg.CountryTable()
	if err != nil {
		return err
	}
	client, err := trends.NewClient(cfg.TrendsClient())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	country := c.String("country")
	if country == "" {
		country = string(table.Default())
	}
	result, err := service.NewDashboard(client, table).Run(ctx, service.Request{
		Keyword: c.String("keyword"),
		Country: country,
		Menu:    service.MenuTable,
	})
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "WARNING [%s]: %s\n", w.Code, w.Message)
	}

	rawTable := render.NewTable(result.EngineLabel, result.Series)
	if c.Bool("json") {
		err = printJSON(c.App.Writer, result)
	} else {
		err = printTable(c.App.Writer, result, rawTable)
	}
	if err != nil {
		return err
	}

	if path := c.String("xlsx"); path != "" && result.HasData() {
		return writeWorkbook(path, rawTable)
	}
	return nil
}

func printTable(w io.Writer, result *service.Result, table render.Table) error {
	fmt.Fprintf(w, "Keyword: %s (queried as %q, %s, %s to %s)\n\n",
		result.Query.DisplayKeyword, result.Query.QueryKeyword, result.Query.Country,
		result.Query.Start.Format(trends.PeriodLayout), result.Query.End.Format(trends.PeriodLayout))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, h := range table.Headers {
		fmt.Fprintf(tw, "%s\t", h)
	}
	fmt.Fprintln(tw)
	for _, r := range table.Rows {
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%.1f\t\n", r.Period, r.Primary, r.Secondary, r.Total)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s\n", table.Summary())
	return err
}

func printJSON(w io.Writer, result *service.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(handler.NewTrendsResponse(result))
}

func writeWorkbook(path string, table render.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := table.WriteXLSX(f); err != nil {
		return err
	}
	logger.GetLogger().WithField("path", path).Info("Workbook written")
	return nil
}
