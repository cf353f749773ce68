// Command leadscout scores a news file or a synthetic dataset and prints the
// company ranking and best headlines.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"leadscout/internal/config"
	"leadscout/internal/dataprocessing"
	apierrors "leadscout/internal/errors"
	"leadscout/internal/exporter"
	"leadscout/internal/infrastructure"
	"leadscout/internal/leads"
	"leadscout/internal/sentiment"
	"leadscout/internal/synthetic"
	"leadscout/pkg/contracts/domain"
)

type options struct {
	in        string
	synthetic int
	seed      int64
	mode      string
	weight    float64
	unknown   string
	top       int
	out       string
	view      string
	columns   string
	logLevel  string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, defaults *config.Config, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("leadscout", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.in, "in", "", "news file to score (.csv or .xlsx)")
	fs.IntVar(&o.synthetic, "synthetic", 0, "generate N synthetic headlines instead of reading -in")
	fs.Int64Var(&o.seed, "seed", defaults.Dataset.Seed, "seed for -synthetic; 0 uses the current time")
	fs.StringVar(&o.mode, "mode", defaults.Scoring.WeightingMode, "weighting mode: weighted or unweighted")
	fs.Float64Var(&o.weight, "weight", defaults.Scoring.SentimentWeight, "sentiment weight used by weighted mode")
	fs.StringVar(&o.unknown, "unknown", defaults.Scoring.OnUnknownCategory, "unknown news types: fail or treat_as_neutral")
	fs.IntVar(&o.top, "top", defaults.Scoring.TopN, "number of top headlines to print")
	fs.StringVar(&o.out, "out", "", "write the selected view to this .csv or .xlsx file")
	fs.StringVar(&o.view, "view", "companies", "view written by -out: records or companies")
	fs.StringVar(&o.columns, "columns", "", "comma separated columns written by -out")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level")

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	switch {
	case o.in == "" && o.synthetic == 0:
		return o, errors.New("one of -in or -synthetic is required")
	case o.in != "" && o.synthetic != 0:
		return o, errors.New("-in and -synthetic are mutually exclusive")
	}
	if o.view != "records" && o.view != "companies" {
		return o, fmt.Errorf("unknown view %q", o.view)
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	defaults, err := config.Load()
	if err != nil {
		return apierrors.NewConfigError("failed to load configuration", err)
	}

	o, err := parseFlags(args, defaults, stderr)
	if err != nil {
		return err
	}

	logger := infrastructure.NewLoggerWithWriter(stderr, o.logLevel)

	policy := leads.ScoringConfig{
		WeightingMode:     leads.WeightingMode(o.mode),
		SentimentWeight:   o.weight,
		OnUnknownCategory: leads.UnknownCategoryPolicy(o.unknown),
	}
	engine, err := leads.NewEngine(policy, sentiment.NewLexicon(),
		leads.WithWorkers(defaults.Scoring.Workers),
		leads.WithBatchSize(defaults.Scoring.BatchSize),
		leads.WithLogger(logger))
	if err != nil {
		return apierrors.NewConfigError("invalid scoring options", err)
	}

	records, err := loadRecords(ctx, o, logger)
	if err != nil {
		return err
	}

	analysis, err := engine.Analyze(ctx, records, o.top)
	if err != nil {
		return err
	}

	printCompanies(stdout, analysis.Companies)
	printTop(stdout, analysis.TopHeadlines)
	fmt.Fprintf(stdout, "\n%d headlines, %d companies, %d hot leads, average score %.2f\n",
		analysis.Summary.TotalArticles, analysis.Summary.UniqueCompanies,
		analysis.Summary.HotLeads, analysis.Summary.AverageScore)

	if o.out == "" {
		return nil
	}
	path, err := writeOutput(defaults.Export.Dir, o, analysis)
	if err != nil {
		return apierrors.NewExportError("failed to write "+o.out, err).WithContext("view", o.view)
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return nil
}

func loadRecords(ctx context.Context, o options, logger *slog.Logger) ([]domain.NewsRecord, error) {
	if o.in != "" {
		records, err := dataprocessing.FileSource{Path: o.in}.LoadRecords(ctx)
		if err != nil {
			return nil, apierrors.NewParsingError("failed to read "+o.in, err)
		}
		return records, nil
	}

	gen := synthetic.NewGenerator(synthetic.WithLogger(logger))
	if o.seed != 0 {
		return gen.GenerateWithSeed(o.synthetic, o.seed)
	}
	return gen.Generate(o.synthetic)
}

func writeOutput(baseDir string, o options, analysis *leads.Analysis) (string, error) {
	format, err := dataprocessing.FormatFromName(o.out)
	if err != nil {
		return "", err
	}

	columns := exporter.ParseColumns(o.columns)
	var table exporter.Table
	if o.view == "records" {
		table, err = exporter.RecordsTable(analysis.Records, columns)
	} else {
		table, err = exporter.CompaniesTable(analysis.Companies, columns)
	}
	if err != nil {
		return "", err
	}

	w := exporter.NewCSVWriter(baseDir)
	if format == dataprocessing.FormatXLSX {
		return w.WriteExcel(o.out, table, strings.TrimSuffix(filepath.Base(o.out), filepath.Ext(o.out)))
	}
	return w.WriteCSV(o.out, table, exporter.WriteOptions{BOMPrefix: true})
}

func printCompanies(out io.Writer, companies []domain.CompanyAggregate) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPANY\tTOTAL\tARTICLES\tLATEST\tPRIORITY")
	for _, c := range companies {
		fmt.Fprintf(tw, "%s\t%.2f\t%d\t%s\t%s\n", c.Company, c.TotalScore, c.ArticleCount, c.LatestNews, c.Priority)
	}
	_ = tw.Flush()
}

func printTop(out io.Writer, top []domain.ScoredRecord) {
	if len(top) == 0 {
		return
	}
	fmt.Fprintf(out, "\nTop %d headlines\n", len(top))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tTIER\tDATE\tCOMPANY\tHEADLINE")
	for _, r := range top {
		fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\t%s\n", r.LeadScore, r.Tier, r.Date, r.Company, r.Headline)
	}
	_ = tw.Flush()
}
