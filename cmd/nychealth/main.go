package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"nychealth/internal"
	"nychealth/internal/config"
	"nychealth/internal/connectors"
	"nychealth/internal/connectors/local"
	"nychealth/internal/connectors/nychealth"
	"nychealth/internal/pipeline"
	"nychealth/internal/poller"
	"nychealth/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	switch cmd {
	case "scrape":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		date := fs.String("date", time.Now().Format(internal.DateLayout), "report date YYYY-MM-DD")
		backfill := fs.Bool("backfill", false, "walk back to the first date without reports")
		update := fs.Bool("update", false, "merge into the newest existing csv output")
		format := fs.String("format", "csv", "csv|xlsx|db")
		_ = fs.Parse(os.Args[2:])

		start, err := internal.ParseDate(*date)
		must(err)

		proc := pipeline.NewProcessingService(makeFetcher(cfg, logger), db, logger)
		res, err := pipeline.NewBackfill(proc, cfg.BackfillMinDate, logger).Run(ctx, start, *backfill)
		must(err)
		if len(res.Records) == 0 {
			fmt.Printf("no reports published for %s\n", start.Format(internal.DateLayout))
			return
		}

		switch strings.ToLower(*format) {
		case "csv":
			compression, err := storage.ParseCompression(cfg.OutputCompression)
			must(err)
			path, err := storage.NewCSVStore(cfg.OutputDir, compression).Write(start, res.Records, *update)
			must(err)
			fmt.Printf("scrape done dates=%d records=%d output=%s\n", res.Dates, len(res.Records), path)
		case "xlsx":
			path := filepath.Join(cfg.OutputDir, fmt.Sprintf("nyc_daily_health_%s.xlsx", start.Format(internal.DateLayout)))
			must(pipeline.ExportRecordsToXLSX(res.Records, path))
			fmt.Printf("scrape done dates=%d records=%d output=%s\n", res.Dates, len(res.Records), path)
		case "db":
			must(db.SaveRecords(res.Records))
			fmt.Printf("scrape done dates=%d records=%d db=%s\n", res.Dates, len(res.Records), cfg.DBPath)
		default:
			must(fmt.Errorf("unsupported format: %s", *format))
		}
	case "normalize":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "report document path")
		reportName := fs.String("report", "", "summary|hospitalizations|deaths")
		date := fs.String("date", "", "report date YYYY-MM-DD")
		output := fs.String("output", "", "output .csv[.gz|.xz|.zst] or .xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *reportName == "" || *date == "" {
			must(fmt.Errorf("--input --report --date are required"))
		}

		report, ok := internal.ParseReportType(*reportName)
		if !ok {
			must(fmt.Errorf("unknown report: %s", *reportName))
		}
		day, err := internal.ParseDate(*date)
		must(err)

		records, err := pipeline.NormalizeFile(*input, report, day, logger)
		must(err)
		records = pipeline.Merge(records)

		out := *output
		if out == "" {
			out = filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%s.csv", report, day.Format(internal.DateLayout)))
		}
		if strings.HasSuffix(strings.ToLower(out), ".xlsx") {
			must(pipeline.ExportRecordsToXLSX(records, out))
		} else {
			must(storage.WriteCSVFile(out, records))
		}
		fmt.Printf("normalize done records=%d output=%s\n", len(records), out)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		from := fs.String("from", "", "first date YYYY-MM-DD")
		to := fs.String("to", "", "last date YYYY-MM-DD, defaults to --from")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*from) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--from and --out are required"))
		}
		if *to == "" {
			*to = *from
		}

		fromDate, err := internal.ParseDate(*from)
		must(err)
		toDate, err := internal.ParseDate(*to)
		must(err)

		records, err := db.ListRecords(fromDate, toDate)
		must(err)
		if len(records) == 0 {
			must(fmt.Errorf("no records between %s and %s", *from, *to))
		}
		must(pipeline.ExportRecordsToXLSX(records, *out))
		fmt.Printf("exported %d records to %s\n", len(records), *out)
	case "runs":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max rows")
		_ = fs.Parse(os.Args[2:])
		runs, err := db.ListRuns(*limit)
		must(err)
		for _, run := range runs {
			fmt.Printf("%d %s date=%s records=%d reports=%v at=%s\n", run.ID, run.TraceID, run.Date, run.Records, run.Reports, run.CreatedAt)
		}
	case "poll":
		proc := pipeline.NewProcessingService(makeFetcher(cfg, logger), db, logger)
		must(poller.NewService(db, cfg, proc, logger).Run(ctx))
	default:
		usage()
		os.Exit(1)
	}
}

func makeFetcher(cfg config.Config, logger *log.Logger) connectors.Fetcher {
	if strings.TrimSpace(cfg.ReportSourceDir) != "" {
		return local.NewFetcher(cfg.ReportSourceDir)
	}
	return nychealth.NewClient(cfg, logger)
}

func usage() {
	fmt.Println("usage: nychealth <command>")
	fmt.Println("commands:")
	fmt.Println("  scrape [--date=YYYY-MM-DD] [--backfill] [--update] [--format=csv|xlsx|db]")
	fmt.Println("  normalize --input=report.pdf --report=summary|hospitalizations|deaths --date=YYYY-MM-DD [--output=...]")
	fmt.Println("  export:xlsx --from=YYYY-MM-DD [--to=YYYY-MM-DD] --out=./out/records.xlsx")
	fmt.Println("  runs [--limit=20]")
	fmt.Println("  poll")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
