package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/andresuchdata/devicehub/internal/analytics"
	"github.com/andresuchdata/devicehub/internal/config"
	"github.com/andresuchdata/devicehub/internal/repository/postgres"
	"github.com/andresuchdata/devicehub/internal/storage"
	"github.com/andresuchdata/devicehub/pkg/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "report",
		Usage: "Export sales analytics as CSV",
		Commands: []*cli.Command{
			{
				Name:  "sales",
				Usage: "Write daily, brand and weekday sales series for the last N days",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Value: 30, Usage: "Window length in days"},
					&cli.StringFlag{Name: "out", Value: "./data/reports", Usage: "Output directory"},
					&cli.BoolFlag{Name: "upload", Usage: "Also upload the files to the storage bucket"},
				},
				Action: exportSales,
			},
			{
				Name:   "list",
				Usage:  "List uploaded reports",
				Action: listReports,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("report failed")
	}
}

func exportSales(c *cli.Context) error {
	cfg := config.Load()
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	days := c.Int("days")
	if days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	to := time.Now()
	from := to.AddDate(0, 0, -days)
	sales, err := postgres.NewStore(db).ListSales(c.Context, from)
	if err != nil {
		return err
	}

	agg := analytics.NewAggregator(analytics.Config{Location: cfg.Dashboard.Location()})
	files, err := buildSalesReport(agg, sales, from, to, cfg.Dashboard.Currency).files()
	if err != nil {
		return err
	}

	outDir := c.String("out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	var uploader storage.ObjectStorage
	if c.Bool("upload") {
		if uploader, err = storage.NewMinioClient(cfg.Storage); err != nil {
			return err
		}
	}

	for _, name := range sortedNames(files) {
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Log.Info().Str("path", path).Int("sales", len(sales)).Msg("report written")

		if uploader == nil {
			continue
		}
		key := storage.ResolveObjectKey(cfg.Storage.Prefix, name)
		if err := uploader.UploadObject(c.Context, key, files[name]); err != nil {
			return err
		}
		logger.Log.Info().Str("key", key).Msg("report uploaded")
	}
	return nil
}

func listReports(c *cli.Context) error {
	cfg := config.Load()
	client, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return err
	}
	objects, err := client.ListObjects(c.Context, cfg.Storage.Prefix)
	if err != nil {
		return err
	}
	for _, o := range objects {
		fmt.Printf("%s\t%d\n", o.Key, o.Size)
	}
	return nil
}

func sortedNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
