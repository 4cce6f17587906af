package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/andresuchdata/devicehub/internal/config"
	"github.com/andresuchdata/devicehub/internal/repository/postgres"
	"github.com/andresuchdata/devicehub/internal/storage"
	"github.com/andresuchdata/devicehub/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		newDBURLFlag(),
		&cli.StringFlag{
			Name:  "file",
			Usage: "Local CSV or XLSX file to import",
		},
		&cli.StringFlag{
			Name:  "object",
			Usage: "Object key of a CSV or XLSX in the storage bucket (STORAGE_* settings), used when --file is empty",
		},
	}
}

func initDB(c *cli.Context) error {
	db, err := sqlx.Connect("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey{}, postgres.Wrap(db, 1))
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) *postgres.DB {
	return c.Context.Value(dbKey{}).(*postgres.DB)
}

func storeFrom(c *cli.Context) *postgres.Store {
	return postgres.NewStore(dbFrom(c))
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Import suppliers, devices and gadgets from CSV or XLSX",
		Commands: []*cli.Command{
			{
				Name:   "suppliers",
				Usage:  "Import suppliers (columns: name, contact_info)",
				Flags:  sourceFlags(),
				Before: initDB,
				After:  closeDB,
				Action: seedSuppliers,
			},
			{
				Name:   "devices",
				Usage:  "Import devices (columns: imei_serial, brand, model, capacity, color, warranty_plan, supplier, source, purchase_price)",
				Flags:  sourceFlags(),
				Before: initDB,
				After:  closeDB,
				Action: seedDevices,
			},
			{
				Name:   "gadgets",
				Usage:  "Import gadgets (columns: inventory_id, brand, model, quantity, supplier, purchase_price)",
				Flags:  sourceFlags(),
				Before: initDB,
				After:  closeDB,
				Action: seedGadgets,
			},
			{
				Name:   "list",
				Usage:  "List CSV objects available under STORAGE_PREFIX",
				Action: listObjects,
			},
			{
				Name:   "migrate",
				Usage:  "Apply pending database migrations",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					return postgres.Migrate(dbFrom(c).DB.DB)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("seed failed")
	}
}

// openSource returns the CSV named by --file, or downloads --object first.
// Workbooks (.xlsx) are converted from their first sheet.
func openSource(c *cli.Context) (io.ReadCloser, error) {
	if path := c.String("file"); path != "" {
		return openLocal(path)
	}

	key := c.String("object")
	if key == "" {
		return nil, fmt.Errorf("one of --file or --object is required")
	}

	fetcher, err := newFetcher()
	if err != nil {
		return nil, err
	}
	path, err := fetcher.fetch(c.Context, key)
	if err != nil {
		return nil, err
	}
	logger.Log.Info().Str("key", key).Str("path", path).Msg("downloaded seed file")
	return openLocal(path)
}

func openLocal(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !isSpreadsheet(path) {
		return f, nil
	}
	defer f.Close()

	r, err := xlsxToCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return io.NopCloser(r), nil
}

func newFetcher() (*bucketFetcher, error) {
	cfg := config.Load().Storage
	client, err := storage.NewMinioClient(cfg)
	if err != nil {
		return nil, err
	}
	return newBucketFetcher(client, cfg.Prefix, filepath.Join(os.TempDir(), "devicehub-seed")), nil
}

func listObjects(c *cli.Context) error {
	fetcher, err := newFetcher()
	if err != nil {
		return err
	}
	keys, err := fetcher.csvKeys(c.Context)
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}

func seedSuppliers(c *cli.Context) error {
	src, err := openSource(c)
	if err != nil {
		return err
	}
	defer src.Close()

	suppliers, err := parseSuppliers(src)
	if err != nil {
		return err
	}

	err = storeFrom(c).InTx(c.Context, func(tx *postgres.Store) error {
		for i := range suppliers {
			if err := tx.CreateSupplier(c.Context, &suppliers[i]); err != nil {
				return fmt.Errorf("supplier %q: %w", suppliers[i].Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Log.Info().Int("count", len(suppliers)).Msg("suppliers imported")
	return nil
}

func seedDevices(c *cli.Context) error {
	src, err := openSource(c)
	if err != nil {
		return err
	}
	defer src.Close()

	store := storeFrom(c)
	suppliers, err := store.ListSuppliers(c.Context)
	if err != nil {
		return err
	}

	devices, err := parseDevices(src, newSupplierIndex(suppliers), time.Now())
	if err != nil {
		return err
	}

	err = store.InTx(c.Context, func(tx *postgres.Store) error {
		for i := range devices {
			if err := tx.CreateDevice(c.Context, &devices[i]); err != nil {
				return fmt.Errorf("device %s: %w", devices[i].IMEISerial, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Log.Info().Int("count", len(devices)).Msg("devices imported")
	return nil
}

func seedGadgets(c *cli.Context) error {
	src, err := openSource(c)
	if err != nil {
		return err
	}
	defer src.Close()

	store := storeFrom(c)
	suppliers, err := store.ListSuppliers(c.Context)
	if err != nil {
		return err
	}

	gadgets, err := parseGadgets(src, newSupplierIndex(suppliers))
	if err != nil {
		return err
	}

	err = store.InTx(c.Context, func(tx *postgres.Store) error {
		for i := range gadgets {
			if err := tx.CreateGadget(c.Context, &gadgets[i]); err != nil {
				return fmt.Errorf("gadget %s %s: %w", gadgets[i].Brand, gadgets[i].Model, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Log.Info().Int("count", len(gadgets)).Msg("gadgets imported")
	return nil
}
