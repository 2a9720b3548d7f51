package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hshy1839/seongji-erp-server/internal/app"
	"github.com/hshy1839/seongji-erp-server/internal/cache"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/services"
)

var ingestFlags struct {
	dryRun              bool
	tzOffset            int
	defaultCompany      string
	defaultShippingDate string
	openAsOpening       bool
	overwriteToday      bool
	mode                string
	month               string
	createdBy           string
}

type ingestRunner func(a *app.App, cmd *cobra.Command, data []byte, filename string, opts services.IngestOptions) (any, error)

var ingestRunners = map[string]ingestRunner{
	"orders": func(a *app.App, cmd *cobra.Command, data []byte, name string, opts services.IngestOptions) (any, error) {
		return a.Ingest.IngestOrders(cmd.Context(), data, name, opts)
	},
	"deliveries": func(a *app.App, cmd *cobra.Command, data []byte, name string, opts services.IngestOptions) (any, error) {
		return a.Ingest.IngestDeliveries(cmd.Context(), data, name, opts)
	},
	"shipments": func(a *app.App, cmd *cobra.Command, data []byte, name string, opts services.IngestOptions) (any, error) {
		return a.Ingest.IngestShipments(cmd.Context(), data, name, opts)
	},
	"stocks": func(a *app.App, cmd *cobra.Command, data []byte, name string, opts services.IngestOptions) (any, error) {
		return a.Ingest.IngestStocks(cmd.Context(), data, name, opts)
	},
	"shortages": func(a *app.App, cmd *cobra.Command, data []byte, name string, opts services.IngestOptions) (any, error) {
		return a.Ingest.IngestShortages(cmd.Context(), data, name, opts)
	},
	"productions": func(a *app.App, cmd *cobra.Command, data []byte, name string, opts services.IngestOptions) (any, error) {
		return a.Ingest.IngestProductions(cmd.Context(), data, name, opts)
	},
}

func resourceNames() string {
	names := make([]string, 0, len(ingestRunners))
	for name := range ingestRunners {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// ingestOptions turns the flags into options; only flags the operator set override defaults.
func ingestOptions(cmd *cobra.Command) (services.IngestOptions, error) {
	f := ingestFlags
	opts := services.IngestOptions{
		DryRun:         f.dryRun,
		DefaultCompany: f.defaultCompany,
		OverwriteToday: f.overwriteToday,
		Mode:           models.ProductionMode(strings.ToUpper(f.mode)),
		Month:          f.month,
		CreatedBy:      f.createdBy,
	}
	if cmd.Flags().Changed("tz-offset") {
		opts.TZOffsetMinutes = &f.tzOffset
	}
	if cmd.Flags().Changed("open-as-opening") {
		opts.OpenAsOpening = &f.openAsOpening
	}
	if f.defaultShippingDate != "" {
		d, err := time.Parse("2006-01-02", f.defaultShippingDate)
		if err != nil {
			return opts, fmt.Errorf("invalid --default-shipping-date %q: expected YYYY-MM-DD", f.defaultShippingDate)
		}
		opts.DefaultShippingDate = &d
	}
	return opts, nil
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <resource> <file>",
	Short: "Ingest a spreadsheet the same way the upload endpoint does",
	Long:  "Ingest an .xlsx or .csv file into one of: " + resourceNames() + ". The report is printed as JSON.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resource, path := strings.ToLower(args[0]), args[1]
		run, ok := ingestRunners[resource]
		if !ok {
			return fmt.Errorf("unknown resource %q (want one of %s)", resource, resourceNames())
		}
		opts, err := ingestOptions(cmd)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		return withApp(cmd.Context(), func(a *app.App) error {
			report, err := run(a, cmd, data, filepath.Base(path), opts)
			if err != nil {
				return err
			}
			if !opts.DryRun {
				cache.InvalidateResource(cmd.Context(), resource)
			}
			return printJSON(report)
		})
	},
}

func init() {
	f := ingestCmd.Flags()
	f.BoolVar(&ingestFlags.dryRun, "dry-run", false, "validate only, write nothing")
	f.IntVar(&ingestFlags.tzOffset, "tz-offset", 540, "upload-day timezone offset in minutes")
	f.StringVar(&ingestFlags.defaultCompany, "default-company", "", "orders: company for rows without one")
	f.StringVar(&ingestFlags.defaultShippingDate, "default-shipping-date", "", "shipments: date (YYYY-MM-DD) for rows without one")
	f.BoolVar(&ingestFlags.openAsOpening, "open-as-opening", true, "stocks: book the sheet quantity as opening quantity")
	f.BoolVar(&ingestFlags.overwriteToday, "overwrite-today", false, "shortages: drop rows uploaded today first")
	f.StringVar(&ingestFlags.mode, "mode", "", "productions: REPLACE or INC")
	f.StringVar(&ingestFlags.month, "month", "", "productions: month key YYYY-MM")
	f.StringVar(&ingestFlags.createdBy, "created-by", "erpctl", "deliveries: recorded creator")
	rootCmd.AddCommand(ingestCmd)
}
