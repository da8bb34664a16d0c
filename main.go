package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Botopiaorg/mietmap/config"
	"github.com/Botopiaorg/mietmap/geo"
	"github.com/Botopiaorg/mietmap/scraper/immoscout"
	"github.com/Botopiaorg/mietmap/services"
	"github.com/Botopiaorg/mietmap/storage"
	"github.com/Botopiaorg/mietmap/utils"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mietmap",
	Short: "Scrapes rent listings for a German city and exports them for map visualisation",
	Long: `mietmap periodically downloads real-estate listing pages, extracts address,
rent, and area, persists new listings in a local SQLite database, backfills
coordinates via OpenStreetMap Nominatim, and exports marker and raw JSON
views for the map frontend.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		return run(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.json", "JSON config file")

	rootCmd.Flags().String("database", "listings.sqlite", "Database file")
	rootCmd.Flags().String("export-dir", "export", "Output directory for exported data")
	rootCmd.Flags().BoolP("verbose", "v", false, "Mirror log output to the console")

	viper.BindPFlags(rootCmd.Flags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes one full pass: ingestion, coordinate backfill, exports,
// insights. Each stage only starts if the previous one succeeded; a failure
// is logged with context, "Finished" is still recorded, and the error
// surfaces as a non-zero exit code.
func run(cfg *config.Config) error {
	logger, err := utils.NewLogger(cfg.LogFile, cfg.Verbose)
	if err != nil {
		return err
	}
	defer logger.Close()

	logger.Info("Started")
	logger.Info("Using database %q", cfg.Database)

	err = func() error {
		store, err := storage.NewSQLiteStore(cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()

		fetcher := immoscout.NewHTTPFetcher(cfg.FetchRate, cfg.FetchRetries, cfg.UserAgent, logger)
		crawler := immoscout.NewCrawler(cfg.BaseURL, cfg.PageURL, fetcher, store, logger)
		if err := crawler.Run(ctx); err != nil {
			return fmt.Errorf("ingestion: %w", err)
		}

		cache, err := geo.LoadCache(cfg.CacheFile)
		if err != nil {
			return err
		}
		limiter := geo.NewRateLimiter(cfg.GeocodeCalls, cfg.GeocodeWindow())
		geocoder := geo.NewGeocoder(cache, limiter, cfg.GeocodeTimeout(), cfg.UserAgent, logger)

		backfill := services.NewBackfill(store, geocoder, cfg.City, logger)
		if err := backfill.Run(ctx); err != nil {
			return fmt.Errorf("coordinate backfill: %w", err)
		}

		writer, err := storage.NewJSONWriter(cfg.ExportDir)
		if err != nil {
			return err
		}
		exporter := services.NewExporter(store, writer, logger)
		if err := exporter.ExportMarkers(); err != nil {
			return fmt.Errorf("marker export: %w", err)
		}
		if err := exporter.ExportRaw(); err != nil {
			return fmt.Errorf("raw export: %w", err)
		}

		listings, err := store.FetchAll()
		if err != nil {
			return err
		}
		insights := services.NewInsightService(logger)
		insights.Log(insights.Generate(listings))

		return nil
	}()

	if err != nil {
		logger.Error("Run failed: %v", err)
	}
	logger.Info("Finished")
	return err
}
