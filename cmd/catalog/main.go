package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/icodeforyou/rapsounding-go/config"
	"github.com/icodeforyou/rapsounding-go/metrics"
	"github.com/icodeforyou/rapsounding-go/thredds"
	"github.com/lmittmann/tint"
)

// Lists the datasets of the model catalog and their access URLs.
func main() {
	catalogURL := flag.String("url", config.DefaultCatalogUrl, "THREDDS catalog URL")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.RFC3339Nano,
	}))

	client := thredds.NewClient(time.Minute, metrics.NewForTesting(), logger)
	catalog, err := client.Catalog(context.Background(), *catalogURL)
	if err != nil {
		logger.Error("catalog request failed", slog.Any("error", err))
		os.Exit(1)
	}

	for i, ds := range catalog.Datasets {
		fmt.Printf("%d: %s (%s)\n", i, ds.Name, ds.ID)
		services := make([]string, 0, len(ds.AccessURLs))
		for s := range ds.AccessURLs {
			services = append(services, s)
		}
		sort.Strings(services)
		for _, s := range services {
			fmt.Printf("    %-14s %s\n", s, ds.AccessURLs[s])
		}
	}
}
