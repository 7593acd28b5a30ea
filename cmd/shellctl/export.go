package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"shellchain/config"
	"shellchain/indexer"
)

func runExportEvents(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("export-events", flag.ContinueOnError)
	configPath := fs.String("config", "", "Read the archive backend from this config file")
	driver := fs.String("driver", indexer.DriverSQLite, "Archive driver (sqlite or postgres)")
	dsn := fs.String("dsn", "events.db", "Archive data source name")
	out := fs.String("out", "events.parquet", "Output parquet file")
	eventType := fs.String("type", "", "Only export events of this type")
	call := fs.String("call", "", "Only export events emitted by this call")
	since := fs.String("since", "", "Only export events at or after this RFC3339 time")
	until := fs.String("until", "", "Only export events before this RFC3339 time")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		*driver, *dsn = cfg.Indexer.Driver, cfg.Indexer.DSN
	}
	filter := indexer.Filter{Type: *eventType, Call: *call}
	var err error
	if filter.Since, err = parseBound("since", *since); err != nil {
		return err
	}
	if filter.Until, err = parseBound("until", *until); err != nil {
		return err
	}

	store, err := indexer.Open(*driver, *dsn)
	if err != nil {
		return err
	}
	defer store.Close()
	n, err := store.ExportParquet(context.Background(), *out, filter)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "exported %d events to %s\n", n, *out)
	return nil
}

func parseBound(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -%s: %w", name, err)
	}
	return t, nil
}
