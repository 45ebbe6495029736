// Command ingest loads a trips CSV into the trips table.
package main

import (
	"context"
	"flag"
	"log"

	"taxi-fare-model/config"
	"taxi-fare-model/data"
	"taxi-fare-model/database"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ./config.yaml)")
	csvPath := flag.String("csv", "", "CSV file to ingest (default data.local_path)")
	nrows := flag.Int("nrows", -1, "rows to read, 0 for all (default data.nrows)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	path := cfg.Data.LocalPath
	if *csvPath != "" {
		path = *csvPath
	}
	limit := cfg.Data.NRows
	if *nrows >= 0 {
		limit = *nrows
	}

	ctx := context.Background()
	table, err := data.GetData(ctx, &data.LocalSource{Path: path}, limit)
	if err != nil {
		log.Fatal(err)
	}
	if !table.HasFare {
		log.Fatalf("%s has no fare_amount column", path)
	}
	table = data.Clean(table)

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	n, err := data.SaveTrips(ctx, db, table.Rows)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Ingested %d trips", n)
}
