package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"golang.org/x/time/rate"

	"taxi-fare-model/cache"
	"taxi-fare-model/config"
	"taxi-fare-model/data"
	"taxi-fare-model/database"
	"taxi-fare-model/models"
	"taxi-fare-model/tracking"
	"taxi-fare-model/trainer"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var db *sql.DB
	if cfg.Data.Source == "postgres" || cfg.Tracking.Backend == "postgres" {
		db, err = database.Open(cfg.DB)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
	}

	src, err := data.NewSource(ctx, cfg.Data, db)
	if err != nil {
		log.Fatal(err)
	}
	table, err := data.GetData(ctx, src, cfg.Data.NRows)
	if err != nil {
		log.Fatal(err)
	}
	if !table.HasFare {
		log.Fatal("training data has no fare_amount column")
	}
	table = data.Clean(table)
	log.Printf("%d rows left after cleaning", table.Len())

	trainX, testX, err := data.TrainTestSplit(table.Rows, cfg.Training.TestSize, cfg.Training.Seed)
	if err != nil {
		log.Fatal(err)
	}

	t := trainer.New(trainX, models.Fares(trainX), cfg.Training)
	t.SetPipeline()
	if err := t.Run(); err != nil {
		log.Fatal(err)
	}

	best, err := t.GridSearch(ctx)
	if err != nil {
		log.Fatal(err)
	}

	testY := models.Fares(testX)
	backend, err := trackingBackend(cfg.Tracking, db)
	if err != nil {
		log.Fatal(err)
	}
	if backend != nil {
		client, err := tracking.NewClient(ctx, backend, cfg.Tracking.ExperimentName)
		if err != nil {
			log.Fatal(err)
		}
		_, err = t.Track(ctx, client, testX, testY, best.Map(), map[string]interface{}{
			"n_rows":      cfg.Data.NRows,
			"test_split":  cfg.Training.TestSize,
			"model":       "linear_svr",
			"ohe_unknown": "ignored",
		})
		if err != nil {
			log.Fatal(err)
		}
	}

	rmse, err := t.Evaluate(testX, testY)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("RMSE: %.4f", rmse)

	if err := t.SaveModel(cfg.Model.Path); err != nil {
		log.Fatal(err)
	}

	if cfg.Redis.Enabled {
		rdb, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal(err)
		}
		defer rdb.Close()
		if err := cache.PublishModelSaved(ctx, rdb, cfg.Model.Path); err != nil {
			log.Fatal(err)
		}
	}
}

func trackingBackend(cfg config.TrackingConfig, db *sql.DB) (tracking.Backend, error) {
	switch cfg.Backend {
	case "mlflow":
		return tracking.NewMLflow(cfg.URI, tracking.MLflowOptions{RateLimit: rate.Limit(cfg.RateLimit)}), nil
	case "postgres":
		return tracking.NewPostgres(db), nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown tracking backend %q", cfg.Backend)
	}
}
