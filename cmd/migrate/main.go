package main

import (
	"flag"
	"log"

	"taxi-fare-model/config"
	"taxi-fare-model/migration"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ./config.yaml)")
	down := flag.Bool("down", false, "roll back every migration instead")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	if !*down {
		if err := migration.RunMigrations(cfg.DB.URL()); err != nil {
			log.Fatalf("Migration error: %v", err)
		}
		return
	}

	mg, err := migration.New(cfg.DB.URL())
	if err != nil {
		log.Fatal(err)
	}
	defer mg.Close()
	if err := mg.Down(); err != nil {
		log.Fatalf("Migration error: %v", err)
	}
	log.Println("Migrations rolled back.")
}
