package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"taxi-fare-model/api"
	"taxi-fare-model/cache"
	"taxi-fare-model/config"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	var loader api.ModelLoader = api.FileLoader{Path: cfg.Model.Path}
	if cfg.Server.CacheModel {
		cached, err := api.NewCachedLoader(cfg.Model.Path)
		if err != nil {
			log.Fatal(err)
		}
		defer cached.Close()
		loader = cached

		if cfg.Redis.Enabled {
			rdb, err := cache.NewClient(ctx, cfg.Redis)
			if err != nil {
				log.Fatal(err)
			}
			defer rdb.Close()
			err = cache.SubscribeModelSaved(ctx, rdb, func(ev cache.ModelSaved) {
				log.Printf("Model saved at %s, dropping cached model", ev.Path)
				cached.Invalidate()
			})
			if err != nil {
				log.Fatal(err)
			}
		}
	}

	h, err := api.NewHandler(loader, cfg.Server.TimeZone)
	if err != nil {
		log.Fatal(err)
	}
	router := api.RegisterRoutes(h)

	log.Printf("Server started on %s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, router))
}
