package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/gestoria-app/catalog-api/internal/catalog"
	"github.com/gestoria-app/catalog-api/internal/config"
	"github.com/gestoria-app/catalog-api/internal/remote"
	"github.com/gestoria-app/catalog-api/internal/router"
	"github.com/gestoria-app/catalog-api/internal/ws"
)

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to create connection pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to reach database: %v", err)
	}

	authority := remote.NewPostgres(pool)

	// Composition root owns the catalog mirror; everything else gets it by
	// reference.
	store := catalog.NewEntityStore()
	sync := catalog.NewOptimisticSync(store, authority)
	projector := catalog.NewViewProjector(store)
	engine := catalog.NewEngine(store, authority, sync)

	hub := ws.NewHub()
	go hub.Run()
	engine.SetNotifier(hub.BroadcastCatalogEvent)

	if err := sync.Reload(ctx); err != nil {
		log.Fatalf("Initial catalog load failed: %v", err)
	}
	log.Printf("Catalog loaded: %d categories, %d services, %d subcategories, %d items",
		len(store.Categories()), len(store.Services()), len(store.Subcategories()), len(store.Items()))

	r := router.New(cfg, authority, store, projector, engine, sync, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
