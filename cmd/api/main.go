package main

import (
	"context"
	"log"

	"docqa-backend/internal/bootstrap"
	"docqa-backend/internal/shared/config"
	"docqa-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup error: %v", err)
	}
	defer app.Close()

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
