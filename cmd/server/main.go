package main

import (
	"fmt"
	"log"

	"lendit/internal/config"
	"lendit/internal/database"
	"lendit/internal/logger"
	"lendit/internal/server"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.AppMode); err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Sync()

	database.Init(cfg.DBDSN, cfg.AdminEmail, cfg.AdminPassword)

	r := server.NewRouter(cfg)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logger.Log.Infow("starting server", "addr", addr)
	if err := r.Run(addr); err != nil {
		logger.Log.Fatalw("server error", "error", err)
	}
}
