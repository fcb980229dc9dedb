package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/stockapp/stockpos/config"
	"github.com/stockapp/stockpos/internal/adminapi"
	"github.com/stockapp/stockpos/internal/app"
	"go.uber.org/zap"
)

var (
	confFile = flag.String("c", "stockpos.yml", "config file path")
	initDb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
)

func main() {
	flag.Parse()

	cfg := config.LoadConfig(*confFile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	server := adminapi.NewServer(application)
	go func() {
		if err := server.Start(); err != nil {
			zap.S().Errorf("admin api stopped: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	zap.S().Info("shutting down")
	server.Shutdown()
}
