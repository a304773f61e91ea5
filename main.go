package main

import (
	"github.com/wfunc/geoguess/config"
	"github.com/wfunc/geoguess/logger"
	"github.com/wfunc/geoguess/monitor"
	"github.com/wfunc/geoguess/persistence"
	"github.com/wfunc/geoguess/room"
	"github.com/wfunc/geoguess/server"
	"github.com/wfunc/geoguess/services"
	"github.com/wfunc/geoguess/spawn"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize monitoring
	mon := monitor.NewMonitor("geoguess")
	mon.StartServer(cfg.Server.MonitorAddress)

	// Round history is optional; the game runs fully in memory without it.
	var observer room.RoundObserver
	if cfg.Database.Enabled {
		store, err := newRoundStore(cfg)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		logger.Log.Info("Database connection successful.")

		spawns, err := spawn.Load(cfg.Spawn.File)
		if err != nil {
			logger.Log.Warnf("Failed to load spawn list from %s, round records will be unscored: %v", cfg.Spawn.File, err)
			spawns = &spawn.List{}
		}

		history := services.NewRoundHistoryService(store, spawns)
		observer = history.HandleRoundEnded
	}

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, cfg.Server.RPCAddress, mon, observer)

	// Start Server
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

func newRoundStore(cfg *config.Config) (persistence.RoundStore, error) {
	pg := cfg.Database.Postgres
	if cfg.Database.Driver == "sql" {
		return persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	}
	return persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
}
