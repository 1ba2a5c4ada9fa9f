package main

import (
	"context"
	"crypto/tls"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/widetable/widetable-db/internal/app"
	"github.com/widetable/widetable-db/internal/compaction"
	"github.com/widetable/widetable-db/internal/config"
	"github.com/widetable/widetable-db/internal/health"
	"github.com/widetable/widetable-db/internal/protocol"
	"github.com/widetable/widetable-db/internal/server"
	"github.com/widetable/widetable-db/internal/store"
	"github.com/widetable/widetable-db/internal/wal"
	"github.com/widetable/widetable-db/internal/widetable"
)

const (
	dataDir           = "data"
	defaultServerCert = "server.crt"
	defaultServerKey  = "server.key"
)

func main() {
	application, err := initialize()
	if err != nil {
		panic(err)
	}

	if err = application.Run(context.Background()); err != nil {
		panic(err)
	}
}

// storeDependency ties the store lifecycle to the WAL: segments are opened
// and the log replayed on start, and the log is reset once the final flush
// has made it durable.
type storeDependency struct {
	*store.Store
	wal *wal.Manager
}

func (d *storeDependency) Start() error {
	if err := d.Store.Start(); err != nil {
		return err
	}
	return d.wal.Replay(d.Store)
}

func (d *storeDependency) Stop() error {
	if err := d.Store.Stop(); err != nil {
		return err
	}
	if err := d.wal.Reset(); err != nil {
		return err
	}
	return d.wal.Close()
}

func initialize() (*app.App, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	homeDir, err := widetable.GetWidetableDir()
	if err != nil {
		return nil, err
	}

	var deps []app.Dependency

	walManager, err := wal.New(&wal.Config{
		Path: homeDir,
	})
	if err != nil {
		return nil, err
	}

	st, err := store.New(&store.Config{
		FamilyName:          cfg.FamilyName,
		Dir:                 filepath.Join(homeDir, dataDir),
		RowCacheSize:        cfg.RowCacheSize,
		FlushThresholdBytes: cfg.FlushThresholdBytes,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, &storeDependency{Store: st, wal: walManager})

	compactor, err := compaction.New(&compaction.Config{
		Store:          st,
		GCGraceSeconds: cfg.GCGraceSeconds,
		Interval:       time.Duration(cfg.CompactionIntervalSeconds) * time.Second,
		MinSegments:    cfg.MinCompactionSegments,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, compactor)

	protocolManager, err := protocol.New(&protocol.Config{
		Store:          st,
		WAL:            walManager,
		GCGraceSeconds: cfg.GCGraceSeconds,
	})
	if err != nil {
		return nil, err
	}

	connHandler, err := server.NewHandler(&server.HandlerConfig{
		Operations: protocolManager,
	})
	if err != nil {
		return nil, err
	}

	serverCfg := &server.Config{
		Port:           cfg.ServerPort,
		Handler:        connHandler,
		MaxConnections: cfg.MaxConnections,
		EnableTLS:      cfg.EnableTLS,
	}
	if cfg.EnableTLS {
		cert, certErr := tls.LoadX509KeyPair(
			filepath.Join(homeDir, defaultServerCert),
			filepath.Join(homeDir, defaultServerKey),
		)
		if certErr != nil {
			return nil, certErr
		}
		serverCfg.Certificate = &cert
	}

	srv, err := server.New(serverCfg)
	if err != nil {
		return nil, err
	}
	deps = append(deps, srv)

	healthServer, err := health.New(&health.Config{
		Address: cfg.HealthAddress,
		Port:    cfg.HealthPort,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, healthServer)

	return app.CreateApp(&app.Config{
		ServiceName: "Widetable DB",
		StopTimeout: 5 * time.Second,
	}, deps...)
}
