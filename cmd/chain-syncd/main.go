package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/malawadd/qisati/internal/chain"
	"github.com/malawadd/qisati/internal/chapter"
	"github.com/malawadd/qisati/internal/mint"
	"github.com/malawadd/qisati/internal/series"
	"github.com/malawadd/qisati/pkg/database"
	"github.com/malawadd/qisati/pkg/utils"
)

// chain-syncd runs the supply syncer standalone so the API server can be
// deployed with QISATI_SYNC_INTERVAL set high and this worker doing the
// polling.
func main() {
	utils.LoadEnv()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	srvCfg := utils.LoadServerConfig()

	syncer := &chain.Syncer{
		Client:    chain.NewMockClient(time.Now().UnixNano()),
		Chapters:  chapter.NewRepo(db),
		Series:    series.NewRepo(db),
		Snapshots: chain.NewSnapshotRepo(db),
		Pending:   mint.NewTxRepo(db),
		Interval:  srvCfg.SyncInterval,
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("shutdown signal received: %s", sig)
		cancel()
	}()

	log.Printf("chain syncer running every %s against %s", srvCfg.SyncInterval, dbCfg.Path)
	syncer.Run(ctx)
	log.Println("stopped")
}
