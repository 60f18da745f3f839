package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/malawadd/qisati/internal/auth"
	"github.com/malawadd/qisati/internal/chain"
	"github.com/malawadd/qisati/internal/chapter"
	"github.com/malawadd/qisati/internal/comments"
	"github.com/malawadd/qisati/internal/live"
	"github.com/malawadd/qisati/internal/mint"
	"github.com/malawadd/qisati/internal/profile"
	"github.com/malawadd/qisati/internal/series"
	"github.com/malawadd/qisati/internal/stats"
	"github.com/malawadd/qisati/internal/upload"
	"github.com/malawadd/qisati/internal/voice"
	"github.com/malawadd/qisati/pkg/database"
	"github.com/malawadd/qisati/pkg/utils"
)

func main() {
	utils.LoadEnv()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	srvCfg := utils.LoadServerConfig()

	router := gin.Default()

	// Avoid the "trusted all proxies" warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Live supply events over websocket
	hub := live.NewHub()
	router.GET("/ws", live.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": hub.Stats().WSClients,
		})
	})

	router.GET("/debug", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"db":         dbCfg.Path,
			"ws_clients": hub.Stats().WSClients,
		})
	})

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.ChallengeTTL,
	}
	authRepo := auth.NewRepo(db)
	verifier := auth.MockVerifier{}
	authHandler := auth.NewHandler(authRepo, tokenSvc, verifier, authCfg)
	authHandler.RegisterRoutes(router.Group("/auth"))

	sessions := auth.SessionMiddleware(authRepo)

	// Repos
	seriesRepo := series.NewRepo(db)
	chapterRepo := chapter.NewRepo(db)
	commentRepo := comments.NewRepo(db)
	txRepo := mint.NewTxRepo(db)
	voiceRepo := voice.NewRepo(db)
	profileRepo := profile.NewRepo(db)
	statsRepo := stats.NewRepo(db)

	// Uploads served from local disk
	store := upload.NewLocalStore(srvCfg.UploadDir)
	router.Static("/uploads", srvCfg.UploadDir)

	// Chain seam stays mocked until a real RPC client lands
	chainClient := chain.NewMockClient(time.Now().UnixNano())

	ledger := mint.NewLedger(chapterRepo, seriesRepo, txRepo, chainClient, hub)
	generator := voice.NewGenerator(voiceRepo, chapterRepo, seriesRepo, voice.MockSynthesizer{}, store)

	series.NewHandler(seriesRepo, authRepo).RegisterRoutes(router, sessions)
	chapter.NewHandler(chapterRepo, seriesRepo).RegisterRoutes(router, sessions)
	comments.NewHandler(commentRepo, chapterRepo).RegisterRoutes(router, sessions)
	mint.NewHandler(ledger).RegisterRoutes(router, sessions)
	voice.NewHandler(voiceRepo, generator).RegisterRoutes(router, sessions)
	profile.NewHandler(profileRepo, authRepo, seriesRepo).RegisterRoutes(router, sessions)
	stats.NewHandler(statsRepo, seriesRepo, chapterRepo).RegisterRoutes(router, sessions)
	upload.NewHandler(store).RegisterRoutes(router, sessions)

	// In-process supply syncer; run chain-syncd instead for a dedicated worker
	syncer := &chain.Syncer{
		Client:    chainClient,
		Chapters:  chapterRepo,
		Series:    seriesRepo,
		Snapshots: chain.NewSnapshotRepo(db),
		Pending:   txRepo,
		Interval:  srvCfg.SyncInterval,
	}

	httpSrv := &http.Server{
		Addr:    srvCfg.Addr,
		Handler: router,
	}

	runCtx, stopSync := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		syncer.Run(runCtx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP API server listening on %s", srvCfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down")
	stopSync()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("stopped")
}
