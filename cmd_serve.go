package main

import (
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielhkuo/ballotcheck/cache"
	"github.com/danielhkuo/ballotcheck/cliparse"
	"github.com/danielhkuo/ballotcheck/db"
	"github.com/danielhkuo/ballotcheck/logging"
	"github.com/danielhkuo/ballotcheck/middleware"
	"github.com/danielhkuo/ballotcheck/reference"
	"github.com/danielhkuo/ballotcheck/router"
	"github.com/danielhkuo/ballotcheck/validation"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the validation API server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cliparse.RegisterFlags(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Parse configuration
	cfg, err := cliparse.FromFlags(cmd.Flags())
	if err != nil {
		return usageError("%v", err)
	}

	flush, err := logging.Setup(cfg.LogLevel, consoleLogs)
	if err != nil {
		return usageError("%v", err)
	}
	defer flush()
	log := zap.S()

	ref, err := reference.Load(cfg.ReferencePath)
	if err != nil {
		return usageError("%v", err)
	}
	v, err := validation.New(ref)
	if err != nil {
		return usageError("%s: %v", cfg.ReferencePath, err)
	}
	log.Infow("Reference tables loaded", "provinces", len(ref.Provinces), "parties", len(ref.Parties))

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		log.Errorw("database connection failed", "error", err)
		return err
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		log.Errorw("database ping failed", "error", err)
		return err
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		log.Errorw("schema creation failed", "error", err)
		return err
	}
	log.Infow("Database schema ready", "type", cfg.DatabaseType)

	reports, err := cache.New(cfg.RedisURL, cache.DefaultTTL)
	if err != nil {
		return usageError("%v", err)
	}
	defer reports.Close()
	if err := reports.Ping(cmd.Context()); err != nil {
		// Serving without the cache only costs recomputation
		log.Warnw("report cache unavailable", "error", err)
	} else if reports.Enabled() {
		log.Infow("Report cache ready")
	}

	// Create router
	mux, err := router.NewRouter(dbConn, cfg, v, ref, reports)
	if err != nil {
		return err
	}

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	log.Infow("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Errorw("Server closed", "error", err)
		return err
	}
	log.Infow("Server closed")
	return nil
}
