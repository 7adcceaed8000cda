package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/api"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/tasks"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API and/or the background inbox worker",
	RunE: func(cmd *cobra.Command, _ []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		switch mode {
		case "api", "bg", "all":
		default:
			return fmt.Errorf("invalid run mode %q: expected api, bg or all", mode)
		}
		return serve(mode)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("mode", "m", "all", "run mode: 'api', 'bg' (background inbox polling) or 'all'")
}

func serve(mode string) error {
	cfg, logger, err := loadConfig(mode)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting "+app, zap.String("version", version), zap.String("mode", mode))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := newApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("initialization failed", zap.Error(err))
		return err
	}
	defer application.Close()

	var wg sync.WaitGroup
	serverErr := make(chan error, 2)
	shutdownChan := make(chan struct{}, 1)

	listen := func(name string, srv *http.Server) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info(name+" listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- fmt.Errorf("%s: %w", name, err)
				return
			}
			logger.Info(name + " stopped")
		}()
	}

	var serviceSrv *http.Server
	if cfg.ServiceApiPort != "" {
		var store api.MockMailStore
		if application.redis != nil {
			store = application.redis
		}
		serviceSrv = &http.Server{
			Addr:    ":" + cfg.ServiceApiPort,
			Handler: api.SetupServiceRouter(store, shutdownChan, logger),
		}
		listen("service api", serviceSrv)
	}

	var mainApiSrv *http.Server
	if mode == "api" || mode == "all" {
		mainApiSrv = &http.Server{
			Addr:              ":" + cfg.ApiPort,
			Handler:           api.SetupRouter(cfg, application.services, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		listen("main api", mainApiSrv)
	}

	var worker *tasks.Worker
	if mode == "bg" || mode == "all" {
		switch {
		case application.redis != nil:
			worker, err = tasks.NewWorker(application.redis, application.processor, cfg.InboxPollInterval, logger)
			if err != nil {
				return err
			}
			if err := worker.Start(); err != nil {
				return err
			}
		case cfg.InboxPollInterval > 0:
			logger.Info("polling inbox in-process", zap.Duration("interval", cfg.InboxPollInterval))
			wg.Add(1)
			go func() {
				defer wg.Done()
				tasks.RunTicker(ctx, application.processor, cfg.InboxPollInterval)
			}()
		default:
			logger.Info("INBOX_POLL_INTERVAL_SECONDS not set, inbox is only checked on request")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case <-shutdownChan:
		logger.Info("shutdown requested via service API")
	case runErr = <-serverErr:
		logger.Error("server failed, shutting down", zap.Error(runErr))
	}

	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	for _, srv := range []*http.Server{mainApiSrv, serviceSrv} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}
	if worker != nil {
		worker.Shutdown()
	}

	wg.Wait()
	logger.Info("server gracefully stopped")
	return runErr
}
