package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/veo1/online-marketplace/app/cache"
	"github.com/veo1/online-marketplace/app/database"
	"github.com/veo1/online-marketplace/app/products"
	"github.com/veo1/online-marketplace/app/server"
	"github.com/veo1/online-marketplace/app/users"
	"github.com/veo1/online-marketplace/models"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "Migrate the schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer database.Close(db)

	log.Info("starting marketplace server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
		"legacy_routes", cfg.Server.LegacyRoutes,
	)

	if autoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	productsRepo := models.NewProductsRepository(db)
	usersRepo := models.NewUsersRepository(db)

	var listCache products.ListCache
	if cfg.Cache.Enabled() {
		lists, err := cache.NewProductLists(cfg.Cache.RedisAddr, cfg.Cache.TTLDuration())
		if err != nil {
			return err
		}
		defer lists.Close()
		listCache = lists
		log.Info("product list cache enabled", "redis_addr", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTLDuration())
	}

	productService := products.NewService(productsRepo, usersRepo, listCache, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	writeTimeout := time.Duration(cfg.Server.WriteTimeout) * time.Second
	router := server.NewRouter(server.Deps{
		Products:     products.NewProductHandler(productService, log),
		Users:        users.NewUserHandler(usersRepo, log),
		Logger:       log,
		Registry:     registry,
		LegacyRoutes: cfg.Server.LegacyRoutes,
		WriteTimeout: writeTimeout,
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
