package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/veo1/online-marketplace/app/config"
	"github.com/veo1/online-marketplace/app/database"
	"github.com/veo1/online-marketplace/app/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "marketplace",
	Short: "Online marketplace product service",
	Long: `Serves create, list, update and delete operations on products owned by users.

Configuration comes from defaults, an optional YAML file (--config), a .env file
and environment variables, in increasing order of precedence.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

// bootstrap loads configuration, installs the default logger and opens the database.
func bootstrap() (*config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	dsn, err := cfg.Database.DSN()
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := database.Open(dsn, database.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, log, db, nil
}
