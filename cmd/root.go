package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/config"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/logger"
)

const (
	app = "rfpms"
)

var rootCmd = &cobra.Command{
	Use:   app,
	Short: "rfpms drafts RFPs from plain text, emails them to vendors and compares the replies",
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output (or LOG_DEBUG)")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging (or LOG_JSON)")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		log.Fatalf("binding debug flag: %v", err)
	}
	if err := viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json")); err != nil {
		log.Fatalf("binding json flag: %v", err)
	}
}

// loadConfig reads the environment and builds the logger. Flags only ever
// turn logging options on.
func loadConfig(runMode string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(runMode)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	cfg.LogJSON = cfg.LogJSON || viper.GetBool("json")
	cfg.LogDebug = cfg.LogDebug || viper.GetBool("debug")

	l, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}
	return cfg, l, nil
}
