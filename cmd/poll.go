package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/tasks"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Check the inbox once for vendor replies and print the report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		async, _ := cmd.Flags().GetBool("async")
		return poll(cmd.Context(), async)
	},
}

func init() {
	rootCmd.AddCommand(pollCmd)

	pollCmd.Flags().BoolP("async", "a", false, "enqueue the check for the background worker instead of running it here (needs REDIS_ADDR)")
}

func poll(ctx context.Context, async bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logger, err := loadConfig("poll")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	application, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	if async {
		if application.redis == nil {
			return errors.New("--async needs REDIS_ADDR to reach the background worker")
		}
		client := tasks.NewClient(application.redis)
		defer client.Close()

		id, err := tasks.EnqueueInboxPoll(ctx, client)
		if err != nil {
			return err
		}
		logger.Info("inbox check enqueued", zap.String("task_id", id))
		return nil
	}

	report, err := application.services.Ingestion.CheckInbox(ctx)
	if err != nil {
		return fmt.Errorf("checking inbox: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
