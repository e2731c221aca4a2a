package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rideboard/internal/config"
	"rideboard/internal/logger"
	"rideboard/internal/service"
)

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Remove rides whose departure has passed",
	Long: `Remove rides whose departure has passed, following DELETE_POLICY.

Listing rides already sweeps on every request; this command lets a
scheduler keep the table small on quiet boards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExpire(cmd)
	},
}

func init() {
	rootCmd.AddCommand(expireCmd)
}

func runExpire(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.New("rideboard-cli", cfg.LogLevel)

	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repos.close()

	publisher := openPublisher(cfg, log)
	defer publisher.Close()

	rides := service.NewRideService(repos.rides, publisher, log, service.RideOptions{SoftDelete: cfg.SoftDelete()})
	n, err := rides.ExpireOlderThan(ctx, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "expired %d rides\n", n)
	return nil
}
