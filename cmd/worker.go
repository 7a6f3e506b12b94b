/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devflow-qa/apiserver/config"
	"github.com/devflow-qa/apiserver/internal/db"
	"github.com/devflow-qa/apiserver/internal/mq"
	"github.com/devflow-qa/apiserver/internal/store"
	"github.com/devflow-qa/apiserver/internal/worker"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Runs the reputation worker",
	Long: `Runs the background worker that consumes vote events from the
configured message broker and applies reputation changes. Usage:

	devflow worker
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bus, err := mq.NewFromConfig(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if bus == nil {
			return errors.New("worker requires a configured mq backend")
		}
		defer bus.Close()

		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		userRepo := store.NewUserRepository(dbConn)
		w := worker.NewReputationWorker(bus, userRepo)

		fmt.Fprintln(os.Stderr, "reputation worker started")
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
