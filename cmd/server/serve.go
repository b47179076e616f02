package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"driver_rating/internal/app"
	"driver_rating/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fxApp := fx.New(
		fx.Supply(cfg),
		app.Module,
	)
	if err := fxApp.Err(); err != nil {
		return err
	}
	fxApp.Run()
	return nil
}
