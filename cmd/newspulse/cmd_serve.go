package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	addr := cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	return a.Serve(ctx, addr)
}
