package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"modelmind/internal/server"
	"modelmind/internal/service"

	"github.com/spf13/cobra"
)

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the comparison dashboard API over HTTP",
		Long: `Start an HTTP server exposing the available providers, streaming
comparisons as server-sent events and the assist tools.`,
		RunE: runServe,
	}

	serveAddress string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := configMgr.GetServerConfig()
	if serveAddress != "" {
		cfg.Address = serveAddress
	}

	svc, err := service.NewComparisonService(configMgr.GetCompareConfig(), service.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create comparison service: %w", err)
	}

	asst, err := newAssistant()
	if err != nil {
		logger.Warn("assist endpoints disabled", "error", err)
	}

	srv := server.NewHTTPServer(server.HTTPServerConfig{
		Address:        cfg.Address,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	}, svc, asst)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Printf("🚀 Serving %d provider(s) on %s\n", len(svc.GetProviders()), cfg.Address)

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
