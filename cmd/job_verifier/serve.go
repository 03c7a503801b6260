package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-verifier/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing POST /v1/verify, POST /v1/verify/stream and POST /v1/analyze.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (defaults to server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := appConfig.Server
	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}

	verifier, release, err := newVerifier(ctx, appConfig)
	if err != nil {
		return err
	}
	defer release()

	srv, err := server.New(verifier, cfg)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
