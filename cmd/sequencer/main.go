// Copyright 2025 Certen Protocol
//
// Entry point. Replaces the teacher's flag-based single-binary main with a
// cobra command tree (init/start), grounded on the cobra/viper toolchain the
// teacher's go.mod already carries indirect and config.Load/Write were
// built against.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/radiusxyz/sequencer/pkg/appstate"
	"github.com/radiusxyz/sequencer/pkg/config"
	"github.com/radiusxyz/sequencer/pkg/logging"
	"github.com/radiusxyz/sequencer/pkg/rpcmethods"
	"github.com/radiusxyz/sequencer/pkg/rpcserver"
)

// shutdownTimeout bounds how long the three RPC listeners are given to
// drain in-flight requests on SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

func main() {
	root := &cobra.Command{
		Use:   "sequencer",
		Short: "rollup sequencer node",
	}
	root.AddCommand(newInitCmd())
	root.AddCommand(newStartCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newInitCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("init: %s already exists", path)
			}
			return config.Write(path, config.Default())
		},
	}
	cmd.Flags().StringVar(&path, "path", "./config.toml", "path to write the configuration file")
	return cmd
}

func newStartCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start the sequencer node",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(path, cmd.Flags())
		},
	}
	cmd.Flags().StringVar(&path, "path", "./config.toml", "path to the configuration file")
	cmd.Flags().String("signing_key", "", "override signing_key")
	cmd.Flags().String("database_path", "", "override database_path")
	cmd.Flags().Int("cluster_port", 0, "override cluster_port")
	cmd.Flags().Int("external_port", 0, "override external_port")
	return cmd
}

func run(path string, fs *pflag.FlagSet) error {
	cfg, err := config.Load(path, fs)
	if err != nil {
		return err
	}

	if cfg.LogPath != "" {
		f, err := logging.OpenLogFile(cfg.LogPath)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	}
	logger := logging.New("main")

	app, err := appstate.New(cfg)
	if err != nil {
		return fmt.Errorf("build app state: %w", err)
	}
	defer app.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app.StartReconcilers(ctx)

	internalSrv := rpcserver.New("internal-rpc", app)
	internalSrv.RegisterAll(rpcmethods.InternalMethods())

	clusterSrv := rpcserver.New("cluster-rpc", app)
	clusterSrv.RegisterAll(rpcmethods.ClusterMethods())

	externalSrv := rpcserver.New("external-rpc", app)
	externalSrv.RegisterAll(rpcmethods.ExternalMethods())

	errCh := make(chan error, 3)
	go func() { errCh <- internalSrv.ListenAndServe(cfg.InternalRPCURL) }()
	go func() { errCh <- clusterSrv.ListenAndServe(fmt.Sprintf(":%d", cfg.ClusterPort)) }()
	go func() { errCh <- externalSrv.ListenAndServe(fmt.Sprintf(":%d", cfg.ExternalPort)) }()

	select {
	case <-ctx.Done():
		logger.Printf("shutting down")
	case err := <-errCh:
		logger.Printf("server failed: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	_ = internalSrv.Shutdown(shutdownCtx)
	_ = clusterSrv.Shutdown(shutdownCtx)
	_ = externalSrv.Shutdown(shutdownCtx)

	return nil
}
