package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thev1ndu/xp/auth"
	"github.com/thev1ndu/xp/config"
	"github.com/thev1ndu/xp/logging"
	"github.com/thev1ndu/xp/provider"
	"github.com/thev1ndu/xp/wire"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "xpshop",
		Short: "XP Shop - spend in-game money on skill XP over RCON",
		Long: `XP Shop sells skill XP to Minecraft players for in-game currency.

Purchases are carried out over RCON: the balance is checked, the money is
withdrawn, and the XP is granted. A failed grant is refunded once.

Configuration is read from a YAML file (--config) and from environment
variables such as RCON_PASSWORD and SITE_PASSWORD.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config YAML (optional)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web shop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configFile)
		},
	}

	rconCmd := &cobra.Command{
		Use:   "rcon <command...>",
		Short: "Run a single RCON command against the configured server",
		Long: `Run a single raw console command with the configured RCON connection
and print the server's response. Useful for manual reconciliation, e.g.

  xpshop rcon eco give steve 10`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRCON(cmd, configFile, strings.Join(args, " "))
		},
	}

	hashCmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for site.password_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	rootCmd.AddCommand(serveCmd, rconCmd, hashCmd)
	return rootCmd
}

func runServe(configFile string) error {
	// 1. Load config & logger
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := logging.New(cfg.Logging)

	// 2. Assemble dependencies and routes
	app, cleanup, err := wire.BuildApp(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return err
	}

	// 3. Cleanup & run
	app.OnShutdown(cleanup)

	logger.Info().Int("port", cfg.Server.Port).Msg("Starting XP shop")
	return app.Run()
}

func runRCON(cmd *cobra.Command, configFile, command string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if cfg.RCON.Password == "" {
		return fmt.Errorf("rcon.password is required (RCON_PASSWORD)")
	}

	executor := provider.NewRCONProvider(cfg.RCON, logging.New(cfg.Logging))
	response, err := executor.Execute(context.Background(), command)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), response)
	return nil
}
