// Package main is the entry point for the repocheck CLI.
//
// repocheck exposes a monorepo's developer-workflow checks (lint, type
// checking, formatting, TODO scans, commit-message validation) both as an
// MCP tool server for AI assistants and as one-shot CLI commands. Startup
// sequence:
//
// 1. Initialize logging
// 2. Load configuration (or create it via `repocheck init`)
// 3. Dispatch to the requested subcommand
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"repocheck/internal/config"
	"repocheck/internal/logging"
	"repocheck/internal/mcp"

	"github.com/spf13/cobra"
)

func main() {
	appLogger := logging.NewAppLogger()

	rootCmd := &cobra.Command{
		Use:   "repocheck",
		Short: "Developer-workflow checks for a monorepo, served over MCP",
		Long: `repocheck runs a repository's workflow checks under a bounded-concurrency
scheduler and serves them as MCP tools for AI assistants, or directly from
the command line.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCmd(appLogger))
	rootCmd.AddCommand(newServeCmd(appLogger))
	rootCmd.AddCommand(newRunCmd(appLogger))
	rootCmd.AddCommand(newListCmd(appLogger))

	if err := rootCmd.Execute(); err != nil {
		appLogger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// newInitCmd writes a default configuration pointing at the given repository
// root (default: the current directory).
func newInitCmd(logger *logging.AppLogger) *cobra.Command {
	var repoRoot string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the repocheck configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if repoRoot != "" {
				cfg.RepoRoot = repoRoot
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			path, _ := config.ConfigPath()
			logger.Info("Configuration created", "path", path, "repoRoot", cfg.RepoRoot)
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoRoot, "repo", "", "repository root the checks run against (default: current directory)")
	return cmd
}

// newServeCmd starts the MCP server on stdio.
func newServeCmd(logger *logging.AppLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long:  `Start the Model Context Protocol server for AI agent integration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(logger)
			if err != nil {
				return err
			}

			server := mcp.NewServer(cfg, logger)
			return server.Start()
		},
	}
}

// newRunCmd runs the full pre-commit suite once and prints the JSON report.
// Exits non-zero when a blocking check fails, so it can back a git hook.
func newRunCmd(logger *logging.AppLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run all checks once and print the report as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(logger)
			if err != nil {
				return err
			}

			server := mcp.NewServer(cfg, logger)
			if err := server.InitializeComponents(); err != nil {
				return err
			}

			rep := server.RunPrecommit(cmd.Context())

			payload, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to serialize report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))

			if !rep.Success {
				return fmt.Errorf("%d blocking check(s) failed", len(rep.Errors))
			}
			return nil
		},
	}
}

// newListCmd prints the registered checks.
func newListCmd(logger *logging.AppLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(logger)
			if err != nil {
				return err
			}

			server := mcp.NewServer(cfg, logger)
			if err := server.InitializeComponents(); err != nil {
				return err
			}

			for _, check := range server.Registry().All() {
				kind := "advisory"
				if check.Blocking {
					kind = "blocking"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s [%s, %s] %s\n",
					check.Name, check.Class, kind, check.Description)
			}
			return nil
		},
	}
}

// loadConfig loads the saved configuration, falling back to defaults so the
// tool stays usable inside any repository without prior setup.
func loadConfig(logger *logging.AppLogger) (*config.Config, error) {
	if config.IsFirstRun() {
		logger.Debug("No configuration found, using defaults")
		cfg := config.DefaultConfig()
		return &cfg, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}
