package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codefionn/werkbank/internal/config"
	"github.com/codefionn/werkbank/internal/launcher"
	"github.com/codefionn/werkbank/internal/logger"
	"github.com/codefionn/werkbank/internal/server"
	"github.com/codefionn/werkbank/internal/store"
	"github.com/codefionn/werkbank/internal/update"
	"github.com/codefionn/werkbank/internal/websearch"
	"github.com/codefionn/werkbank/internal/workspace"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "werkbank",
	Short: "Local backend for the werkbank coding workbench",
	Long: `werkbank is the local backend behind the werkbank GUI shell.

It serves workspace-scoped file access, recursive file search, web
search, editor and shell launching, and conversation persistence over a
token-protected loopback HTTP API.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.GetConfigPath()
		}

		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); err != nil {
			// Logging to file is best effort; stderr still works.
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the backend server",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()

		checker := update.NewChecker(
			cfg.UpdateEndpoint, Version,
			time.Duration(cfg.UpdateIntervalHours)*time.Hour, st,
		)
		search := websearch.NewDuckDuckGoProvider(cfg.SearchEndpoint)

		srv, err := server.NewServer(cfg, st, search, checker)
		if err != nil {
			return err
		}
		if err := srv.Start(); err != nil {
			return err
		}

		fmt.Println(srv.URL())
		logger.Info("werkbank %s ready", Version)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		return srv.Stop()
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <workspace> <query>",
	Short: "Search files in a workspace",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		results := workspace.Search(args[0], args[1])
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Open a file in the configured editor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result := launcher.OpenInEditor(args[0], cfg.Editor)
		if !result.Success {
			return fmt.Errorf("%s", result.Error)
		}
		fmt.Printf("opened with %s\n", result.Editor)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a newer release",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()

		checker := update.NewChecker(
			cfg.UpdateEndpoint, Version,
			time.Duration(cfg.UpdateIntervalHours)*time.Hour, st,
		)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result := checker.Check(ctx)
		if !result.Success {
			return fmt.Errorf("update check failed: %s", result.Error)
		}
		if result.UpdateAvailable {
			fmt.Printf("update available: %s (running %s)\n", result.LatestVersion, result.CurrentVersion)
		} else {
			fmt.Printf("up to date (%s)\n", result.CurrentVersion)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (JSON)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(updateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
