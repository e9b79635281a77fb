package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cryptodigest/cryptodigest/internal/update"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig       string
	flagVerbose      bool
	flagDryRun       bool
	flagVersionCheck bool
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

var rootCmd = &cobra.Command{
	Use:   "cryptodigest",
	Short: "Crypto headline digests for Telegram",
	Long: `cryptodigest gathers crypto news headlines from RSS feeds, ranks and annotates them,
and publishes a digest to a Telegram chat. Each invocation is one run; schedule it with cron.

Without a subcommand it publishes the news digest.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runNews,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "print the message instead of sending it")

	versionCmd.Flags().BoolVar(&flagVersionCheck, "check", false, "check for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newsCmd, dailyCmd, weeklyCmd, pollCmd)
	rootCmd.AddCommand(historyCmd, pruneCmd, statsCmd)
}

// setup loads .env credentials and configures logging for every command.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cryptodigest %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagVersionCheck {
			return
		}
		if res := update.Check(cmd.Context(), nil, update.DefaultReleasesURL, version); res != nil {
			fmt.Printf("A newer version is available: %s\n", res.LatestVersion)
			if res.URL != "" {
				fmt.Println(res.URL)
			}
		} else {
			fmt.Println("You are up to date.")
		}
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
