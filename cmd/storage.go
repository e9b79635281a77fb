package cmd

import (
	"fmt"
	"time"

	"github.com/cryptodigest/cryptodigest/internal/config"
	"github.com/cryptodigest/cryptodigest/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagPruneOlderThan string
	flagHistoryLimit   int
)

// openStore loads config and opens the publish log it points at.
func openStore() (*config.Config, *store.Store, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	db, err := store.Open(cfg.StorePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening publish log: %w", err)
	}
	return cfg, db, nil
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently published messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		pubs, err := db.Recent(flagHistoryLimit)
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		if len(pubs) == 0 {
			fmt.Println("Nothing published yet.")
			return nil
		}

		loc, err := cfg.Location()
		if err != nil {
			loc = time.Local
		}
		for _, p := range pubs {
			fmt.Println(formatPublication(p, loc))
		}
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the publish log",
	Long: `Delete publish-log entries older than the retention period and reclaim disk space.

Uses the retention value from config (default: 90d) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := parseSince(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		deleted, err := db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Println("Nothing to prune.")
		} else {
			fmt.Printf("Pruned %d publication(s) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show publish log statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		dbPath := cfg.StorePath()
		count, size, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		fmt.Printf("Publish log: %s\n", dbPath)
		fmt.Printf("Publications: %d\n", count)
		fmt.Printf("Size: %s\n", formatBytes(size))

		st, err := db.WeeklyState()
		if err != nil {
			return fmt.Errorf("reading weekly state: %w", err)
		}
		if st != nil {
			fmt.Printf("Weekly baseline: $%.0f (%s)\n", st.MarketCapUSD, st.Date.Format("02 Jan 2006"))
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "number of entries to show")
}

func formatPublication(p store.Publication, loc *time.Location) string {
	line := fmt.Sprintf("%s  %-6s  %s  msg %d", p.SentAt.In(loc).Format("2006-01-02 15:04"), p.Kind, p.ChatID, p.MessageID)
	if p.Kind == store.KindNews {
		line += fmt.Sprintf("  (%d items)", p.Items)
	}
	return line
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
