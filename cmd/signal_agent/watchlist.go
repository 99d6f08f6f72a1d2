package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/signal-now/signal-agent/internal/db"
	"github.com/signal-now/signal-agent/internal/types"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage watch targets",
	Long:  `List, add, remove, and pause watch targets directly in the database.`,
}

var (
	watchlistDBURL  string
	watchlistUserID string
)

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watch targets",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withWatchlistDB(func(ctx context.Context, database *db.DB, userID uuid.UUID) error {
			targets, err := database.ListWatchTargets(ctx, userID, false)
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				fmt.Println("Watchlist is empty")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tVALUE\tACTIVE")
			for _, t := range targets {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", t.ID, t.TargetType, t.TargetValue, t.Active)
			}
			return w.Flush()
		})
	},
}

var watchlistAddType string

var watchlistAddCmd = &cobra.Command{
	Use:   "add <value>",
	Short: "Add a watch target",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		switch types.TargetType(watchlistAddType) {
		case types.TargetUsername, types.TargetOrganization, types.TargetRepository:
		default:
			return fmt.Errorf("invalid --type %q (want username, org, or repo)", watchlistAddType)
		}
		return withWatchlistDB(func(ctx context.Context, database *db.DB, userID uuid.UUID) error {
			target, err := database.AddWatchTarget(ctx, userID, watchlistAddType, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Added %s %q (%s)\n", target.TargetType, target.TargetValue, target.ID)
			return nil
		})
	},
}

var watchlistRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a watch target by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		targetID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid target id: %w", err)
		}
		return withWatchlistDB(func(ctx context.Context, database *db.DB, userID uuid.UUID) error {
			if err := database.RemoveWatchTarget(ctx, userID, targetID); err != nil {
				return err
			}
			fmt.Println("Removed")
			return nil
		})
	},
}

var watchlistPause bool

var watchlistToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Pause or resume a watch target",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		targetID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid target id: %w", err)
		}
		return withWatchlistDB(func(ctx context.Context, database *db.DB, userID uuid.UUID) error {
			if err := database.SetWatchTargetActive(ctx, userID, targetID, !watchlistPause); err != nil {
				return err
			}
			if watchlistPause {
				fmt.Println("Paused")
			} else {
				fmt.Println("Resumed")
			}
			return nil
		})
	},
}

func init() {
	watchlistCmd.PersistentFlags().StringVar(&watchlistDBURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	watchlistCmd.PersistentFlags().StringVar(&watchlistUserID, "user-id", "", "User UUID owning the watchlist (required)")

	watchlistAddCmd.Flags().StringVar(&watchlistAddType, "type", "username", "Target type: username, org, or repo")
	watchlistToggleCmd.Flags().BoolVar(&watchlistPause, "pause", false, "Pause instead of resume")

	watchlistCmd.AddCommand(watchlistListCmd, watchlistAddCmd, watchlistRemoveCmd, watchlistToggleCmd)
	rootCmd.AddCommand(watchlistCmd)
}

// withWatchlistDB handles the shared connect-and-identify boilerplate for
// the watchlist subcommands.
func withWatchlistDB(fn func(context.Context, *db.DB, uuid.UUID) error) error {
	dsn := watchlistDBURL
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return fmt.Errorf("a database URL is required (--db-url or DATABASE_URL)")
	}
	if watchlistUserID == "" {
		return fmt.Errorf("--user-id is required")
	}
	userID, err := uuid.Parse(watchlistUserID)
	if err != nil {
		return fmt.Errorf("invalid --user-id: %w", err)
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer database.Close()

	return fn(ctx, database, userID)
}
