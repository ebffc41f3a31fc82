// Command admin is the Matchpoint operations CLI.
//
// Usage:
//
//	matchpoint-admin approve --id <application-id>
//	matchpoint-admin promote --id <application-id> --role coach
//	matchpoint-admin applications --status pending
//	matchpoint-admin ladder renumber
//	matchpoint-admin cleanup --join-age 72h
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matchpointhq/matchpoint-api/internal/club"
	"github.com/matchpointhq/matchpoint-api/internal/config"
	"github.com/matchpointhq/matchpoint-api/internal/db"
	"github.com/matchpointhq/matchpoint-api/internal/identity"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "matchpoint-admin",
		Short: "Matchpoint operations CLI",
	}

	root.AddCommand(approveCmd())
	root.AddCommand(promoteCmd())
	root.AddCommand(applicationsCmd())
	root.AddCommand(ladderCmd())
	root.AddCommand(cleanupCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// approve command
// --------------------------------------------------------------------------

func approveCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Approve a membership application and confirm the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			return run(func(ctx context.Context, cfg *config.Config, store *club.Store) error {
				ident := identity.New(cfg.IdentityURL, cfg.IdentityServiceKey)
				if err := ident.ConfirmEmail(ctx, id); err != nil {
					return fmt.Errorf("confirm account: %w", err)
				}
				app, err := store.SetApplicationStatus(ctx, id, config.StatusMember)
				if err != nil {
					return fmt.Errorf("update application: %w", err)
				}
				logger.Info("Application approved", "id", app.ID, "email", app.Email, "status", app.Status)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Application ID to approve")
	return cmd
}

// --------------------------------------------------------------------------
// promote command
// --------------------------------------------------------------------------

func promoteCmd() *cobra.Command {
	var id, role string
	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Change a member's role",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			if role != config.RolePlayer && role != config.RoleCoach && role != config.RoleAdmin {
				return fmt.Errorf("--role must be one of %s, %s, %s", config.RolePlayer, config.RoleCoach, config.RoleAdmin)
			}
			return run(func(ctx context.Context, cfg *config.Config, store *club.Store) error {
				if err := store.SetApplicationRole(ctx, id, role); err != nil {
					return fmt.Errorf("update role: %w", err)
				}
				logger.Info("Role updated", "id", id, "role", role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Application ID")
	cmd.Flags().StringVar(&role, "role", config.RoleCoach, "New role (player, coach, admin)")
	return cmd
}

// --------------------------------------------------------------------------
// applications command
// --------------------------------------------------------------------------

func applicationsCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "applications",
		Short: "List applications by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, store *club.Store) error {
				apps, err := store.ApplicationsByStatus(ctx, status)
				if err != nil {
					return fmt.Errorf("list applications: %w", err)
				}
				for _, a := range apps {
					fmt.Printf("%s\t%s\t%s\t%s\n", a.ID, a.Email, a.FullName, a.Status)
				}
				logger.Info("Applications listed", "status", status, "count", len(apps))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", config.StatusPending, "Application status filter")
	return cmd
}

// --------------------------------------------------------------------------
// ladder command
// --------------------------------------------------------------------------

func ladderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ladder",
		Short: "Ladder maintenance",
	}
	cmd.AddCommand(ladderRenumberCmd())
	return cmd
}

func ladderRenumberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "renumber",
		Short: "Rewrite ladder ranks as a dense 1..N sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, store *club.Store) error {
				start := time.Now()
				updated, err := store.RenumberLadder(ctx)
				if err != nil {
					return fmt.Errorf("renumber ladder: %w", err)
				}
				logger.Info("Ladder renumbered",
					"teams_updated", updated,
					"duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
	return cmd
}

// --------------------------------------------------------------------------
// cleanup command
// --------------------------------------------------------------------------

func cleanupCmd() *cobra.Command {
	var joinAge time.Duration
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Expire stale pending joins and purge orphan join records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, store *club.Store) error {
				expired, err := store.ExpireStaleJoins(ctx, joinAge)
				if err != nil {
					return fmt.Errorf("expire stale joins: %w", err)
				}
				purged, err := store.PurgeOrphanJoins(ctx)
				if err != nil {
					return fmt.Errorf("purge orphan joins: %w", err)
				}
				logger.Info("Cleanup finished", "expired", expired, "purged", purged)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&joinAge, "join-age", 72*time.Hour, "Age after which pending joins expire")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// run handles config loading, DB connection, and context cancellation.
func run(fn func(ctx context.Context, cfg *config.Config, store *club.Store) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, club.NewStore(pool.Pool))
}
