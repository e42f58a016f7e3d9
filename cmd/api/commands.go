package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/database"
	"backoffice/internal/middleware"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "api",
		Short:         "Proposal back-office API server and admin tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "configs/.env", "Path to the .env file")

	rules := &cobra.Command{
		Use:   "rules",
		Short: "Manage the approval rule catalog",
	}
	rules.AddCommand(newRulesImportCmd(opts))

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		rules,
		newTokenCmd(opts),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts.envFile)
			if err != nil {
				return err
			}
			defer app.Close()

			if migrate {
				if err := database.Migrate(app.db); err != nil {
					return err
				}
			}
			return app.Serve(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Run schema migration before serving")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts.envFile)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := database.Migrate(app.db); err != nil {
				return err
			}
			app.log.Info().Msg("schema migrated")
			return nil
		},
	}
}

func newRulesImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import an approval rule catalog from YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			app, err := newApp(opts.envFile)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.ruleService.ImportRules(cmd.Context(), data, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rules, deactivated %d\n", result.Created, result.Deactivated)
			return nil
		},
	}
}

// newTokenCmd mints a bearer token for local testing. Production tokens come from
// the identity provider.
func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		subject  string
		role     string
		jobLevel int
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return err
			}
			if cfg.Service.Environment == "production" {
				return errors.New("token issuing is disabled in production")
			}

			userID := uuid.New()
			if subject != "" {
				if userID, err = uuid.Parse(subject); err != nil {
					return fmt.Errorf("invalid --sub: %w", err)
				}
			}

			auth := middleware.NewAuth([]byte(cfg.Auth.JWTSecret))
			token, err := auth.SignToken(middleware.Identity{UserID: userID, Role: role, JobLevel: jobLevel}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "User id (random when empty)")
	cmd.Flags().StringVar(&role, "role", middleware.RoleSeller, "Role claim")
	cmd.Flags().IntVar(&jobLevel, "job-level", 0, "Approval hierarchy level")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
