package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the store schema",
	Long: `Apply the store schema for the configured driver. Migrations are
idempotent; running against an up-to-date store is a no-op.

Example:
  CRE_STORE_DRIVER=postgres CRE_STORE_DATABASE_URL=postgres://... migrate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate")
		}
		if err := st.Ping(ctx); err != nil {
			return eris.Wrap(err, "migrate: ping")
		}

		zap.L().Info("store migrated", zap.String("driver", cfg.Store.Driver))
		fmt.Println("Store migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
