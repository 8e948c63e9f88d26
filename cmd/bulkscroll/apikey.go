package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezkam/bulkscroll/internal/auth"
	auditsql "github.com/rezkam/bulkscroll/internal/audit/sql"
	"github.com/rezkam/bulkscroll/internal/config"
	"github.com/rezkam/bulkscroll/internal/ptr"
)

func newAPIKeyCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "apikey",
		Short: "Manage admin API keys",
	}
	root.AddCommand(newAPIKeyCreateCmd())
	return root
}

func newAPIKeyCreateCmd() *cobra.Command {
	var (
		name      string
		daysValid int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a new admin API key and print it once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAPIKeyGenConfig(name, daysValid)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := auditsql.NewStore(ctx, auditDBConfig(cfg.Audit))
			if err != nil {
				return fmt.Errorf("open audit store: %w", err)
			}
			defer store.Close()

			keyStore := auditsql.NewKeyStore(store)

			var expiresAt *time.Time
			if cfg.DaysValid > 0 {
				expiresAt = ptr.To(time.Now().UTC().Add(time.Duration(cfg.DaysValid) * 24 * time.Hour))
			}

			fullKey, err := auth.CreateAPIKey(ctx, keyStore.Create,
				cfg.APIKey.APIKeyType, cfg.APIKey.APIServiceName, cfg.APIKey.APIVersion, expiresAt)
			if err != nil {
				return fmt.Errorf("create api key: %w", err)
			}

			fmt.Printf("name:    %s\n", name)
			fmt.Printf("api_key: %s\n", fullKey)
			if expiresAt != nil {
				fmt.Printf("expires: %s\n", expiresAt.Format(time.RFC3339))
			} else {
				fmt.Println("expires: never")
			}
			fmt.Println("\nthis key is shown once; store it securely")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "human-readable label for this key (required)")
	cmd.Flags().IntVar(&daysValid, "days-valid", 0, "days until expiry, 0 = never expires")

	return cmd
}
