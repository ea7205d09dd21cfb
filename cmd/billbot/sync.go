package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bunge-labs/billbot/config"
	"github.com/bunge-labs/billbot/internal/kb"
	"github.com/bunge-labs/billbot/internal/store"
)

func syncCMD() *cobra.Command {
	var cfgPath string
	var sync = &cobra.Command{
		Use:   "sync",
		Short: "Run one knowledge base sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			ctx := context.Background()

			dsn, err := cfg.Storage.Postgres.DSN()
			if err != nil {
				return err
			}
			st, err := store.NewWithDSN(ctx, dsn)
			if err != nil {
				return err
			}
			defer st.DB.Close()

			ix, err := kb.Open(cfg.KB.IndexPath)
			if err != nil {
				return err
			}
			defer ix.Close()

			n, err := kb.NewSynchronizer(st, ix, nil).Sync(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("synchronized %d bills into %s\n", n, cfg.KB.IndexPath)
			return nil
		},
	}
	sync.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return sync
}
