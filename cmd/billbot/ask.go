package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bunge-labs/billbot/config"
	"github.com/bunge-labs/billbot/engine"
	"github.com/bunge-labs/billbot/internal/kb"
	"github.com/bunge-labs/billbot/provider"
)

func askCMD() *cobra.Command {
	var cfgPath string
	var ask = &cobra.Command{
		Use:   "ask [query]",
		Short: "Answer one query against the local index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			ctx := context.Background()

			ix, err := kb.Open(cfg.KB.IndexPath)
			if err != nil {
				return err
			}
			defer ix.Close()

			prov, err := provider.NewProvider(provider.Client(cfg.LLM.Provider), cfg.LLM)
			if err != nil {
				return err
			}

			eng := engine.New(ix, prov, cfg.KB.Corpus, cfg.LLM.MaxTokens, cfg.LLM.Temperature, nil, nil)
			answer, mode := eng.Answer(ctx, strings.Join(args, " "))
			fmt.Printf("[%s] %s\n", mode, answer)
			return nil
		},
	}
	ask.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return ask
}
