package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/playdailyfive/daily5/internal/config"
	"github.com/playdailyfive/daily5/internal/history"
	"github.com/playdailyfive/daily5/internal/ledger"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Trim the ledger to its cap and expire old history rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}

		led, err := ledger.Load(cfg.LedgerFile(), cfg.LedgerCap)
		if err != nil {
			return err
		}
		if err := led.Save(); err != nil {
			return err
		}
		fmt.Printf("ledger: %d hashes retained\n", led.Len())

		hist, err := history.Open(cfg.HistoryFile())
		if err != nil {
			fmt.Printf("history: unavailable (%v)\n", err)
			return nil
		}
		defer hist.Close()

		removed, err := hist.Prune(cfg.RetentionDuration())
		if err != nil {
			return err
		}
		fmt.Printf("history: %d rows removed (retention %s)\n", removed, cfg.RetentionDuration())
		return nil
	},
}
