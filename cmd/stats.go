package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/playdailyfive/daily5/internal/artifact"
	"github.com/playdailyfive/daily5/internal/config"
	"github.com/playdailyfive/daily5/internal/history"
	"github.com/playdailyfive/daily5/internal/ledger"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show ledger and history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}

		led, err := ledger.Load(cfg.LedgerFile(), cfg.LedgerCap)
		if err != nil {
			fmt.Printf("ledger:   unreadable (%v)\n", err)
		} else {
			fmt.Printf("ledger:   %d seen hashes (cap %d)\n", led.Len(), cfg.LedgerCap)
		}

		if a, err := artifact.Read(cfg.ArtifactFile()); err == nil {
			fmt.Printf("artifact: day %s (#%d), %d questions, source %s\n",
				a.Day, a.DayIndex, len(a.Questions), a.Source)
		} else {
			fmt.Println("artifact: none")
		}

		hist, err := history.Open(cfg.HistoryFile())
		if err != nil {
			fmt.Printf("history:  unavailable (%v)\n", err)
			return nil
		}
		defer hist.Close()

		count, size, err := hist.Stats(cfg.HistoryFile())
		if err != nil {
			return err
		}
		fmt.Printf("history:  %d questions archived, %.1f KB\n", count, float64(size)/1024)
		if last, err := hist.LastRun(); err == nil {
			fmt.Printf("last run: %s\n", last.Format("2006-01-02 15:04:05 MST"))
		}
		return nil
	},
}
