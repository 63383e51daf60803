package cmd

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/playdailyfive/daily5/internal/config"
	"github.com/playdailyfive/daily5/internal/daykey"
	"github.com/playdailyfive/daily5/internal/pipeline"
)

func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "daily5",
	})
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	var now time.Time
	if flagDate != "" {
		now, err = daykey.ParseDay(flagDate, cfg.Timezone)
		if err != nil {
			return err
		}
	}

	art, err := pipeline.New(cfg, logger).Run(context.Background(), pipeline.Options{
		Now:     now,
		Nonce:   flagNonce,
		Offline: flagOffline,
		Force:   flagForce,
		OutPath: flagOut,
	})
	if err != nil {
		logger.Error("generation failed", "err", err)
		return err
	}

	logger.Info("quiz ready", "day", art.Day, "index", art.DayIndex, "questions", len(art.Questions))
	return nil
}
