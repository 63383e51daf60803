package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig  string
	flagNonce   string
	flagDate    string
	flagOut     string
	flagOffline bool
	flagForce   bool
)

var rootCmd = &cobra.Command{
	Use:   "daily5",
	Short: "Daily five-question trivia generator",
	Long: "daily5 assembles the day's five multiple-choice trivia questions from a\n" +
		"question bank, deduplicates against history and writes a static JSON\n" +
		"artifact for the front end. It is meant to run once a day from a scheduler.",
	RunE: runGenerate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")

	rootCmd.Flags().StringVar(&flagNonce, "nonce", "", "reroll nonce; any non-empty value regenerates today's quiz with a new shuffle")
	rootCmd.Flags().StringVar(&flagDate, "date", "", "generate for a specific day (YYYYMMDD) instead of today")
	rootCmd.Flags().StringVar(&flagOut, "out", "", "artifact output path (overrides config)")
	rootCmd.Flags().BoolVar(&flagOffline, "offline", false, "skip the network tier and use local/bundled pools")
	rootCmd.Flags().BoolVar(&flagForce, "force", false, "regenerate even if today's artifact exists")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(pruneCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("daily5 %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
