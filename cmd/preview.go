package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/playdailyfive/daily5/internal/artifact"
	"github.com/playdailyfive/daily5/internal/config"
)

var flagAnswers bool

var (
	previewHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})

	previewMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"})

	previewQuestionStyle = lipgloss.NewStyle().
				Bold(true).
				MarginTop(1)

	previewOptionStyle = lipgloss.NewStyle().
				PaddingLeft(2)

	previewCorrectStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}).
				Bold(true)
)

var previewCmd = &cobra.Command{
	Use:   "preview [artifact]",
	Short: "Render a daily artifact in the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			path = cfg.ArtifactFile()
		}

		a, err := artifact.Read(path)
		if err != nil {
			return err
		}

		header := fmt.Sprintf("Daily Five — %s (day %d)", a.Day, a.DayIndex)
		fmt.Println(previewHeaderStyle.Render(header))
		meta := fmt.Sprintf("source: %s", a.Source)
		if a.Reroll {
			meta += "  (reroll)"
		}
		fmt.Println(previewMetaStyle.Render(meta))

		for i, q := range a.Questions {
			label := fmt.Sprintf("%d. %s", i+1, q.Text)
			if q.Category != "" {
				label += previewMetaStyle.Render(fmt.Sprintf("  [%s, %s]", q.Category, q.Difficulty))
			}
			fmt.Println(previewQuestionStyle.Render(label))
			for j, opt := range q.Options {
				line := fmt.Sprintf("%c) %s", 'A'+j, opt)
				if flagAnswers && j == q.Correct {
					fmt.Println(previewCorrectStyle.Render(line + "  ✓"))
				} else {
					fmt.Println(previewOptionStyle.Render(line))
				}
			}
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().BoolVar(&flagAnswers, "answers", false, "reveal the correct answers")
}
