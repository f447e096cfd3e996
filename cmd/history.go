package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arin/codeaudit/internal/history"
)

var (
	historyLimit int
	historyShow  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past audits run from the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := history.Load(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No audits yet.")
			return nil
		}

		cyan := color.New(color.FgCyan)
		dim := color.New(color.FgHiBlack)
		red := color.New(color.FgRed)
		green := color.New(color.FgGreen)
		yellow := color.New(color.FgYellow)

		for i, e := range entries {
			dim.Printf("[%s] ", e.Timestamp.Format("2006-01-02 15:04:05"))
			fmt.Printf("%s ", displayName(e.Source))
			cyan.Printf("%s · %s ", e.PackageType, e.Model)
			switch {
			case e.Completed:
				green.Print("✓")
			case e.Interrupted:
				red.Print("✗ interrupted")
			default:
				yellow.Print("⚠ incomplete")
			}
			if e.Warnings > 0 {
				dim.Printf(" (%d skipped)", e.Warnings)
			}
			fmt.Println()
			if historyShow && e.Reply != "" {
				fmt.Printf("\n%s\n", e.Reply)
			}
			if i < len(entries)-1 {
				fmt.Println()
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of history entries to show")
	historyCmd.Flags().BoolVar(&historyShow, "show", false, "Print the stored report for each entry")
}
