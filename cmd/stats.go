package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show streak and recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		_, st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		repo := st.SessionRepo()
		streak, err := repo.Streak(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("compute streak: %w", err)
		}
		recent, err := repo.Recent(ctx, limit)
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}

		fmt.Printf("Streak: %d day(s)\n\n", streak)
		if len(recent) == 0 {
			fmt.Println("No sessions yet.")
			return nil
		}

		fmt.Printf("%-16s  %-32s  %6s  %7s  %s\n", "Finished", "Topic", "Time", "Retries", "Result")
		fmt.Println(strings.Repeat("─", 80))

		var correct, solutions int
		for _, r := range recent {
			result := "incorrect"
			switch {
			case r.SolutionRevealed:
				result = "solution shown"
				solutions++
			case r.Correct:
				result = "correct"
				correct++
			}
			d := max(r.FinishedAt.Sub(r.StartedAt), 0).Round(time.Second)
			fmt.Printf("%-16s  %-32s  %6s  %7d  %s\n",
				r.FinishedAt.Local().Format("2006-01-02 15:04"),
				truncate(r.TopicKey, 32),
				d,
				r.Retries,
				result,
			)
		}

		fmt.Println(strings.Repeat("─", 80))
		fmt.Printf("%d sessions: %d correct, %d with solution shown\n", len(recent), correct, solutions)
		return nil
	},
}

func init() {
	statsCmd.Flags().IntP("limit", "n", 14, "Number of sessions to show")
}
