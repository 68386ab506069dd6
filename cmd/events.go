package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/dailytutor/internal/store"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent tutoring API and LLM request events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		source, _ := cmd.Flags().GetString("source")

		_, st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.EventRepo().QueryRequestEvents(cmd.Context(), store.QueryOpts{
			Limit:   limit,
			Purpose: purpose,
			Source:  source,
		})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No request events found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-4s  %-9s  %-24s  %-3s  %-4s  %-7s  %s\n",
			"Seq", "Timestamp", "Src", "Purpose", "Model", "Try", "HTTP", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 96))

		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			status := "-"
			if e.Status != 0 {
				status = fmt.Sprintf("%d", e.Status)
			}
			fmt.Printf("%-5d  %-19s  %-4s  %-9s  %-24s  %-3d  %-4s  %-7d  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Source,
				e.Purpose,
				truncate(e.Model, 24),
				e.Attempt,
				status,
				e.LatencyMs,
				ok,
			)
			if e.ErrorMessage != "" {
				fmt.Printf("       %s\n", truncate(e.ErrorMessage, 88))
			}
		}
		return nil
	},
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func init() {
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (step, verify, solution)")
	eventsCmd.Flags().StringP("source", "s", "", "Filter by source (api, llm)")
}
