package cmd

import (
	"fmt"
	"time"

	"github.com/abhisek/dailytutor/internal/topic"
	"github.com/spf13/cobra"
)

var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "Print the topic the tutor would pick",
	Long: `Print the topic chosen for a day and rotation offset.

Without --offset the stored rotation counter for that day is used, so the
output matches what the next session would show. Without --subject the
cached exam subject is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dateVal, _ := cmd.Flags().GetString("date")
		subject, _ := cmd.Flags().GetString("subject")

		day := time.Now()
		if dateVal != "" {
			d, err := time.ParseInLocation(topic.DateLayout, dateVal, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", dateVal, err)
			}
			day = d
		}

		catalog, err := topic.DefaultCatalog()
		if err != nil {
			return err
		}

		_, st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		if !cmd.Flags().Changed("subject") {
			p, err := st.ProfileRepo().Get(ctx)
			if err != nil {
				return fmt.Errorf("read profile: %w", err)
			}
			subject = p.ExamSubject
		}

		offset, _ := cmd.Flags().GetInt("offset")
		if !cmd.Flags().Changed("offset") {
			offset, err = st.CounterRepo().Get(ctx, topic.DayKey(day))
			if err != nil {
				return fmt.Errorf("read rotation counter: %w", err)
			}
		}

		t := topic.Select(catalog, subject, day, offset)
		fmt.Printf("Date:     %s\n", day.Format(topic.DateLayout))
		fmt.Printf("Offset:   %d\n", offset)
		fmt.Printf("Subject:  %s\n", t.Subject)
		fmt.Printf("Topic:    %s\n", t.Topic)
		fmt.Printf("Position: %d of %d\n", t.Ordinal, t.TotalInCatalog)
		fmt.Printf("Key:      %s\n", t.Key())
		return nil
	},
}

func init() {
	topicCmd.Flags().String("date", "", "Day to pick for (YYYY-MM-DD, default today)")
	topicCmd.Flags().Int("offset", 0, "Rotation offset (default: stored counter for the day)")
	topicCmd.Flags().String("subject", "", "Exam subject key or alias (default: cached profile)")
}
