package cmd

import (
	"fmt"
	"time"

	"github.com/abhisek/dailytutor/internal/store"
	"github.com/abhisek/dailytutor/internal/topic"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or change the cached exam profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached exam profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		p, err := st.ProfileRepo().Get(cmd.Context())
		if err != nil {
			return fmt.Errorf("read profile: %w", err)
		}
		printProfile(p)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the cached exam profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("subject") && !cmd.Flags().Changed("exam-date") {
			return fmt.Errorf("nothing to set: use --subject and/or --exam-date")
		}

		_, st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		repo := st.ProfileRepo()
		p, err := repo.Get(ctx)
		if err != nil {
			return fmt.Errorf("read profile: %w", err)
		}

		if cmd.Flags().Changed("subject") {
			subject, _ := cmd.Flags().GetString("subject")
			if subject != "" {
				catalog, err := topic.DefaultCatalog()
				if err != nil {
					return err
				}
				if _, ok := catalog.Lookup(subject); !ok {
					return fmt.Errorf("unknown subject %q", subject)
				}
			}
			p.ExamSubject = subject
		}
		if cmd.Flags().Changed("exam-date") {
			dateVal, _ := cmd.Flags().GetString("exam-date")
			p.ExamDate = time.Time{}
			if dateVal != "" {
				d, err := time.ParseInLocation(topic.DateLayout, dateVal, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --exam-date %q: %w", dateVal, err)
				}
				p.ExamDate = d
			}
		}

		if err := repo.Save(ctx, p); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		printProfile(p)
		return nil
	},
}

func printProfile(p store.Profile) {
	subject := p.ExamSubject
	if subject == "" {
		subject = "(not set)"
	}
	date := "(not set)"
	if !p.ExamDate.IsZero() {
		date = p.ExamDate.Format(topic.DateLayout)
	}
	fmt.Printf("Subject:    %s\n", subject)
	fmt.Printf("Exam date:  %s\n", date)
}

func init() {
	profileSetCmd.Flags().String("subject", "", "Exam subject key or alias (empty clears it)")
	profileSetCmd.Flags().String("exam-date", "", "Exam date YYYY-MM-DD (empty clears it)")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
}
