package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/dailytutor/internal/lesson"
	"github.com/abhisek/dailytutor/internal/session"
	"github.com/abhisek/dailytutor/internal/topic"
	"github.com/abhisek/dailytutor/internal/tutorapi"
	"github.com/abhisek/dailytutor/internal/verdict"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Run one lesson as plain text (no TUI, no session quota)",
	Long: `Ask the three lesson steps for a topic and check an answer read from stdin.

This is a developer tool for judging prompt and answer quality. It talks to
the configured backend and records request events, but does not consume a
session, advance the topic rotation or write session history.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("subject", "", "Exam subject key or alias (default: cross-subject list)")
	previewCmd.Flags().String("date", "", "Day to pick the topic for (YYYY-MM-DD, default today)")
	previewCmd.Flags().Int("offset", 0, "Rotation offset")
	previewCmd.Flags().Bool("no-answer", false, "Stop after the task without checking an answer")
}

func runPreview(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	dateVal, _ := cmd.Flags().GetString("date")
	offset, _ := cmd.Flags().GetInt("offset")
	noAnswer, _ := cmd.Flags().GetBool("no-answer")

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

	cfg, st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	backend, err := buildBackend(ctx, cfg, st)
	if err != nil {
		return err
	}
	client := newAsker(cfg, st, backend)
	classifier, err := verdict.ForLocale(cfg.Locale)
	if err != nil {
		return err
	}

	t := topic.Select(catalog, subject, day, offset)
	fmt.Printf("%s — %s (%d of %d), backend: %s\n\n",
		t.Subject, t.Topic, t.Ordinal, t.TotalInCatalog, cfg.Mode())

	steps := lesson.BuildSteps(t)
	var history []tutorapi.Turn
	var task string
	for i, step := range steps {
		res, err := client.Ask(ctx, session.PurposeStep, tutorapi.AskRequest{
			Question: step.Prompt,
			History:  history,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", step.Kind, err)
		}
		text := res.Text
		if text == "" {
			text = lesson.FallbackText
		}

		fmt.Printf("── %d/%d %s ──\n", i+1, lesson.StepCount, step.Kind)
		fmt.Println(text)
		if res.Fallback {
			fmt.Printf("(fallback after %d attempts)\n", res.Attempts)
		}
		fmt.Println()

		history = []tutorapi.Turn{
			{Role: "user", Content: step.Prompt},
			{Role: "assistant", Content: text},
		}
		task = text
	}

	if noAnswer {
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("Your answer: ")
	if !scanner.Scan() {
		fmt.Println("\n(input closed)")
		return nil
	}
	answer := strings.TrimSpace(scanner.Text())
	if answer == "" {
		fmt.Println("(skipped)")
		return nil
	}

	res, err := client.Verify(ctx, session.PurposeVerify, tutorapi.AskRequest{
		Question: lesson.VerifyPrompt(t, task, answer),
	})
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	switch classifier.Classify(res.Text) {
	case verdict.Correct:
		fmt.Println("\033[32m✓ Correct!\033[0m")
	case verdict.Incorrect:
		fmt.Println("\033[31m✗ Not quite.\033[0m")
	default:
		fmt.Println("? Verdict unclear.")
	}
	fmt.Println(res.Text)
	return nil
}
