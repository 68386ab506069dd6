package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/dailytutor/internal/app"
	"github.com/abhisek/dailytutor/internal/config"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the tutor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func init() {
	runCmd.Flags().Bool("skip-intro", false, "Open the home screen directly")
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg, st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	backend, err := buildBackend(cmd.Context(), cfg, st)
	if err != nil {
		return err
	}
	if cfg.Mode() == config.ModeOffline {
		fmt.Fprintln(os.Stderr, "No tutoring API or LLM provider configured.")
		fmt.Fprintln(os.Stderr, "Running in offline demo mode.")
	}

	newEngine, err := engineFactory(cfg, st, backend)
	if err != nil {
		return err
	}

	skipIntro := false
	if f := cmd.Flags().Lookup("skip-intro"); f != nil {
		skipIntro, _ = cmd.Flags().GetBool("skip-intro")
	}

	return app.Run(app.Options{
		NewEngine:   newEngine,
		Sessions:    st.SessionRepo(),
		Mode:        cfg.Mode(),
		SkipWelcome: skipIntro,
	})
}
