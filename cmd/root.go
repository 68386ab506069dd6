package cmd

import (
	"fmt"

	"github.com/abhisek/dailytutor/internal/config"
	"github.com/abhisek/dailytutor/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dailytutor",
	Short: "One exam topic a day in your terminal",
	Long: "dailytutor — terminal tutor that picks one exam topic a day, explains it, " +
		"shows an example and checks your answer to a task.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DAILYTUTOR_DB env var)")
	rootCmd.PersistentFlags().String("api-url", "", "Tutoring API base URL (overrides DAILYTUTOR_API_URL env var)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(topicCmd)
	rootCmd.AddCommand(quotaCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		cfg.APIURL = u
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path (--db flag, then
// DAILYTUTOR_DB), falling back to the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore loads the configuration and opens the database it names.
func openStore(cmd *cobra.Command) (config.Config, *store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return config.Config{}, nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, st, nil
}
