package cmd

import (
	"fmt"

	"github.com/abhisek/dailytutor/internal/quota"
	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show today's session allowance",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		gate := quota.NewGate(backend)
		state, err := gate.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("fetch limits: %w", err)
		}
		gate.Set(state)

		plan := state.SubscriptionType
		if plan == "" {
			plan = "free"
		}
		fmt.Printf("Backend:   %s\n", cfg.Mode())
		fmt.Printf("Plan:      %s\n", plan)
		if gate.Unlimited() {
			fmt.Println("Sessions:  unlimited")
		} else {
			fmt.Printf("Sessions:  %d of %d used, %d left\n",
				state.SessionsUsedToday, state.SessionsAllowedToday, gate.SessionsLeft())
		}

		ok, trigger := gate.StartDecision()
		switch {
		case ok:
			fmt.Println("Start:     allowed")
		case trigger != "":
			fmt.Printf("Start:     blocked (%s)\n", trigger)
		default:
			fmt.Println("Start:     unknown")
		}
		return nil
	},
}
