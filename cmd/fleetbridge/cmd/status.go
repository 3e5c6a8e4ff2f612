package cmd

import (
	"github.com/spf13/cobra"

	"github.com/relayops/fleetbridge/pkg/errors"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show the last outcome of every job",
	GroupID: "pipeline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store := statusStore()
		outcomes, err := store.All()
		if errors.IsNotFound(err) {
			cmd.Println("no jobs recorded yet")
			return nil
		}
		if err != nil {
			return err
		}

		jobs, err := store.Jobs()
		if err != nil {
			return err
		}
		for _, job := range jobs {
			outcome := outcomes[job]
			state := "OK"
			if !outcome.OK {
				state = "FAIL"
			}
			cmd.Printf("%-20s  %-4s  %-19s  %5d  %s\n",
				job, state, outcome.RanAt, outcome.Count, outcome.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
