package cmd

import (
	"github.com/spf13/cobra"

	"github.com/relayops/fleetbridge/pkg/logging"
)

var tokenRefresh bool

var tokenCmd = &cobra.Command{
	Use:     "token",
	Short:   "Verify the target platform credential",
	GroupID: "curation",
	Long: `Token obtains a live access token, logging in only when the cached one
has expired. With --refresh it discards the cache and logs in again.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		manager, err := newTokenManager()
		if err != nil {
			return err
		}

		if tokenRefresh {
			if _, err := manager.Refresh(cmd.Context()); err != nil {
				return err
			}
			logging.Info().Msg("Token refreshed")
			return nil
		}

		if _, err := manager.Token(cmd.Context()); err != nil {
			return err
		}
		logging.Info().Msg("Token valid")
		return nil
	},
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenRefresh, "refresh", false, "discard the cached token and log in again")
	rootCmd.AddCommand(tokenCmd)
}
