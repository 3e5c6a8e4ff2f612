package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relayops/fleetbridge/internal/config"
	"github.com/relayops/fleetbridge/pkg/envelope"
	"github.com/relayops/fleetbridge/pkg/errors"
	"github.com/relayops/fleetbridge/pkg/inventory"
	"github.com/relayops/fleetbridge/pkg/logging"
	"github.com/relayops/fleetbridge/pkg/overrides"
	"github.com/relayops/fleetbridge/pkg/resolve"
)

var exceptionCmd = &cobra.Command{
	Use:     "exception",
	Short:   "Manage customer override rules",
	GroupID: "curation",
	Long: `Exception rules pin a (document, department) pair to a fixed customer.
They win over direct registry matching and survive collection cycles.`,
}

var (
	exceptionDocument   string
	exceptionDepartment string
	exceptionCustomerID int
)

var exceptionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or replace an override rule",
	RunE: func(_ *cobra.Command, _ []string) error {
		// Description enrichment needs the registry; an absent snapshot just
		// leaves the description blank.
		customers, err := envelope.ReadList[inventory.TargetCustomer](config.CustomersPath())
		if err != nil && !errors.Is(err, errors.ErrSnapshotMissing) {
			return err
		}

		rule := resolve.ExceptionRule{
			Document:        exceptionDocument,
			DepartmentMatch: exceptionDepartment,
			CustomerID:      exceptionCustomerID,
		}
		if err := overrides.UpsertException(config.ExceptionsPath(), rule, customers); err != nil {
			return err
		}

		logging.Info().
			Str("document", exceptionDocument).
			Str("department", exceptionDepartment).
			Int("customer", exceptionCustomerID).
			Msg("Exception rule saved")
		return nil
	},
}

var exceptionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the override rules in stored order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rules, err := overrides.LoadExceptions(config.ExceptionsPath())
		if err != nil {
			return err
		}
		if len(rules) == 0 {
			cmd.Println("no exception rules")
			return nil
		}
		for i, rule := range rules {
			desc := rule.CustomerDescription
			if desc == "" {
				desc = "-"
			}
			cmd.Printf("%3d  %-20s  %-30s  %7d  %s\n",
				i+1, rule.Document, rule.DepartmentMatch, rule.CustomerID, desc)
		}
		return nil
	},
}

func init() {
	exceptionAddCmd.Flags().StringVar(&exceptionDocument, "document", "", "customer tax id the rule matches")
	exceptionAddCmd.Flags().StringVar(&exceptionDepartment, "department", "", "department the rule matches")
	exceptionAddCmd.Flags().IntVar(&exceptionCustomerID, "customer-id", 0, "target customer id the rule assigns")
	for _, flag := range []string{"document", "department", "customer-id"} {
		if err := exceptionAddCmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("Failed to mark %s required: %v", flag, err))
		}
	}

	exceptionCmd.AddCommand(exceptionAddCmd)
	exceptionCmd.AddCommand(exceptionListCmd)
	rootCmd.AddCommand(exceptionCmd)
}
