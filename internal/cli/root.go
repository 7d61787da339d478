// Package cli implements plannerctl, an offline front end to the planner.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the plannerctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "plannerctl",
		Short:         "Plan leave windows from an attendance snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRecommendCommand())
	root.AddCommand(newTokenCommand())
	return root
}
