// Package versioncmder provides the "rubberduck version" command.
package versioncmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/rubberduck/pkg/utils"
)

type versionCommander struct {
	short bool
}

func NewVersionCmd() *cobra.Command {
	cmder := &versionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display the rubberduck version",
		Long:  "Display the version, commit and build time of this rubberduck binary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmder.short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), utils.Version)
				return err
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), utils.BuildInfo())
			return err
		},
	}

	cmd.Flags().BoolVar(&cmder.short, "short", false, "Print only the version")
	return cmd
}
