package commands

import (
	"github.com/netxfw/testsel/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Long:        `Show the current version of testsel`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			NewCommandExecutor(cmd).Printf("testsel %s\n", version.Version)
		},
	}
}
