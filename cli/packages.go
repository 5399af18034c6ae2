package cli

import (
	"strings"

	"github.com/absmach/pkgbench/analyzer"
	"github.com/absmach/pkgbench/task"
	"github.com/spf13/cobra"
)

func NewPackagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packages [search]",
		Short: "PyPI packages",
		Long:  `Search the PyPI package index known to the analysis service.`,
	}

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search packages",
		Long: `Search packages by name. A blank query returns no packages without
contacting the service.

Examples:
  pkgbench packages search requests`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			query := ""
			if len(args) == 1 {
				query = strings.TrimSpace(args[0])
			}

			s := analyzer.NewSession(psdk, logger)
			defer s.Close()

			pkgs, err := s.SearchPackages(cmd.Context(), query)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, task.SearchResponse{Packages: pkgs})
		},
	}

	cmd.AddCommand(searchCmd)

	return cmd
}
