package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rolesJSON bool

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Inspect supplier roles",
}

var rolesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every known role",
	Args:  cobra.NoArgs,
	RunE:  runRolesList,
}

func init() {
	rolesListCmd.Flags().BoolVar(&rolesJSON, "json", false, "output as JSON")
	rolesCmd.AddCommand(rolesListCmd)
	rootCmd.AddCommand(rolesCmd)
}

func runRolesList(cmd *cobra.Command, _ []string) error {
	if directoryService == nil {
		return unavailable("directory")
	}

	roles, err := directoryService.ListRoles(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list roles: %w", err)
	}

	if rolesJSON {
		return outputJSON(cmd, roles)
	}
	if len(roles) == 0 {
		cmd.Println("No roles yet. Ingest a supplier profile or import a directory.")
		return nil
	}
	for _, r := range roles {
		cmd.Printf("  %s\n", accentColor(r.Name))
		if r.Description != "" {
			cmd.Printf("      %s\n", r.Description)
		}
	}
	return nil
}
