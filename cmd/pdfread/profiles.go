package main

import (
	"os"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the device profiles",
	Long: `Profiles prints the built-in device profiles together with any
profiles defined under "profiles:" in the config file. With --yaml the
table is printed in the config file format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := profileTable()
		if err != nil {
			return err
		}
		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			return table.WriteYAML(os.Stdout)
		}
		table.WriteHelp(os.Stdout)
		return nil
	},
}

func init() {
	profilesCmd.Flags().Bool("yaml", false, "print the table as YAML")
	rootCmd.AddCommand(profilesCmd)
}
