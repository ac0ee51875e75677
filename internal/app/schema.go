package app

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/andyballingall/validation-service/internal/config"
)

func NewSchemaCmd(mgr Manager) *cobra.Command {
	var versionStr string

	cmd := &cobra.Command{
		Use:   "schema <format>",
		Short: "Output the schema of a format version",
		Args:  cobra.ExactArgs(1),
		Example: `
  dvs schema person
  dvs schema person --version 2
  dvs schema postcode
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := mgr.Schema(args[0], versionStr)
			if err != nil {
				return err
			}

			if text, ok := s.Value.(string); ok && s.Type != "json-schema" {
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
			rendered, err := json.MarshalIndent(s.Value, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(rendered))
			return nil
		},
	}

	cmd.Flags().StringVarP(&versionStr, "version", "v", "", "Version of the format (defaults to its default version)")

	return cmd
}

// NewConfigSchemaCmd outputs the JSON Schema dvs.yml is checked against, for use in editors.
func NewConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   ConfigSchemaCmdName,
		Short: "Output the JSON Schema of dvs.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rendered, err := json.MarshalIndent(config.Schema(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(rendered))
			return nil
		},
	}
}
