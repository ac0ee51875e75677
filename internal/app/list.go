package app

import (
	"github.com/spf13/cobra"

	"github.com/andyballingall/validation-service/internal/format"
	"github.com/andyballingall/validation-service/internal/report"
)

func NewListCmd(mgr Manager) *cobra.Command {
	var languageVal languageValue

	cmd := &cobra.Command{
		Use:   "list [format]",
		Short: "List the available formats",
		Args:  cobra.MaximumNArgs(1),
		Example: `
  dvs list
  dvs list person
  dvs list --language json-schema -o json
`,
	}

	outputVal := outputValue("text")
	cmd.Flags().VarP(&outputVal, "output", "o", "Output format (text, json)")
	cmd.Flags().VarP(&languageVal, "language", "l", "Only list formats with a version in this schema language")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		flt := format.Filter{Language: string(languageVal)}
		if len(args) > 0 {
			flt.ID = args[0]
		}
		noColour, _ := cmd.Flags().GetBool("nocolour")
		return mgr.ListFormats(flt, string(outputVal), !noColour)
	}

	return cmd
}

func NewLanguagesCmd(mgr Manager) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the schema languages formats can be declared in",
		Args:  cobra.NoArgs,
	}

	outputVal := outputValue("text")
	cmd.Flags().VarP(&outputVal, "output", "o", "Output format (text, json)")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		noColour, _ := cmd.Flags().GetBool("nocolour")
		return report.New(string(outputVal), !noColour).WriteFormats(cmd.OutOrStdout(), mgr.Registry().Languages())
	}

	return cmd
}
