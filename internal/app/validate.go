package app

import (
	"github.com/spf13/cobra"

	"github.com/andyballingall/validation-service/internal/orchestrator"
)

func NewValidateCmd(mgr Manager) *cobra.Command {
	var versionStr string
	var selectStr string
	var stream bool
	var watch bool

	cmd := &cobra.Command{
		Use:   "validate <format> [file...]",
		Short: "Validate data against a format",
		Long: `Validate each file, or standard input when no file is given, against a format.
Files are parsed with the parser of the format; each parsed item is validated.`,
		Args: cobra.MinimumNArgs(1),
		Example: `
VALIDATING FILES
  dvs validate json ./order.json
  dvs validate person ./alice.json ./bob.yml
  dvs validate person --version 2 ./alice.json

STANDARD INPUT
  echo '978-3-16-148410-0' | dvs validate isbn

SELECTING PARTS OF THE INPUT (JSONPath)
  dvs validate person --select '$.people[*]' ./people.json

LARGE LINE-DELIMITED INPUT
  dvs validate ndjson --stream ./events.ndjson

RE-VALIDATING ON CHANGE
  dvs validate person --watch ./alice.json`,
	}

	outputVal := outputValue("text")
	cmd.Flags().VarP(&outputVal, "output", "o", "Output format (text, json)")
	cmd.Flags().StringVarP(&versionStr, "version", "v", "", "Version of the format (defaults to its default version)")
	cmd.Flags().StringVarP(&selectStr, "select", "s", "", "JSONPath selecting the parts of each item to validate")
	cmd.Flags().BoolVar(&stream, "stream", false, "Validate items as they are read, reporting each one")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Watch inputs and configuration for changes and validate again")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		noColour, _ := cmd.Flags().GetBool("nocolour")

		opts := ValidateOptions{
			Request: orchestrator.Request{
				Format:  args[0],
				Version: versionStr,
				Select:  selectStr,
			},
			Inputs:    args[1:],
			Output:    string(outputVal),
			UseColour: !noColour,
			Stream:    stream,
		}
		if stream && len(opts.Inputs) > 1 {
			return &StreamInputsError{Count: len(opts.Inputs)}
		}

		if watch {
			return mgr.WatchValidation(cmd.Context(), opts, nil)
		}
		return mgr.Validate(cmd.Context(), opts)
	}

	return cmd
}
