package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/andyballingall/validation-service/internal/fs"
)

// Version is the current version of dvs, set at build time.
var Version = "dev"

// ConfigDirEnvVar names the directory holding dvs.yml when --config is not given.
const ConfigDirEnvVar = "DVS_CONFIG_DIR"

const (
	InitCmdName         = "init"
	ConfigSchemaCmdName = "config-schema"
)

// Banner with colour codes.
var Banner = "\033[32m" + `
    ____ _    _______
   / __ \ |  / / ___/
  / / / / | / /\__ \
 / /_/ /| |/ /___/ /
/_____/ |___//____/
` + "\033[0m"

var LongDescription = `
dvs validates data against named formats. A format is validated by a JSON Schema,
a regular expression, an EBNF grammar or simply by parsing. Formats are declared in
dvs.yml; json, ndjson, yaml, xml, turtle, ntriples and isbn are always available.
`

// NewRootCmd creates the root command and wires up dependencies.
func NewRootCmd(lazy *LazyManager, ll *slog.LevelVar, stdout, stderr io.Writer, envProvider fs.EnvProvider) *cobra.Command {
	var debug bool
	var noColour bool
	configDir := pathValue("")

	rootCmd := &cobra.Command{
		Use:           "dvs",
		Short:         "A data validation service",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Long:          Banner + "\n" + LongDescription,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if debug {
				ll.Set(slog.LevelDebug)
			}
			// Skip initialization for commands which do not read a configuration
			if cmd.Name() == "help" || isCompletionCommand(cmd) ||
				cmd.Name() == InitCmdName || cmd.Name() == ConfigSchemaCmdName {
				return nil
			}
			// Skip if already initialised (e.g., in tests)
			if lazy.HasInner() {
				return nil
			}

			// 1. Find the configuration
			dir, err := fs.FirstDir(string(configDir), envProvider.Get(ConfigDirEnvVar))
			if err != nil {
				return fmt.Errorf("invalid configuration directory: %w", err)
			}

			// 2. Setup Logging
			logger, _, err := setupLogger(stderr, ll, dir, envProvider)
			if err != nil {
				logger.Warn("logging to file disabled", "error", err)
			}

			// 3. Build the registry
			realMgr, err := NewCLIManager(cmd.Context(), logger, dir, cmd.InOrStdin(), stdout)
			if err != nil {
				return fmt.Errorf("registry initialisation failed: %w", err)
			}

			// 4. Hydrate the Lazy Wrapper
			lazy.SetInner(realMgr)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().VarP(&configDir, "config", "C",
		"directory holding dvs.yml (overrides "+ConfigDirEnvVar+", defaults to the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	rootCmd.PersistentFlags().BoolVarP(&noColour, "nocolour", "c", false, "Disable colour in output")
	// Support alternate spellings
	rootCmd.PersistentFlags().BoolVar(&noColour, "nocolor", false, "")
	rootCmd.PersistentFlags().BoolVar(&noColour, "noColor", false, "")
	rootCmd.PersistentFlags().BoolVar(&noColour, "noColour", false, "")
	_ = rootCmd.PersistentFlags().MarkHidden("nocolor")
	_ = rootCmd.PersistentFlags().MarkHidden("noColor")
	_ = rootCmd.PersistentFlags().MarkHidden("noColour")

	// Subcommands
	rootCmd.AddCommand(NewInitCmd(fs.NewPathResolver()))
	rootCmd.AddCommand(NewConfigSchemaCmd())
	rootCmd.AddCommand(NewValidateCmd(lazy))
	rootCmd.AddCommand(NewListCmd(lazy))
	rootCmd.AddCommand(NewLanguagesCmd(lazy))
	rootCmd.AddCommand(NewSchemaCmd(lazy))

	return rootCmd
}

// isCompletionCommand returns true if the command or any of its parents is the "completion" command.
func isCompletionCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" {
			return true
		}
	}
	return false
}
