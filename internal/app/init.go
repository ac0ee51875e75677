package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/andyballingall/validation-service/internal/config"
	"github.com/andyballingall/validation-service/internal/fs"
)

// NewInitCmd returns a new cobra command for creating a configuration directory.
func NewInitCmd(pathResolver fs.PathResolver) *cobra.Command {
	cmd := &cobra.Command{
		Use:   InitCmdName + " [dirpath]",
		Short: "Create a configuration directory",
		Long:  `Create a directory (the current one by default) and initialise it with an example dvs.yml.`,
		Args:  cobra.MaximumNArgs(1),
		Example: `
dvs init ./formats
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirpath := "."
			if len(args) > 0 {
				dirpath = args[0]
			}

			// 1. Create directory if it doesn't exist
			if err := os.MkdirAll(dirpath, 0o750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

			configPath := filepath.Join(dirpath, config.ConfigFile)

			// 2. Check if config file already exists
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("configuration already exists: %s", configPath)
			}

			// 3. Write default config
			if err := os.WriteFile(configPath, []byte(config.DefaultConfigContent), 0o600); err != nil {
				return fmt.Errorf("failed to write configuration file: %w", err)
			}

			cmd.Printf("Successfully created configuration at: %s\n", configPath)
			cmd.Printf("%s", addEnvironmentVariableInstructions(pathResolver, dirpath))
			cmd.Println("\nTo see the formats it declares, run:")
			cmd.Printf("  dvs list -C %s\n", dirpath)

			return nil
		},
	}

	return cmd
}

func addEnvironmentVariableInstructions(pathResolver fs.PathResolver, dirpath string) string {
	return addEnvironmentVariableInstructionsForOS(pathResolver, dirpath, runtime.GOOS)
}

func addEnvironmentVariableInstructionsForOS(pathResolver fs.PathResolver, dirpath, goos string) string {
	abs, err := pathResolver.Abs(dirpath)
	if err != nil {
		abs = dirpath
	}

	envVar := ConfigDirEnvVar
	instructions := "To use this configuration by default, we recommend you set an environment variable. Run:\n"

	switch goos {
	case "windows":
		instructions += fmt.Sprintf("\n  setx %s %q && set %q\n", envVar, abs, envVar+"="+abs)
	case "darwin":
		instructions += fmt.Sprintf("\n  echo 'export %s=%q' >> ~/.zshrc && source ~/.zshrc\n", envVar, abs)
	default:
		instructions += fmt.Sprintf("\n  echo 'export %s=%q' >> ~/.bashrc && source ~/.bashrc\n", envVar, abs)
	}

	return instructions
}
