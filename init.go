package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phobologic/nginject/internal/config"
)

const configHeader = `# nginject configuration.
# Command-line flags override these values.
`

// newInitCommand implements `nginject init`, which writes a config file
// holding the default settings.
func newInitCommand(stdout, stderr io.Writer) *cobra.Command {
	var dryRun, force bool

	cmd := &cobra.Command{
		Use:   "init [flags] [path]",
		Short: "Write a default " + config.FileName,
		Long: `Write a config file holding the default settings, ready to be edited.

path defaults to ./` + config.FileName + `. When path is a directory the file is
created inside it. An existing file is left alone unless --force is given.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args, dryRun, force, stdout, stderr)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without creating the file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func runInit(args []string, dryRun, force bool, stdout, stderr io.Writer) error {
	content, err := generateConfig()
	if err != nil {
		return err
	}

	if dryRun {
		_, _ = fmt.Fprint(stdout, content)
		return nil
	}

	path := initPath(args)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote default config to %s\n", path)
	return nil
}

// generateConfig returns the commented default config file.
func generateConfig() (string, error) {
	data, err := config.Default().Marshal()
	if err != nil {
		return "", err
	}
	return configHeader + string(data), nil
}

func initPath(args []string) string {
	if len(args) == 0 {
		return config.FileName
	}
	if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
		return filepath.Join(args[0], config.FileName)
	}
	return args[0]
}
