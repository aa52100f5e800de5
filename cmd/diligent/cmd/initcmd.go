package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diligent-ai/diligent/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Write the default configuration to .diligent.yaml in the current
directory so it can be edited. Fails if the file already exists unless
--force is given.`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

func runInit(_ *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		path = ".diligent.yaml"
	}

	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	// A fresh loader with no file set yields the built-in defaults,
	// even when the target path does not exist yet.
	cfg, err := config.NewLoader().Load()
	if err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}
