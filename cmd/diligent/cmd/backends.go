package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/diligent-ai/diligent/internal/render"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List configured backends and their availability",
	RunE:  runBackends,
}

var backendsCheck bool

func init() {
	rootCmd.AddCommand(backendsCmd)

	backendsCmd.Flags().BoolVar(&backendsCheck, "check", true,
		"Ping each backend to check liveness")
}

func runBackends(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	registry := buildRegistry(cfg, logger)
	defer func() { _ = registry.Close() }()

	available := make(map[string]bool)
	if backendsCheck {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, name := range registry.Available(ctx) {
			available[name] = true
		}
	}

	fmt.Println(render.Header("Backends"))
	fmt.Println()
	for _, name := range registry.List() {
		bc, _ := cfg.Backends.Backend(name)
		detail := bc.Role
		if bc.Model != "" {
			detail += ", " + bc.Model
		}
		if backendsCheck {
			fmt.Printf("  %s %s %s\n", render.StatusIcon(available[name]), name, render.Muted("("+detail+")"))
		} else {
			fmt.Printf("  - %s %s\n", name, render.Muted("("+detail+")"))
		}
	}
	fmt.Println()
	return nil
}
