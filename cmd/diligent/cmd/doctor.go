package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/diligent-ai/diligent/internal/config"
	"github.com/diligent-ai/diligent/internal/diagnostics"
	"github.com/diligent-ai/diligent/internal/render"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, backends, and system resources",
	Long:  "Verify that the configuration is valid, the backends respond, and the host has resources to spare.",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	allOK := true

	fmt.Println(render.Header("Configuration"))
	fmt.Println()
	if err := config.NewValidator().Validate(cfg); err != nil {
		allOK = false
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, ve := range verrs {
				fmt.Printf("  %s %s\n", render.StatusIcon(false), ve.Error())
			}
		} else {
			fmt.Printf("  %s %s\n", render.StatusIcon(false), err.Error())
		}
	} else {
		fmt.Printf("  %s configuration valid\n", render.StatusIcon(true))
	}
	fmt.Println()

	fmt.Println(render.Header("Backends"))
	fmt.Println()
	registry := buildRegistry(cfg, logger)
	defer func() { _ = registry.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, name := range registry.List() {
		backend, err := registry.Get(name)
		if err != nil {
			allOK = false
			fmt.Printf("  %s %s: %s\n", render.StatusIcon(false), name, err.Error())
			continue
		}
		if err := backend.Ping(ctx); err != nil {
			allOK = false
			fmt.Printf("  %s %s: %s\n", render.StatusIcon(false), name, err.Error())
			continue
		}
		fmt.Printf("  %s %s\n", render.StatusIcon(true), name)
	}
	fmt.Println()

	fmt.Println(render.Header("System"))
	fmt.Println()
	metrics := diagnostics.NewCollector().Collect()
	fmt.Printf("  CPU:    %s (%d cores, %.0f%% busy)\n", metrics.CPUModel, metrics.CPUCores, metrics.CPUPercent)
	fmt.Printf("  Memory: %.0f / %.0f MB (%.0f%%)\n", metrics.MemUsedMB, metrics.MemTotalMB, metrics.MemPercent)
	fmt.Printf("  Disk:   %.1f / %.1f GB (%.0f%%)\n", metrics.DiskUsedGB, metrics.DiskTotalGB, metrics.DiskPercent)

	preflight := diagnostics.DefaultPreflight().Run()
	for _, w := range preflight.Warnings {
		fmt.Printf("  %s %s\n", render.WarnIcon(), w)
	}
	for _, e := range preflight.Errors {
		allOK = false
		fmt.Printf("  %s %s\n", render.StatusIcon(false), e)
	}
	fmt.Println()

	if !allOK {
		return fmt.Errorf("some checks failed")
	}
	fmt.Printf("%s all checks passed\n", render.StatusIcon(true))
	return nil
}
