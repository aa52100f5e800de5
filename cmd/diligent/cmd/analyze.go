package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/render"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text|-]",
	Short: "Analyze a document across multiple backends",
	Long: `Send a document to every selected backend in parallel, extract each
backend's structured risk assessment, and compute consensus metrics
over the returned risk scores.

The document can be given as an argument, read from a file with
--file, or piped on stdin with '-'.

Examples:
  diligent analyze "Indemnification survives termination indefinitely."
  diligent analyze --file contract.txt
  cat contract.txt | diligent analyze -
  diligent analyze --file contract.txt --backends claude,gemini`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeFile     string
	analyzeBackends []string
	analyzeJSON     bool
	analyzeSave     bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "Read document from file")
	analyzeCmd.Flags().StringSliceVar(&analyzeBackends, "backends", nil,
		"Backends to consult (default: configured default set)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Emit the raw report as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false,
		"Persist the report to the result store even when store.enabled is false")
}

func runAnalyze(_ *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt, stopping...")
		cancel()
	}()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	text, err := getText(args, analyzeFile)
	if err != nil {
		return err
	}

	descriptors, err := resolveDescriptors(cfg, analyzeBackends)
	if err != nil {
		return err
	}

	registry := buildRegistry(cfg, logger)
	defer func() { _ = registry.Close() }()

	analyzer, err := newAnalyzer(cfg, registry, logger)
	if err != nil {
		return err
	}

	resultStore, err := openStore(cfg, logger, analyzeSave)
	if err != nil {
		return err
	}
	if resultStore != nil {
		defer func() { _ = resultStore.Close() }()
	}

	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.Name
	}
	logger.Info("starting analysis",
		"backends", strings.Join(names, ","),
		"text_length", len(text),
	)

	report, err := analyzer.Run(ctx, core.AnalysisRequest{Text: text, Backends: descriptors})
	if err != nil {
		return err
	}

	if resultStore != nil {
		saveResult(ctx, logger, func(ctx context.Context) error {
			return resultStore.SaveAnalysis(ctx, report)
		})
	}

	if analyzeJSON {
		return printJSON(report)
	}
	fmt.Print(render.Markdown(render.AnalysisMarkdown(report)))

	if report.SucceededCount() < len(descriptors) {
		fmt.Fprintf(os.Stderr, "%s %d of %d backends failed; consensus is based on the rest\n",
			render.WarnIcon(), len(descriptors)-report.SucceededCount(), len(descriptors))
	}
	return nil
}
