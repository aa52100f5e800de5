package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/render"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Browse stored analysis results",
	Long:  "List and display analysis reports persisted by the result store (store.enabled must be true).",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored analyses, newest first",
	RunE:  runResultsList,
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored analysis report",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultsShow,
}

var (
	resultsLimit int
	resultsJSON  bool
)

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)

	resultsListCmd.Flags().IntVarP(&resultsLimit, "limit", "n", 20, "Maximum number of results")
	resultsShowCmd.Flags().BoolVar(&resultsJSON, "json", false, "Emit the raw report as JSON")
}

func runResultsList(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	resultStore, err := openStore(cfg, logger, false)
	if err != nil {
		return err
	}
	if resultStore == nil {
		return fmt.Errorf("result store is disabled; set store.enabled: true in your config")
	}
	defer func() { _ = resultStore.Close() }()

	reports, err := resultStore.ListAnalyses(context.Background(), resultsLimit)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println(render.Muted("No stored analyses."))
		return nil
	}

	for _, r := range reports {
		fmt.Printf("%s  %s  consensus %d/100 (%s), %d findings\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.ID,
			r.Consensus.ConsensusScore,
			r.Consensus.Agreement,
			len(r.Findings),
		)
	}
	return nil
}

func runResultsShow(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	resultStore, err := openStore(cfg, logger, false)
	if err != nil {
		return err
	}
	if resultStore == nil {
		return fmt.Errorf("result store is disabled; set store.enabled: true in your config")
	}
	defer func() { _ = resultStore.Close() }()

	report, err := resultStore.LoadAnalysis(context.Background(), core.AnalysisID(args[0]))
	if err != nil {
		return err
	}

	if resultsJSON {
		return printJSON(report)
	}
	fmt.Print(render.Markdown(render.AnalysisMarkdown(report)))
	return nil
}
