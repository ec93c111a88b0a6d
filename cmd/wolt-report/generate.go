package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wolt-report-service/internal/app"
	"wolt-report-service/internal/config"
	"wolt-report-service/internal/logger"
	"wolt-report-service/internal/report"
)

// pipelineFlags are shared by the commands that run the pipeline.
type pipelineFlags struct {
	inputs []string
	window string
	zones  string
}

func (p *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&p.inputs, "input", "i", nil, "Order history file, .gz allowed, - for stdin (repeatable)")
	cmd.Flags().StringVar(&p.window, "window", "", "Order window: rolling, all or year:YYYY (default from REPORT_WINDOW)")
	cmd.Flags().StringVar(&p.zones, "zones", "", "Unknown venue timezone policy: skip or fail (default from ZONE_POLICY)")
	_ = cmd.MarkFlagRequired("input")
}

// config applies flag overrides to the environment config. The CLI keeps
// its registry in memory.
func (p *pipelineFlags) config() config.Config {
	cfg := config.Load()
	cfg.DatabaseURL = ""
	if p.window != "" {
		cfg.ReportWindow = p.window
	}
	if p.zones != "" {
		cfg.ZonePolicy = p.zones
	}
	return cfg
}

func cliLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return logger.NewCLI(verbose)
}

type generateCmd struct {
	pipelineFlags
	out    string
	format string
	qlen   int
	font   string
}

func newGenerateCmd() *cobra.Command {
	gc := &generateCmd{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a report image from order history files",
		RunE:  gc.run,
	}
	gc.register(cmd)
	cmd.Flags().StringVarP(&gc.out, "out", "o", "", "Directory for the report artifact (default from REPORTS_DIR)")
	cmd.Flags().StringVar(&gc.format, "format", "", "Artifact format: png or jpeg")
	cmd.Flags().IntVar(&gc.qlen, "qlen", 0, "Quadrant side in pixels")
	cmd.Flags().StringVar(&gc.font, "font", "", "TrueType font file for labels")
	return cmd
}

func (gc *generateCmd) run(cmd *cobra.Command, _ []string) error {
	log, err := cliLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := gc.config()
	if gc.out != "" {
		cfg.ReportsDir = gc.out
		cfg.ObjectStoreEndpoint = ""
	}
	if gc.format != "" {
		cfg.ReportFormat = gc.format
	}
	if gc.qlen > 0 {
		cfg.ReportQLEN = int64(gc.qlen)
	}
	if gc.font != "" {
		cfg.ReportFont = gc.font
	}

	docs, err := readInputs(gc.inputs, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := app.Build(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := a.Service.Generate(cmd.Context(), docs)
	if err != nil {
		return err
	}
	printReport(cmd, rep)
	return nil
}

func printReport(cmd *cobra.Command, rep *report.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "guid: %s\n", rep.ID)
	fmt.Fprintf(out, "artifact: %s\n", rep.Location)
	fmt.Fprintf(out, "orders: %d\n", rep.OrderCount)
	for _, id := range rep.Skipped {
		fmt.Fprintf(out, "skipped: %s\n", id)
	}
}
