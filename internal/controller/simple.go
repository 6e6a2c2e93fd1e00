package controller

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd     *cobra.Command
	config  StartConfig
	reports []GenerationReport
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd, config: newStartConfig()}
}

// Start initializes the UI.
func (s *SimpleUI) Start(options ...StartOption) error {
	s.config = newStartConfig(options...)
	s.reports = nil

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close() {}

// Wait returns immediately; plain output needs no user interaction.
func (s *SimpleUI) Wait() {}

// DisplayRunInfo prints the run parameters.
func (s *SimpleUI) DisplayRunInfo(info RunInfo) {
	s.printf("%s run %s\n", s.config.title, info.RunID)
	s.printf("problem %s, %d bits, selector %s, population %d, generations %d, workers %d, seed %d\n",
		info.Problem, info.Bits, info.Selector, info.Population, info.Generations, info.Workers, info.Seed)
}

// DisplayGeneration prints one line per generation.
func (s *SimpleUI) DisplayGeneration(report GenerationReport) {
	s.reports = append(s.reports, report)

	if s.config.generations > 0 {
		s.printf("generation %d/%d best %g mean %.2f\n",
			report.Number, s.config.generations, report.Summary.Best, report.Summary.Mean)

		return
	}

	s.printf("generation %d best %g mean %.2f\n", report.Number, report.Summary.Best, report.Summary.Mean)
}

// DisplaySummary prints a table of every generation followed by the best genome.
func (s *SimpleUI) DisplaySummary(final GenerationReport, err error) error {
	if err != nil {
		s.printf("run error: %v\n", err)
		return err
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Generation", "Best", "Mean", "StdDev", "Worst"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, r := range s.reports {
		table.Append([]string{
			fmt.Sprintf("%d", r.Number),
			fmt.Sprintf("%g", r.Summary.Best),
			fmt.Sprintf("%.2f", r.Summary.Mean),
			fmt.Sprintf("%.2f", r.Summary.StdDev),
			fmt.Sprintf("%g", r.Summary.Worst),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Generations %d", final.Number),
		fmt.Sprintf("%g", final.Summary.Best),
		"", "", "",
	})

	table.Render()
	s.printf("\n%s", tableBuffer.String())
	s.printf("best genome: %s\n", final.Best)

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
