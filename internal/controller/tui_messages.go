package controller

import "fmt"

// Message types.
type runInfoMsg struct {
	info RunInfo
}

type generationMsg struct {
	report GenerationReport
}

type summaryMsg struct {
	final GenerationReport
	err   error
}

// List item types.
type generationItem struct {
	report GenerationReport
}

func (g generationItem) FilterValue() string {
	return fmt.Sprintf("%d %s", g.report.Number, g.report.Best)
}
