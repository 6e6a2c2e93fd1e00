// Package controller provides output adapters for reporting evolutionary runs.
package controller

import (
	"time"

	"github.com/mouse-blink/evolve/internal/domain"
)

// RunInfo describes a run before its first generation.
type RunInfo struct {
	RunID       string
	Problem     string
	Selector    string
	Bits        int
	Population  int
	Generations int
	Workers     int
	Seed        uint64
	Optimum     float64
}

// GenerationReport is what the UI shows for one generation.
type GenerationReport struct {
	Number   int
	Summary  domain.Summary
	Best     string
	Duration time.Duration
}

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	generations int
	title       string
	interrupt   func()
}

// WithGenerations sets the number of generations the progress bar counts to.
func WithGenerations(n int) StartOption {
	return func(c *StartConfig) {
		c.generations = n
	}
}

// WithTitle sets the heading shown above the run.
func WithTitle(title string) StartOption {
	return func(c *StartConfig) {
		c.title = title
	}
}

// WithInterrupt sets a function called when the user quits an interactive
// UI, so the run behind it can stop.
func WithInterrupt(interrupt func()) StartOption {
	return func(c *StartConfig) {
		c.interrupt = interrupt
	}
}

func newStartConfig(options ...StartOption) StartConfig {
	cfg := StartConfig{title: "evolve"}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI defines the interface for reporting a run.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(options ...StartOption) error
	Close()
	Wait() // Wait for UI to finish (user closes it)
	DisplayRunInfo(info RunInfo)
	DisplayGeneration(report GenerationReport)
	DisplaySummary(final GenerationReport, err error) error
}
