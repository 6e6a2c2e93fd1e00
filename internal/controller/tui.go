package controller

import (
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
	started bool
	closing bool
	config  StartConfig
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output, config: newStartConfig()}
}

// Start launches the Bubble Tea program in the background.
func (t *TUI) Start(options ...StartOption) error {
	t.config = newStartConfig(options...)

	return t.startWithModel(newRunModel(t.config))
}

func (t *TUI) startWithModel(model tea.Model) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen())
	done := make(chan struct{})
	interrupt := t.config.interrupt

	go func() {
		defer close(done)

		_, _ = program.Run()

		// raw mode swallows SIGINT, so a user quit must stop the run here
		if interrupt != nil && !t.isClosing() {
			interrupt()
		}
	}()

	t.program = program
	t.done = done
	t.started = true

	return nil
}

func (t *TUI) ensureStarted() {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()

	if !started {
		_ = t.Start()
	}
}

// send forwards msg to the running program; it is a no-op before Start.
func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(msg)
}

func (t *TUI) isClosing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.closing
}

// Close stops the program and waits for it to restore the terminal.
func (t *TUI) Close() {
	t.mu.Lock()
	program, done := t.program, t.done
	t.closing = true
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()
	<-done
}

// Wait blocks until the user quits the program.
func (t *TUI) Wait() {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done != nil {
		<-done
	}
}

// DisplayRunInfo shows the run parameters in the header.
func (t *TUI) DisplayRunInfo(info RunInfo) {
	t.ensureStarted()
	t.send(runInfoMsg{info: info})
}

// DisplayGeneration advances the progress bar and appends to the history.
func (t *TUI) DisplayGeneration(report GenerationReport) {
	t.ensureStarted()
	t.send(generationMsg{report: report})
}

// DisplaySummary switches the program to its results view.
func (t *TUI) DisplaySummary(final GenerationReport, err error) error {
	t.ensureStarted()
	t.send(summaryMsg{final: final, err: err})

	return err
}
