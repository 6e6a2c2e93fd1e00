package controller

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Mode chooses how a run is displayed.
type Mode string

const (
	// ModeAuto uses the TUI when output is a terminal and plain text otherwise.
	ModeAuto Mode = "auto"
	// ModePlain always prints plain text.
	ModePlain Mode = "plain"
	// ModeTUI always runs the interactive TUI.
	ModeTUI Mode = "tui"
)

// ParseMode parses a --ui flag value.
func ParseMode(s string) (Mode, error) {
	switch mode := Mode(strings.ToLower(s)); mode {
	case ModeAuto, ModePlain, ModeTUI:
		return mode, nil
	}

	return "", fmt.Errorf("invalid ui mode %q: want auto, plain or tui", s)
}

// NewUI returns the UI for mode writing to cmd's output.
func NewUI(cmd *cobra.Command, mode Mode) UI {
	out := cmd.OutOrStdout()

	if mode == ModeTUI || (mode == ModeAuto && IsTTY(out)) {
		return NewTUI(out)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is a character device.
func IsTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	info, err := file.Stat()

	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
