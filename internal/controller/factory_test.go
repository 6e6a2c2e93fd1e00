package controller

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "auto", want: ModeAuto},
		{in: "plain", want: ModePlain},
		{in: "TUI", want: ModeTUI},
		{in: "fancy", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid ui mode")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewUI(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		want UI
	}{
		{name: "tui forced", mode: ModeTUI, want: &TUI{}},
		{name: "plain forced", mode: ModePlain, want: &SimpleUI{}},
		{name: "auto on a buffer", mode: ModeAuto, want: &SimpleUI{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.SetOut(&bytes.Buffer{})

			assert.IsType(t, tt.want, NewUI(cmd, tt.mode))
		})
	}
}

func TestIsTTY(t *testing.T) {
	file, err := os.CreateTemp(t.TempDir(), "evolve-tty")
	require.NoError(t, err)

	defer file.Close()

	assert.False(t, IsTTY(file), "regular file")
	assert.False(t, IsTTY(&bytes.Buffer{}), "buffer")

	closed, err := os.CreateTemp(t.TempDir(), "evolve-tty")
	require.NoError(t, err)
	require.NoError(t, closed.Close())

	assert.False(t, IsTTY(closed), "closed file")
}

func TestIsTTY_CharDevice(t *testing.T) {
	file, err := os.Open(os.DevNull)
	if err != nil {
		t.Skip("null device not available")
	}
	defer file.Close()

	assert.True(t, IsTTY(file))
}
