package cli

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestMaskAPIKey(t *testing.T) {
	for key, want := range map[string]string{
		"":                                   "****",
		"abc123":                             "****",
		"12345678":                           "****",
		"sk-1234567890abcdef":                "sk-1...cdef",
		"sk-proj-1234567890abcdefghijklmnop": "sk-p...mnop",
	} {
		assert.Equal(t, want, maskAPIKey(key), key)
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input string
		def   int
		want  int
	}{
		{input: "", def: 1, want: 1},
		{input: "3", def: 1, want: 3},
		{input: " 5 ", def: 1, want: 5},
		{input: "1", def: 3, want: 1},
		{input: "0", def: 1, want: 1},
		{input: "6", def: 1, want: 1},
		{input: "-1", def: 1, want: 1},
		{input: "abc", def: 2, want: 2},
		{input: "   ", def: 1, want: 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseChoice(tt.input, 5, tt.def), "input %q", tt.input)
	}
}

func TestReadLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("  cardiology \nlast"))

	assert.Equal(t, "cardiology", readLine(r))
	assert.Equal(t, "last", readLine(r), "no trailing newline")
	assert.Empty(t, readLine(r), "EOF")
}

func TestReadPassword_PipedInput(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("sk-piped\n"))

	assert.Equal(t, "sk-piped", readPassword(cmd, bufio.NewReader(cmd.InOrStdin())))
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "Yes\n", want: true},
		{input: " y \n", want: true},
		{input: "no\n", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.SetIn(strings.NewReader(tt.input))
			cmd.SetOut(io.Discard)

			assert.Equal(t, tt.want, confirm(cmd, "Continue?"))
		})
	}
}
