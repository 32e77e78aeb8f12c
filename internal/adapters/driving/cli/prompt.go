package cli

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readLine returns the next trimmed line; EOF reads as an empty answer.
func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n') //nolint:errcheck // EOF means "accept the default"
	return strings.TrimSpace(line)
}

// parseChoice reads a 1-based menu choice, falling back to def for anything
// outside 1..n.
func parseChoice(input string, n, def int) int {
	choice, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || choice < 1 || choice > n {
		return def
	}
	return choice
}

// readPassword does not echo when stdin is a terminal. Piped input is read
// as a plain line so scripts and tests can supply keys.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return readLine(reader)
	}
	secret, err := term.ReadPassword(int(f.Fd()))
	if err != nil {
		return readLine(reader)
	}
	return strings.TrimSpace(string(secret))
}

// confirm asks a yes/no question that defaults to no.
func confirm(cmd *cobra.Command, question string) bool {
	cmd.Printf("%s [y/N]: ", question)
	switch strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin()))) {
	case "y", "yes":
		return true
	}
	return false
}

// maskAPIKey keeps the first and last four characters of keys long enough
// for that to hide most of them.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
