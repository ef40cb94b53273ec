package format

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether stdout should receive terminal formatting.
func IsTTY() bool {
	return IsTerminal(os.Stdout)
}

// IsTerminal reports whether w is a color-capable terminal.
// NO_COLOR, an empty TERM and TERM=dumb all disable formatting.
func IsTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	termEnv := os.Getenv("TERM")
	if termEnv == "dumb" || termEnv == "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// IsInteractive reports whether stdin is a terminal that can answer prompts.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
