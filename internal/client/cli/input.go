package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// isTerminal and termSize are test seams for golang.org/x/term.
var (
	isTerminal = term.IsTerminal
	termSize   = term.GetSize
)

const defaultWidth = 80

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// stdinInteractive reports whether stdin is attached to a terminal.
func stdinInteractive() bool {
	return isTerminal(int(os.Stdin.Fd()))
}

// terminalWidth returns the width of stdout, or defaultWidth when stdout
// is not a terminal.
func terminalWidth() int {
	w, _, err := termSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
