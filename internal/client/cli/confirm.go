package cli

import (
	"bufio"
	"io"
	"strings"
)

// Confirm asks a yes/no question. When the shell is not interactive the
// answer is yes without prompting. EOF counts as no.
type Confirm struct {
	reader      *bufio.Reader
	out         io.Writer
	interactive func() bool
}

func NewConfirm(reader *bufio.Reader, out io.Writer, interactive func() bool) *Confirm {
	return &Confirm{reader: reader, out: out, interactive: interactive}
}

func (c *Confirm) Ask(question string) bool {
	if !c.interactive() {
		return true
	}
	answer, err := GetSimpleText(c.reader, question+" [y/N]", c.out)
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}
