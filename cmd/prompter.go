package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ioPrompter asks questions on the command's streams and reads one line per
// answer.
type ioPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newIOPrompter(in io.Reader, out io.Writer) *ioPrompter {
	return &ioPrompter{in: bufio.NewReader(in), out: out}
}

// Ask prints the prompt and reads a line. EOF counts as declining.
func (p *ioPrompter) Ask(prompt string) (string, error) {
	fmt.Fprintf(p.out, "\n%s: ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
