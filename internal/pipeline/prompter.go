package pipeline

import (
	"fmt"
	"strings"

	"github.com/trustwatch/boardpapers-cli/internal/links"
)

// Prompter asks the operator a question when automatic discovery fails or a
// choice needs confirming. Implementations return an empty string to
// decline.
type Prompter interface {
	Ask(prompt string) (string, error)
}

// NoInput declines every prompt. It keeps unattended runs from hanging on
// questions nobody will answer.
type NoInput struct{}

// Ask returns an empty answer.
func (NoInput) Ask(string) (string, error) { return "", nil }

// maxListedLinks caps how many discovered links the choice prompt shows.
const maxListedLinks = 12

// chooseLinkPrompt lists the discovered links and the auto-selected pick.
func chooseLinkPrompt(found []links.Link, auto string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d document link(s):\n", len(found))
	for i, l := range found {
		if i >= maxListedLinks {
			break
		}
		fmt.Fprintf(&b, "  [%d] %s\n", i, clip(l.Text, 60))
	}
	fmt.Fprintf(&b, "Auto-selected: %s\nPress Enter to use this, or type a number to choose", auto)
	return b.String()
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
