package main

import (
	"fmt"
	"io"

	"eqfuzz/internal/search"

	"github.com/charmbracelet/lipgloss"
)

const indent = "    "

// consoleReporter prints one progress line per accepted improvement and the
// solution block once a match is found. Headings are bold on a terminal and
// plain otherwise.
type consoleReporter struct {
	w       io.Writer
	heading lipgloss.Style
}

func newConsoleReporter(w io.Writer) *consoleReporter {
	r := lipgloss.NewRenderer(w)
	return &consoleReporter{
		w:       w,
		heading: r.NewStyle().Bold(true),
	}
}

func (c *consoleReporter) Progress(r search.Report) {
	fmt.Fprintf(c.w, "N: %d Corp: %d Vars: %s Res1: %s Res2: %s Diff: %s\n",
		r.Iteration,
		r.CorpusSize,
		r.Candidate,
		search.FormatValue(r.Score.Result1),
		search.FormatValue(r.Score.Result2),
		search.FormatValue(r.Score.Diff))
}

func (c *consoleReporter) Solved(s *search.Solution) {
	c.title("The solution to")
	fmt.Fprintf(c.w, "%s%s == %s\n\n", indent, s.Expr1, s.Expr2)

	if len(s.Conditions) > 0 {
		c.title("under these conditions:")
		for _, cond := range s.Conditions {
			fmt.Fprintf(c.w, "%s%s\n", indent, cond)
		}
		fmt.Fprintln(c.w)
	}

	c.title("is:")
	fmt.Fprintf(c.w, "%s%s\n\n", indent, s.Witness)

	c.title("Script:")
	fmt.Fprintf(c.w, "%s\n\n", s.Script())
}

func (c *consoleReporter) title(text string) {
	fmt.Fprintf(c.w, "%s\n\n", c.heading.Render(text))
}
