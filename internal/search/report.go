package search

import "strings"

// Report describes one accepted improvement.
type Report struct {
	RunID      string
	Worker     int
	Iteration  uint64
	CorpusSize int
	Candidate  Assignment
	Score      Score
}

// Solution is the assignment that made both expressions equal.
type Solution struct {
	RunID      string
	Expr1      string
	Expr2      string
	Conditions []string
	Witness    Assignment
	Score      Score
	Iterations uint64
	Cycles     uint64
	CorpusSize int
	Seed       uint64
}

// Script renders the witness as one assignment per line followed by the
// equation, so the result can be replayed by hand.
func (s *Solution) Script() string {
	var sb strings.Builder
	sb.WriteString(s.Witness.Format("\n"))
	sb.WriteString("\n")
	sb.WriteString(s.Expr1)
	sb.WriteString(" == ")
	sb.WriteString(s.Expr2)
	sb.WriteString("\n")
	return sb.String()
}

// Reporter receives search progress. Calls are serialized by the loop.
type Reporter interface {
	Progress(r Report)
	Solved(s *Solution)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Progress(Report)  {}
func (NopReporter) Solved(*Solution) {}
