package main

import (
	"time"

	"github.com/briandowns/spinner"
)

const spinnerRefreshRate = 100 * time.Millisecond

// terminalSpinner adapts spinner.Spinner to Progress
type terminalSpinner struct {
	s *spinner.Spinner
}

func (ts *terminalSpinner) Start() { ts.s.Start() }

func (ts *terminalSpinner) Stop() { ts.s.Stop() }

func (ts *terminalSpinner) UpdateSuffix(suffix string) {
	ts.s.Suffix = suffix
}

var newSpinner = func(options ...spinner.Option) Progress {
	return &terminalSpinner{s: spinner.New(spinner.CharSets[11], spinnerRefreshRate, options...)}
}
