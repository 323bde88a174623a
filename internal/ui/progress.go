package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows progress on stderr while a scan runs.
type Spinner struct {
	label  string
	writer io.Writer
	done   chan struct{}
	wg     sync.WaitGroup
	ticker *time.Ticker
}

func NewSpinner(label string) *Spinner {
	return &Spinner{
		label:  label,
		writer: os.Stderr,
		done:   make(chan struct{}),
	}
}

// Start animates the spinner. Off a terminal it prints the label once.
func (s *Spinner) Start() {
	if !IsTerminal() {
		fmt.Fprintf(s.writer, "%s...\n", s.label)
		return
	}

	s.ticker = time.NewTicker(100 * time.Millisecond)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for frame := 0; ; frame++ {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				fmt.Fprintf(s.writer, "\r%s %s", spinnerFrames[frame%len(spinnerFrames)], s.label)
			}
		}
	}()
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.done)
	s.wg.Wait()
	fmt.Fprint(s.writer, "\r"+strings.Repeat(" ", len(s.label)+2)+"\r")
}
