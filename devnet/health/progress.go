package health

import (
	"fmt"
	"time"

	ansi "github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

// barSink renders polling progress as a terminal progress bar.
type barSink struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar returns a ProgressSink drawing a bar sized to totalTicks
// probe attempts. A totalTicks of 0 renders an unbounded spinner.
func NewProgressBar(msg string, totalTicks int) ProgressSink {
	if totalTicks == 0 {
		totalTicks = -1
	}
	return &barSink{
		bar: progressbar.NewOptions(
			totalTicks,
			progressbar.OptionFullWidth(),
			progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() { fmt.Println() }),
			progressbar.OptionSetDescription(msg),
		),
	}
}

// Tick advances the bar to the current attempt.
func (s *barSink) Tick(attempt int, _ time.Duration) {
	if err := s.bar.Set(attempt); err != nil {
		log.WithError(err).Debug("Could not advance progress bar")
	}
}

// Done finishes and clears the bar's line.
func (s *barSink) Done() {
	if err := s.bar.Finish(); err != nil {
		log.WithError(err).Debug("Could not finish progress bar")
	}
}
