package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/matzehuels/archdraw/pkg/pipeline"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates one status line while a command works. The message can
// change while it runs, so a single spinner follows every stage of a
// pipeline run.
type spinner struct {
	w        io.Writer
	ctx      context.Context
	cancel   context.CancelFunc
	interval time.Duration
	stopped  chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	message string
	drawn   int // width of the widest line drawn
	started bool
}

// newSpinner returns a spinner writing to w. It stops drawing when ctx ends.
func newSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &spinner{
		w:        w,
		ctx:      ctx,
		cancel:   cancel,
		interval: spinnerInterval,
		stopped:  make(chan struct{}),
		message:  message,
	}
}

// Start begins drawing.
func (s *spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawn = max(s.drawn, utf8.RuneCountInString(s.message)+2)
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
}

// Message returns the current status text.
func (s *spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// SetMessage replaces the status text from the next frame on.
func (s *spinner) SetMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
}

// Stage shows the stage a pipeline run has reached.
func (s *spinner) Stage(ev pipeline.StageEvent) {
	s.SetMessage(stageMessage(ev))
}

// Stop ends the animation and clears the line. Later calls do nothing.
func (s *spinner) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.stopped
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.drawn > 0 {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn))
		}
	})
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line.
func (s *spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// stageMessage describes a pipeline stage with its counts.
func stageMessage(ev pipeline.StageEvent) string {
	switch ev.Stage {
	case pipeline.StageLayout:
		return fmt.Sprintf("Laying out %s and %s...",
			plural(ev.Elements, "element"), plural(ev.Connections, "connection"))
	case pipeline.StageSynthesize:
		return fmt.Sprintf("Drawing %s (%s)...",
			plural(ev.Elements, "element"), plural(ev.Crossings, "crossing"))
	case pipeline.StageEncode:
		return fmt.Sprintf("Encoding %s...", plural(ev.Cells, "cell"))
	}
	return string(ev.Stage) + "..."
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
