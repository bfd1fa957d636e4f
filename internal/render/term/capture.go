package term

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/graveyard/engine/internal/input"
	"go.uber.org/zap"
)

// DefaultReleaseAfter is how long a key may go without an auto-repeat
// before it is considered released. Terminals report presses only.
const DefaultReleaseAfter = 550 * time.Millisecond

// Capture reads key events from a tcell screen and pushes them to an input
// queue. Presses of a key already held are marked as repeats, and a key
// with no press for ReleaseAfter gets a synthesized release.
type Capture struct {
	screen       tcell.Screen
	queue        *input.Queue
	log          *zap.Logger
	releaseAfter time.Duration

	held     map[input.Key]time.Time
	quit     chan struct{}
	quitOnce sync.Once
}

func NewCapture(screen tcell.Screen, queue *input.Queue, log *zap.Logger) *Capture {
	return &Capture{
		screen:       screen,
		queue:        queue,
		log:          log,
		releaseAfter: DefaultReleaseAfter,
		held:         make(map[input.Key]time.Time),
		quit:         make(chan struct{}),
	}
}

// Quit is closed when the user asks to leave (Escape, Ctrl-C or q).
func (c *Capture) Quit() <-chan struct{} { return c.quit }

// Run polls the screen until ctx is done or the screen is finalized.
func (c *Capture) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	go func() {
		defer close(events)
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(c.releaseAfter / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.handle(ev, time.Now())
		case now := <-ticker.C:
			c.expire(now)
		}
	}
}

func (c *Capture) handle(ev tcell.Event, now time.Time) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if isQuit(ev) {
			c.quitOnce.Do(func() { close(c.quit) })
			return
		}
		k := mapKey(ev.Key(), ev.Rune())
		if k == input.KeyUnknown {
			return
		}
		c.press(k, now)
	case *tcell.EventResize:
		c.screen.Sync()
	}
}

func (c *Capture) press(k input.Key, now time.Time) {
	_, repeat := c.held[k]
	c.held[k] = now
	if !c.queue.Push(input.KeyDown{Key: k, Repeat: repeat}) {
		c.log.Debug("input queue full", zap.Stringer("key", k))
	}
}

func (c *Capture) expire(now time.Time) {
	for k, last := range c.held {
		if now.Sub(last) < c.releaseAfter {
			continue
		}
		delete(c.held, k)
		c.queue.Push(input.KeyUp{Key: k})
	}
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}

func mapKey(k tcell.Key, r rune) input.Key {
	switch k {
	case tcell.KeyLeft:
		return input.KeyLeft
	case tcell.KeyRight:
		return input.KeyRight
	case tcell.KeyUp:
		return input.KeyArrowUp
	case tcell.KeyDown:
		return input.KeyArrowDown
	case tcell.KeyRune:
		switch r {
		case ' ':
			return input.KeyJump
		case 'x', 'X':
			return input.KeyAttack
		case 'c', 'C':
			return input.KeySlide
		case 'a', 'A':
			return input.KeyLeft
		case 'd', 'D':
			return input.KeyRight
		case 'w', 'W':
			return input.KeyArrowUp
		case 's', 'S':
			return input.KeyArrowDown
		}
	}
	return input.KeyUnknown
}
